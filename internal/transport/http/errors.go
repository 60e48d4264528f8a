package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sysuser/internal/apperror"
	"github.com/Skotchmaster/sysuser/internal/logging"
	"github.com/Skotchmaster/sysuser/internal/transport"
)

// ErrorHandler renders every error returned by a handler or middleware into
// the response envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	ae, status := toAppError(err)
	code := ae.ResponseCode()
	if status != ae.Status() {
		code = status
	}
	body := transport.Response{Code: code, Message: ae.PublicMessage()}

	l := logging.FromContext(c.Request().Context())
	switch {
	case status >= http.StatusInternalServerError:
		l.Error("request_failed", "kind", ae.Kind.String(), "status", status, "error", err)
	case ae.Kind == apperror.KindValidation:
		l.Warn("request_rejected", "kind", ae.Kind.String(), "status", status, "field", ae.Field, "details", ae.Details)
	default:
		l.Debug("request_rejected", "kind", ae.Kind.String(), "status", status, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		l.Error("write_error_response_failed", "error", werr)
	}
}

// toAppError also returns the status to send; it differs from the kind's
// status only for client errors raised by echo middleware (413, 408, ...).
func toAppError(err error) (*apperror.Error, int) {
	if ae, ok := apperror.As(err); ok {
		return ae, ae.Status()
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		ae := apperror.Internal(err)
		return ae, ae.Status()
	}

	msg := httpMessage(he)
	var ae *apperror.Error
	switch {
	case he.Code == http.StatusNotFound:
		ae = apperror.NotFound(msg)
	case he.Code == http.StatusMethodNotAllowed:
		ae = apperror.MethodNotAllowed(msg)
	case he.Code == http.StatusUnauthorized:
		ae = apperror.Authentication(he)
	case he.Code >= http.StatusInternalServerError:
		ae = apperror.Internal(he)
	default:
		return &apperror.Error{Kind: apperror.KindDecoding, Message: msg, Err: he}, he.Code
	}
	return ae, ae.Status()
}

func httpMessage(he *echo.HTTPError) string {
	if s, ok := he.Message.(string); ok {
		return s
	}
	if he.Message == nil {
		return http.StatusText(he.Code)
	}
	return fmt.Sprint(he.Message)
}
