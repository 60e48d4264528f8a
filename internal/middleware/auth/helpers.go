package auth

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sysuser/internal/token"
)

const (
	principalKey = "principal"
	verifyErrKey = "auth.verify_error"
)

// PrincipalFrom returns the principal a bearer middleware attached to c.
func PrincipalFrom(c echo.Context) (token.Principal, bool) {
	p, ok := c.Get(principalKey).(token.Principal)
	return p, ok
}

// ActorFrom names the caller for audit columns; empty when unauthenticated.
func ActorFrom(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return p.Username
	}
	return ""
}

func reason(err error) string {
	switch {
	case err == nil:
		return "missing token"
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrNotYetValid):
		return "not yet valid"
	case errors.Is(err, token.ErrSignatureInvalid):
		return "signature invalid"
	case errors.Is(err, token.ErrAudienceMismatch):
		return "audience mismatch"
	case errors.Is(err, token.ErrIssuerMismatch):
		return "issuer mismatch"
	case errors.Is(err, token.ErrMalformedSubject):
		return "malformed subject"
	default:
		return "malformed token"
	}
}
