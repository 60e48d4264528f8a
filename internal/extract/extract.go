// Package extract decodes one request part into a DTO and validates it
// before a handler sees it.
package extract

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sysuser/internal/apperror"
)

type Source int

const (
	Path Source = iota
	Query
	Body
)

func (s Source) String() string {
	switch s {
	case Path:
		return "path"
	case Query:
		return "query"
	case Body:
		return "body"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Defaulter is applied before decoding so absent fields keep their defaults.
type Defaulter interface {
	SetDefaults()
}

// Checker holds DTO level rules that run after the field rules pass.
type Checker interface {
	Check() error
}

var binder = &echo.DefaultBinder{}

func Valid[T any](c echo.Context, src Source) (T, error) {
	var dto T
	if d, ok := any(&dto).(Defaulter); ok {
		d.SetDefaults()
	}

	if err := decode(c, src, &dto); err != nil {
		var zero T
		return zero, apperror.Decoding(src.String(), cause(err))
	}

	if err := c.Validate(&dto); err != nil {
		var zero T
		return zero, validationError(err)
	}

	if ch, ok := any(&dto).(Checker); ok {
		if err := ch.Check(); err != nil {
			var zero T
			return zero, validationError(err)
		}
	}
	return dto, nil
}

func decode(c echo.Context, src Source, dst any) error {
	switch src {
	case Path:
		return binder.BindPathParams(c, dst)
	case Query:
		return binder.BindQueryParams(c, dst)
	case Body:
		return binder.BindBody(c, dst)
	default:
		return fmt.Errorf("unsupported source %s", src)
	}
}

func cause(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			return he.Internal
		}
		return fmt.Errorf("%v", he.Message)
	}
	return err
}

func validationError(err error) error {
	if errors.Is(err, echo.ErrValidatorNotRegistered) {
		return apperror.Internal(err)
	}
	if ae, ok := apperror.As(err); ok {
		return ae
	}
	if fields, ok := fieldErrors(err); ok {
		return apperror.Validation(fields[0].field, fields[0].message, messages(fields))
	}
	return apperror.Validation("", err.Error(), []string{err.Error()})
}
