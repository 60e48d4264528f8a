package auth

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sysuser/internal/apperror"
	"github.com/Skotchmaster/sysuser/internal/logging"
	"github.com/Skotchmaster/sysuser/internal/token"
)

// TokenLookup accepts the short "Bear" scheme as well as "Bearer".
const TokenLookup = "header:Authorization:Bear ,header:Authorization:Bearer "

var errMissingToken = errors.New("missing bearer token")

type Verifier interface {
	Verify(raw string) (token.Principal, error)
}

// Require rejects requests without a valid bearer token.
func Require(v Verifier) echo.MiddlewareFunc {
	return bearer(v, false)
}

// Optional lets requests without an Authorization header through
// unauthenticated; a token that is present must still verify.
func Optional(v Verifier) echo.MiddlewareFunc {
	return bearer(v, true)
}

func bearer(v Verifier, optional bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  principalKey,
		TokenLookup: TokenLookup,
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			p, err := v.Verify(raw)
			if err != nil {
				c.Set(verifyErrKey, err)
				return nil, err
			}
			return p, nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			verr, _ := c.Get(verifyErrKey).(error)
			if verr == nil && optional && c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return nil
			}

			l := logging.FromContext(c.Request().Context())
			l.Warn("auth_failed", "status", 401, "reason", reason(verr), "path", c.Path())

			if verr == nil {
				verr = errMissingToken
			}
			return apperror.Authentication(verr)
		},
		ContinueOnIgnoredError: optional,
	})
}
