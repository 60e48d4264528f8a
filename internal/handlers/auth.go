package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sysuser/internal/apperror"
	"github.com/Skotchmaster/sysuser/internal/extract"
	"github.com/Skotchmaster/sysuser/internal/middleware/auth"
	"github.com/Skotchmaster/sysuser/internal/service"
	"github.com/Skotchmaster/sysuser/internal/transport"
)

type AuthHandler struct {
	Service *service.AuthService
}

func (h *AuthHandler) Login(c echo.Context) error {
	req, err := extract.Valid[transport.LoginRequest](c, extract.Body)
	if err != nil {
		return err
	}

	res, err := h.Service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return transport.OK(c, res)
}

// UserInfo returns the principal carried by the bearer token.
func (h *AuthHandler) UserInfo(c echo.Context) error {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return apperror.Authentication(errors.New("no principal on request"))
	}
	return transport.OK(c, p)
}
