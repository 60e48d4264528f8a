package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sysuser/internal/extract"
	"github.com/Skotchmaster/sysuser/internal/middleware/auth"
	"github.com/Skotchmaster/sysuser/internal/service"
	"github.com/Skotchmaster/sysuser/internal/transport"
)

type UserHandler struct {
	Service *service.UserService
}

func (h *UserHandler) List(c echo.Context) error {
	q, err := extract.Valid[transport.UserFilterQuery](c, extract.Query)
	if err != nil {
		return err
	}

	users, err := h.Service.List(c.Request().Context(), q.Filter())
	if err != nil {
		return err
	}
	return transport.OK(c, users)
}

func (h *UserHandler) Page(c echo.Context) error {
	return h.page(c, extract.Body)
}

func (h *UserHandler) PageQuery(c echo.Context) error {
	return h.page(c, extract.Query)
}

func (h *UserHandler) page(c echo.Context, src extract.Source) error {
	q, err := extract.Valid[transport.UserPageQuery](c, src)
	if err != nil {
		return err
	}

	info, err := h.Service.Page(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return transport.OK(c, info)
}

func (h *UserHandler) Create(c echo.Context) error {
	req, err := extract.Valid[transport.UserAddRequest](c, extract.Body)
	if err != nil {
		return err
	}

	user, err := h.Service.Create(c.Request().Context(), req, auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return transport.OK(c, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	req, err := extract.Valid[transport.UserUpdateRequest](c, extract.Body)
	if err != nil {
		return err
	}

	user, err := h.Service.Update(c.Request().Context(), req, auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return transport.OK(c, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	p, err := extract.Valid[transport.UserIDPath](c, extract.Path)
	if err != nil {
		return err
	}

	if err := h.Service.Delete(c.Request().Context(), p.ID, auth.ActorFrom(c)); err != nil {
		return err
	}
	return transport.OK(c, nil)
}
