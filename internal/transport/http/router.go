package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sysuser/internal/apperror"
	"github.com/Skotchmaster/sysuser/internal/db"
	"github.com/Skotchmaster/sysuser/internal/handlers"
	"github.com/Skotchmaster/sysuser/internal/middleware/auth"
	"github.com/Skotchmaster/sysuser/internal/transport"
)

type Deps struct {
	DB          *gorm.DB
	Tokens      auth.Verifier
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return transport.OK(c, "live") })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return apperror.Storage(err)
		}
		return transport.OK(c, "ready")
	})

	requireLogin := auth.Require(d.Tokens)
	actor := auth.Optional(d.Tokens)

	users := e.Group("/api/users")

	users.POST("/login", d.AuthHandler.Login)
	users.GET("/user-info", d.AuthHandler.UserInfo, requireLogin)

	users.POST("/pagination", d.UserHandler.Page, actor)
	users.GET("/pagination", d.UserHandler.PageQuery, actor)

	users.GET("", d.UserHandler.List, actor)
	users.POST("", d.UserHandler.Create, actor)
	users.PUT("", d.UserHandler.Update, actor)
	users.DELETE("/:id", d.UserHandler.Delete, actor)
}
