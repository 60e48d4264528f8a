package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const MessageSuccess = "success"

// Response is the envelope every reply is wrapped in.
type Response struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Response{Code: http.StatusOK, Data: data, Message: MessageSuccess})
}
