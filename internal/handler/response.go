package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgatagova/orgatagova/internal/service"
)

// envelope is the uniform response body of the carpool API.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// fail renders err with the status matching its kind.  Messages of
// internal errors are already generic.
func fail(c echo.Context, err error) error {
	kind := service.KindOf(err)
	msg := err.Error()
	if kind == service.KindInternal {
		if _, typed := err.(*service.Error); !typed {
			msg = "internal error"
		}
	}
	return c.JSON(statusFor(kind), envelope{Success: false, Error: msg, Kind: string(kind)})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func badRequest(c echo.Context, msg string) error {
	return fail(c, service.Validation(msg))
}
