package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgatagova/orgatagova/internal/model"
	"github.com/orgatagova/orgatagova/internal/service"
)

// MeHandler serves the /v1/me endpoints for the authenticated user.
type MeHandler struct {
	Svc *service.Service
}

// profile is the caller's own view of their account; unlike the public
// profile it includes the email address.
type profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// Me handles GET /v1/me.  A valid token whose user no longer exists is a
// stale session and answers 401.
func (h *MeHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	u, err := h.Svc.GetUser(c.Request().Context(), userID)
	if err != nil {
		if service.KindOf(err) == service.KindNotFound {
			return fail(c, service.ErrStaleSession)
		}
		return fail(c, err)
	}
	return respond(c, http.StatusOK, profile{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image})
}

// Carpools handles GET /v1/me/carpools: unfinished carpools the user takes
// part in.
func (h *MeHandler) Carpools(c echo.Context) error {
	return h.list(c, h.Svc.ListForUser)
}

// Owned handles GET /v1/me/carpools/owned.
func (h *MeHandler) Owned(c echo.Context) error {
	return h.list(c, h.Svc.ListOwnedByUser)
}

// Finished handles GET /v1/me/carpools/finished.
func (h *MeHandler) Finished(c echo.Context) error {
	return h.list(c, h.Svc.ListFinishedForUser)
}

func (h *MeHandler) list(c echo.Context, load func(ctx context.Context, userID string) ([]model.Carpool, error)) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	items, err := load(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"items": items})
}
