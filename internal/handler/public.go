package handler

// Public browse endpoints.  Only carpools that are public, ongoing and have
// free seats are listed; private ones are reachable by invitation code
// only.  User profiles omit the email address.

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgatagova/orgatagova/internal/service"
)

// PublicHandler serves unauthenticated reads.
type PublicHandler struct {
	Svc *service.Service
}

// ListCarpools handles GET /v1/carpools?page&page_size.
func (h *PublicHandler) ListCarpools(c echo.Context) error {
	page, size := pageParams(c)
	res, err := h.Svc.ListActive(c.Request().Context(), page, size)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, res)
}

// SearchCarpools handles GET /v1/carpools/search.  departure and arrival
// are case-insensitive substring filters.
func (h *PublicHandler) SearchCarpools(c echo.Context) error {
	page, size := pageParams(c)
	res, err := h.Svc.Search(c.Request().Context(), service.SearchParams{
		Departure: c.QueryParam("departure"),
		Arrival:   c.QueryParam("arrival"),
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, res)
}

// GetUser handles GET /v1/users/:id.
func (h *PublicHandler) GetUser(c echo.Context) error {
	u, err := h.Svc.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, u)
}
