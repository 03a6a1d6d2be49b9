package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orgatagova/orgatagova/internal/service"
)

// CarpoolHandler serves the authenticated carpool endpoints under /v1.
// Every method resolves the acting user once and passes it to the service.
type CarpoolHandler struct {
	Svc *service.Service
}

type joinByCodeRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type swapSoberDriverRequest struct {
	UserID string `json:"user_id" validate:"required,max=191"`
}

// seatsResponse reports the seats left after a join or leave.
type seatsResponse struct {
	CarpoolID      string `json:"carpool_id"`
	AvailableSeats int    `json:"available_seats"`
}

type statusResponse struct {
	CarpoolID string         `json:"carpool_id"`
	Status    service.Status `json:"status"`
}

// Create handles POST /v1/carpools.  The creator becomes the first
// participant.
func (h *CarpoolHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	var body service.CreateCarpoolData
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	cp, err := h.Svc.CreateCarpool(c.Request().Context(), userID, body)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, cp)
}

// Template handles GET /v1/carpools/template.  Query parameters named like
// the creation form override the defaults.
func (h *CarpoolHandler) Template(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return fail(c, err)
	}
	partial := service.CreateCarpoolData{
		Departure:      c.QueryParam("departure"),
		Arrival:        c.QueryParam("arrival"),
		Description:    c.QueryParam("description"),
		DepartureDate:  c.QueryParam("departureDate"),
		DepartureTime:  c.QueryParam("departureTime"),
		AvailableSeats: c.QueryParam("availableSeats"),
	}
	partial.IsDriverSoberNeeded, _ = strconv.ParseBool(c.QueryParam("isDriverSoberNeeded"))
	partial.IsPrivate, _ = strconv.ParseBool(c.QueryParam("isPrivate"))
	return respond(c, http.StatusOK, h.Svc.Template(partial))
}

// Join handles POST /v1/carpools/:id/join.
func (h *CarpoolHandler) Join(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	id := c.Param("id")
	seats, err := h.Svc.Join(c.Request().Context(), id, userID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, seatsResponse{CarpoolID: id, AvailableSeats: seats})
}

// JoinByCode handles POST /v1/carpools/join with {"code": "..."}.  Private
// carpools are only reachable this way.
func (h *CarpoolHandler) JoinByCode(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	var body joinByCodeRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return badRequest(c, err.Error())
	}
	cp, err := h.Svc.JoinByCode(c.Request().Context(), body.Code, userID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, cp)
}

// Get handles GET /v1/carpools/:id.
func (h *CarpoolHandler) Get(c echo.Context) error {
	detail, err := h.Svc.GetCarpool(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, detail)
}

// Status handles GET /v1/carpools/:id/status.
func (h *CarpoolHandler) Status(c echo.Context) error {
	id := c.Param("id")
	st, err := h.Svc.GetStatus(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, statusResponse{CarpoolID: id, Status: st})
}

// Participants handles GET /v1/carpools/:id/participants.
func (h *CarpoolHandler) Participants(c echo.Context) error {
	users, err := h.Svc.GetParticipants(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"items": users})
}

// SoberDriver handles GET /v1/carpools/:id/sober-driver.  sober_driver_id
// is null while the role is vacant.
func (h *CarpoolHandler) SoberDriver(c echo.Context) error {
	id := c.Param("id")
	driver, err := h.Svc.GetSoberDriver(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	var driverID *string
	if driver != "" {
		driverID = &driver
	}
	return respond(c, http.StatusOK, echo.Map{"carpool_id": id, "sober_driver_id": driverID})
}

// ClaimSoberDriver handles POST /v1/carpools/:id/sober-driver.
func (h *CarpoolHandler) ClaimSoberDriver(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	cp, err := h.Svc.JoinAsSoberDriver(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, cp)
}

// SwapSoberDriver handles PUT /v1/carpools/:id/sober-driver.
func (h *CarpoolHandler) SwapSoberDriver(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	var body swapSoberDriverRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return badRequest(c, err.Error())
	}
	id := c.Param("id")
	if err := h.Svc.SwapSoberDriver(c.Request().Context(), id, body.UserID, userID); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"carpool_id": id, "sober_driver_id": body.UserID})
}

// Update handles PATCH /v1/carpools/:id.
func (h *CarpoolHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	var patch service.DetailsPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request body")
	}
	cp, err := h.Svc.UpdateDetails(c.Request().Context(), c.Param("id"), patch, userID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, cp)
}

// Delete handles DELETE /v1/carpools/:id.
func (h *CarpoolHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	id := c.Param("id")
	if err := h.Svc.DeleteCarpool(c.Request().Context(), id, userID); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"carpool_id": id, "deleted": true})
}

// RemoveParticipant handles DELETE /v1/carpools/:id/participants/:userId.
// Users remove themselves; the creator may remove anyone but themselves.
func (h *CarpoolHandler) RemoveParticipant(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	id := c.Param("id")
	seats, err := h.Svc.RemoveParticipantAs(c.Request().Context(), id, c.Param("userId"), userID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, seatsResponse{CarpoolID: id, AvailableSeats: seats})
}

// Finish, Archive and Unarchive are creator-only lifecycle transitions.
// Each answers with the resulting status.

func (h *CarpoolHandler) Finish(c echo.Context) error {
	return h.lifecycle(c, h.Svc.Finish)
}

func (h *CarpoolHandler) Archive(c echo.Context) error {
	return h.lifecycle(c, h.Svc.Archive)
}

func (h *CarpoolHandler) Unarchive(c echo.Context) error {
	return h.lifecycle(c, h.Svc.Unarchive)
}

func (h *CarpoolHandler) lifecycle(c echo.Context, apply func(ctx context.Context, carpoolID, acting string) error) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	if err := apply(ctx, id, userID); err != nil {
		return fail(c, err)
	}
	st, err := h.Svc.GetStatus(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, statusResponse{CarpoolID: id, Status: st})
}
