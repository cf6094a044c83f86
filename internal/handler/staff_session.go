package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// StaffHandler bundles the services behind the staff endpoints: session
// scheduling, forced rescheduling and the expiry sweep.
type StaffHandler struct {
	Sessions   *service.SessionService
	Reschedule *service.RescheduleService
	Expiry     *service.ExpiryService
}

// NewStaffHandler constructs a StaffHandler and panics if any dependency is nil.
func NewStaffHandler(sessions *service.SessionService, reschedule *service.RescheduleService, expiry *service.ExpiryService) *StaffHandler {
	if sessions == nil || reschedule == nil || expiry == nil {
		panic("nil service passed to NewStaffHandler")
	}
	return &StaffHandler{Sessions: sessions, Reschedule: reschedule, Expiry: expiry}
}

// ----- DTOs -----

type createSessionReq struct {
	MovieID        uint64    `json:"movie_id"`
	RoomID         uint64    `json:"room_id"`
	Capacity       int       `json:"capacity"`
	StartsAt       time.Time `json:"starts_at"`
	BasePriceCents uint32    `json:"base_price_cents"`
}

type modifySessionReq struct {
	StartsAt *time.Time `json:"starts_at"`
	RoomID   *uint64    `json:"room_id"`
	Capacity *int       `json:"capacity"`
}

// CreateSession registers a new screening with a generated seat map.
func (h *StaffHandler) CreateSession(c echo.Context) error {
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id/room_id required"})
	}
	if req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Sessions.Create(ctx, req.MovieID, req.RoomID, req.Capacity, req.StartsAt, req.BasePriceCents)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newSessionView(sess, true))
}

// ModifySession applies a partial schedule update to a session.
func (h *StaffHandler) ModifySession(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req modifySessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartsAt == nil && req.RoomID == nil && req.Capacity == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to change"})
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Sessions.ModifySchedule(ctx, id, model.ScheduleChange{
		StartsAt: req.StartsAt,
		RoomID:   req.RoomID,
		Capacity: req.Capacity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionView(sess, true))
}

// CancelSession marks the session CANCELLED. The session and its
// tickets stay on record.
func (h *StaffHandler) CancelSession(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Sessions.Cancel(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionView(sess, false))
}

// GetSession returns one session with its full seat map for the box
// office view.
func (h *StaffHandler) GetSession(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Sessions.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionView(sess, true))
}

// Sweep runs the ticket expiry sweep over every session and reports how
// many tickets were expired. The background ticker runs the same logic;
// this endpoint exists so staff can force a pass.
func (h *StaffHandler) Sweep(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	n, err := h.Expiry.ForAllPastSessions(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": n})
}
