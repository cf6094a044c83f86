package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// ----- DTOs -----

type staffRescheduleReq struct {
	ToSessionID uint64 `json:"to_session_id"`
	ToSeat      string `json:"to_seat"`
	Reason      string `json:"reason"`
}

type massRescheduleReq struct {
	NewStartsAt time.Time `json:"new_starts_at"`
	SeatCodes   []string  `json:"seat_codes"`
	Reason      string    `json:"reason"`
}

// RescheduleTicket moves one ticket to another session or seat on
// behalf of a customer. Staff bypass the departure cutoff and the
// original seat stays occupied so the customer keeps a fallback.
func (h *StaffHandler) RescheduleTicket(c echo.Context) error {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req staffRescheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ToSessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to_session_id required"})
	}
	staffID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Reschedule.RescheduleOne(ctx, service.RescheduleOneParams{
		TicketID:      ticketID,
		ToSessionID:   req.ToSessionID,
		ToSeat:        req.ToSeat,
		ActorID:       staffID,
		Reason:        req.Reason,
		StaffOverride: true,
	})
	if err != nil {
		return respondError(c, err)
	}
	views := newRescheduleRecordViews([]*model.RescheduleRecord{rec})
	return c.JSON(http.StatusOK, views[0])
}

// RescheduleSession shifts a whole session to a new start time and
// writes one reschedule record per affected active ticket. The optional
// seat_codes list narrows the audit trail to specific seats.
func (h *StaffHandler) RescheduleSession(c echo.Context) error {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req massRescheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	staffID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	affected, err := h.Reschedule.RescheduleSession(ctx, service.RescheduleSessionParams{
		SessionID: sessionID,
		NewStart:  req.NewStartsAt,
		SeatCodes: req.SeatCodes,
		ActorID:   staffID,
		Reason:    req.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"affected_tickets": affected})
}

// TicketHistory returns both audit trails for one ticket, each ordered
// most recent first.
func (h *StaffHandler) TicketHistory(c echo.Context) error {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	validations, reschedules, err := h.Reschedule.TicketHistory(ctx, ticketID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"validations": newValidationRecordViews(validations),
		"reschedules": newRescheduleRecordViews(reschedules),
	})
}
