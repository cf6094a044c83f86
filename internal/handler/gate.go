package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// GateHandler exposes the gate validation endpoint used by staff
// scanning tickets at the door.
type GateHandler struct {
	Validation *service.ValidationService
}

// NewGateHandler constructs a GateHandler and panics if the service is nil.
func NewGateHandler(validation *service.ValidationService) *GateHandler {
	if validation == nil {
		panic("nil service passed to NewGateHandler")
	}
	return &GateHandler{Validation: validation}
}

type validateReq struct {
	Code string `json:"code"`
}

type validateResp struct {
	Valid    bool         `json:"valid"`
	Message  string       `json:"message"`
	Purchase purchaseView `json:"purchase"`
	Session  sessionView  `json:"session"`
	Seats    []string     `json:"seats"`
}

// Validate checks a scanned ticket code. A passing scan validates every
// active ticket of the purchase in one step; a failing scan is recorded
// and reported with the rejection reason, still as HTTP 200 so gate
// devices treat it as a normal answer.
func (h *GateHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	staffID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Validation.Validate(ctx, code, staffID)
	if err != nil {
		return respondError(c, err)
	}

	if res.Valid {
		// Best effort: a broker outage must not fail the scan.
		_ = queue.PublishTicketValidated(c.Request().Context(), queue.TicketValidatedEvent{
			PurchaseID:  res.Purchase.ID,
			PurchaseRef: res.Purchase.Ref.String(),
			SessionID:   res.Session.ID,
			TicketCode:  res.Ticket.Code,
			StaffID:     staffID,
			SeatCodes:   res.Seats,
			ValidatedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, validateResp{
		Valid:    res.Valid,
		Message:  res.Message,
		Purchase: newPurchaseView(res.Purchase, res.Tickets),
		Session:  newSessionView(res.Session, false),
		Seats:    res.Seats,
	})
}
