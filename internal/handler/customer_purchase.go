package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// CustomerHandler bundles the services behind the customer endpoints:
// buying tickets, listing purchases and self-service rescheduling.
// Tickets is consulted directly for ownership checks before a
// reschedule is attempted.
type CustomerHandler struct {
	Sales      *service.SalesService
	Reschedule *service.RescheduleService
	Tickets    service.TicketRepository
}

// NewCustomerHandler constructs a CustomerHandler and panics if any dependency is nil.
func NewCustomerHandler(sales *service.SalesService, reschedule *service.RescheduleService, tickets service.TicketRepository) *CustomerHandler {
	if sales == nil || reschedule == nil || tickets == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Sales: sales, Reschedule: reschedule, Tickets: tickets}
}

// ----- DTOs -----

type seatReq struct {
	SeatCode string `json:"seat_code"`
	Fare     string `json:"fare"` // FULL | HALF
}

type purchaseReq struct {
	SessionID uint64    `json:"session_id"`
	Seats     []seatReq `json:"seats"`
}

type selfRescheduleReq struct {
	ToSessionID uint64 `json:"to_session_id"`
	ToSeat      string `json:"to_seat"`
	Reason      string `json:"reason"`
}

// CreatePurchase buys one or more seats in a session as a single
// atomic purchase. Either every seat is reserved and every ticket
// minted, or nothing is.
func (h *CustomerHandler) CreatePurchase(c echo.Context) error {
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}
	if len(req.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats required"})
	}
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	seats := make([]service.SeatRequest, 0, len(req.Seats))
	for _, s := range req.Seats {
		fare := model.FareCategory(strings.ToUpper(strings.TrimSpace(s.Fare)))
		if fare == "" {
			fare = model.FareFull
		}
		seats = append(seats, service.SeatRequest{
			SeatCode: strings.ToUpper(strings.TrimSpace(s.SeatCode)),
			Fare:     fare,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	purchase, tickets, err := h.Sales.CreatePurchase(ctx, customerID, req.SessionID, seats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newPurchaseView(purchase, tickets))
}

// GetPurchase returns one purchase with its tickets. Customers only see
// their own purchases.
func (h *CustomerHandler) GetPurchase(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	purchase, tickets, err := h.Sales.GetPurchase(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if purchase.CustomerID != customerID {
		// Hide other customers' purchases rather than acknowledging them.
		return c.JSON(http.StatusNotFound, echo.Map{"error": model.ErrPurchaseNotFound.Error()})
	}
	return c.JSON(http.StatusOK, newPurchaseView(purchase, tickets))
}

// ListPurchases returns the customer's purchases with their tickets,
// newest first.
func (h *CustomerHandler) ListPurchases(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	purchases, ticketsByPurchase, err := h.Sales.ListPurchases(ctx, customerID)
	if err != nil {
		return respondError(c, err)
	}
	views := make([]purchaseView, 0, len(purchases))
	for _, p := range purchases {
		views = append(views, newPurchaseView(p, ticketsByPurchase[p.ID]))
	}
	return c.JSON(http.StatusOK, echo.Map{"purchases": views})
}

// RescheduleTicket moves one of the customer's own tickets to another
// session or seat. The departure cutoff applies and the original seat
// is released back to the pool.
func (h *CustomerHandler) RescheduleTicket(c echo.Context) error {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req selfRescheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ToSessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to_session_id required"})
	}
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Ownership check before any state is touched.
	ticket, err := h.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return respondError(c, err)
	}
	purchase, err := h.Tickets.GetPurchase(ctx, ticket.PurchaseID)
	if err != nil {
		return respondError(c, err)
	}
	if purchase.CustomerID != customerID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": model.ErrTicketNotFound.Error()})
	}

	rec, err := h.Reschedule.RescheduleOne(ctx, service.RescheduleOneParams{
		TicketID:      ticketID,
		ToSessionID:   req.ToSessionID,
		ToSeat:        req.ToSeat,
		ActorID:       customerID,
		Reason:        req.Reason,
		StaffOverride: false,
	})
	if err != nil {
		return respondError(c, err)
	}
	views := newRescheduleRecordViews([]*model.RescheduleRecord{rec})
	return c.JSON(http.StatusOK, views[0])
}
