package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1. All
// routes require a valid JWT and the CUSTOMER role. Customers buy
// seats, browse their own purchases and reschedule their own tickets
// within the departure cutoff. The optional extra middleware (the Redis
// rate limiter) wraps the purchase endpoint, which is the hot path
// during on-sale spikes.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, purchaseMW ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/purchases", h.CreatePurchase, purchaseMW...)
	g.GET("/purchases", h.ListPurchases)
	g.GET("/purchases/:id", h.GetPurchase)
	g.POST("/tickets/:id/reschedule", h.RescheduleTicket)
}
