package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/handler"    // staff handlers
	"github.com/iliyamo/cinema-ticketing/internal/middleware" // JWT + role middlewares
)

// RegisterStaff registers STAFF-scoped endpoints under /v1. All routes
// require a valid JWT and the STAFF role. Staff manage the session
// schedule, force reschedules past the cutoff, trigger the expiry sweep
// and inspect ticket audit trails.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STAFF"),
	)

	// ---- Sessions ----
	g.POST("/sessions", s.CreateSession)
	g.PUT("/sessions/:id", s.ModifySession)
	g.PATCH("/sessions/:id", s.ModifySession) // allow partial updates via PATCH as well
	g.DELETE("/sessions/:id", s.CancelSession)
	g.GET("/staff/sessions/:id", s.GetSession) // box office view with the full seat map

	// ---- Rescheduling ----
	// Single-ticket override: skips the departure cutoff and keeps the
	// original seat occupied as a fallback for the customer.
	g.POST("/staff/tickets/:id/reschedule", s.RescheduleTicket)
	// Whole-session shift: moves the start time and writes one audit
	// record per affected active ticket.
	g.POST("/sessions/:id/reschedule", s.RescheduleSession)

	// ---- Maintenance and audit ----
	g.POST("/maintenance/sweep", s.Sweep)
	g.GET("/tickets/:id/history", s.TicketHistory)
}

// RegisterGate registers the gate validation endpoint. Scanning
// happens at the door, so the route requires the STAFF role. The
// optional extra middleware (the Redis rate limiter) guards against
// runaway scan devices.
func RegisterGate(e *echo.Echo, g *handler.GateHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	grp := e.Group(
		"/v1/gate",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STAFF"),
	)
	grp.Use(mw...)
	grp.POST("/validate", g.Validate)
}
