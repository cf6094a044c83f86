package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinema-ticketing/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/cinema-ticketing/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler. This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Token issuing endpoints do not require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access only issues a new
	// access token and leaves the refresh token in place.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body and does not require a JWT.
	g.POST("/logout", a.Logout)

	// Protected endpoints require a valid access token and a known role.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("STAFF", "CUSTOMER"))
	auth.GET("/me", a.Me)

	// Alias so clients can call /v1/logout as well as /v1/auth/logout.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints. The
// provided PublicHandler returns sanitized session data for guests; no
// JWT or role middleware applies. The optional extra middleware (the
// Redis response cache) wraps every browse route.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	// List every session.
	e.GET("/v1/sessions", p.ListSessions, mw...)
	// List the sessions of one movie.
	e.GET("/v1/movies/:movie_id/sessions", p.ListSessionsByMovie, mw...)
	// Session detail including the currently available seats, so guests
	// can preview before registering.
	e.GET("/v1/sessions/:id", p.GetSession, mw...)
}
