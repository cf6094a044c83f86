// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API. These routes allow
// unauthenticated users to browse sessions and seat availability without
// requiring authentication. Responses carry only safe fields.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// PublicHandler aggregates the services needed for unauthenticated
// browsing. It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
	Sessions *service.SessionService
}

// NewPublicHandler constructs a PublicHandler and panics if the service is nil.
func NewPublicHandler(sessions *service.SessionService) *PublicHandler {
	if sessions == nil {
		panic("nil service passed to NewPublicHandler")
	}
	return &PublicHandler{Sessions: sessions}
}

// ListSessions returns every session ordered by start time. Response
// JSON contains an "items" array of session views without seat lists.
func (h *PublicHandler) ListSessions(c echo.Context) error {
	sessions, err := h.Sessions.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, newSessionView(s, false))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListSessionsByMovie returns the sessions of one movie ordered by
// start time.
func (h *PublicHandler) ListSessionsByMovie(c echo.Context) error {
	movieID, ok := pathID(c, "movie_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	sessions, err := h.Sessions.FindByMovie(c.Request().Context(), movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, newSessionView(s, false))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetSession returns one session with the list of still-available
// seats so customers can pick before authenticating.
func (h *PublicHandler) GetSession(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	sess, err := h.Sessions.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionView(sess, true))
}
