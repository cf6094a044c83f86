package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel comparison via Is
	"net/http" // net/http defines standard HTTP status codes
	"strconv"  // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter. The second return value is
// false when the parameter is missing or not a positive integer.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// respondError translates domain sentinel errors into HTTP responses.
// Unknown errors become a generic 500 so internals never leak to
// clients.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrTicketNotFound),
		errors.Is(err, model.ErrPurchaseNotFound),
		errors.Is(err, model.ErrUnknownSeat):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, model.ErrSeatUnavailable),
		errors.Is(err, model.ErrInvalidSeatState),
		errors.Is(err, model.ErrInvalidState),
		errors.Is(err, model.ErrAlreadyCancelled),
		errors.Is(err, model.ErrAlreadyPast),
		errors.Is(err, model.ErrSessionCancelled),
		errors.Is(err, model.ErrTooLateToReschedule):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrReasonRequired),
		errors.Is(err, model.ErrTimeMustBeFuture):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrCodeGenerationExhausted):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
