// Package handler contains the HTTP handlers of the desk booking API.
// Handlers bind and validate the request shape, delegate to the
// repositories and translate sentinel errors into HTTP status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/store"
)

// parseDateParam reads a YYYY-MM-DD path or query value.
func parseDateParam(value string) (time.Time, error) {
	return model.ParseDateKey(value)
}

// parseDeskParam reads a positive desk number from a path segment.
func parseDeskParam(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, errors.New("desk must be a positive number")
	}
	return n, nil
}

// fail maps repository and store sentinels to HTTP responses.  Conflict
// errors carry the occupying record so clients can render who holds the
// slot without a second round trip.
func fail(c echo.Context, err error) error {
	var bookingConflict *repository.BookingConflictError
	if errors.As(err, &bookingConflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   bookingConflict.Error(),
			"key":     bookingConflict.Key,
			"current": bookingConflict.Current,
		})
	}
	var blockerConflict *repository.BlockerConflictError
	if errors.As(err, &blockerConflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   blockerConflict.Error(),
			"key":     blockerConflict.Key,
			"current": blockerConflict.Current,
		})
	}
	switch {
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrTemplateLimit):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrPersistence):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to persist changes"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
