package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

// BlockerHandler serves the room blocker endpoints.  Blockers are
// advisory banners; they never prevent desk bookings.
type BlockerHandler struct {
	Bookings *repository.BookingRepo
}

// NewBlockerHandler constructs a BlockerHandler.
func NewBlockerHandler(bookings *repository.BookingRepo) *BlockerHandler {
	return &BlockerHandler{Bookings: bookings}
}

// CreateBlocker handles POST /v1/blockers.  Start and end times are only
// read for the custom blocker type; the fixed types carry their own
// ranges.  At most one blocker exists per room and day.
func (h *BlockerHandler) CreateBlocker(c echo.Context) error {
	var body struct {
		Date        string `json:"date"`
		Room        string `json:"room"`
		UserID      string `json:"user_id"`
		BlockerType string `json:"blocker_type"`
		StartTime   string `json:"start_time"`
		EndTime     string `json:"end_time"`
		Reason      string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	date, err := parseDateParam(body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	blocker, err := h.Bookings.Block(date, body.Room, body.UserID, model.BlockerType(body.BlockerType), body.StartTime, body.EndTime, body.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, blocker)
}

// GetBlocker handles GET /v1/blockers/:date/:room and returns the
// blocker together with its rendered banner message.
func (h *BlockerHandler) GetBlocker(c echo.Context) error {
	date, err := parseDateParam(c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	room := c.Param("room")
	blocker, err := h.Bookings.Blocker(date, room)
	if err != nil {
		return fail(c, err)
	}
	message, err := h.Bookings.BlockMessage(date, room)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blocker": blocker, "message": message})
}

// DeleteBlocker handles DELETE /v1/blockers/:date/:room.  Removing a
// blocker that does not exist is a no-op.
func (h *BlockerHandler) DeleteBlocker(c echo.Context) error {
	date, err := parseDateParam(c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	if err := h.Bookings.Unblock(date, c.Param("room")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}
