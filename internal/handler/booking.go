package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/queue"
	"github.com/iliyamo/desk-booking/internal/repository"
	queue_publisher "github.com/iliyamo/desk-booking/internal/service"
)

// BookingHandler serves the booking ledger endpoints and the day
// overview.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Settings *repository.SettingsRepo
	// PublishEvents toggles broker notifications; disabled in tests.
	PublishEvents bool
}

// NewBookingHandler constructs a BookingHandler with event publishing
// enabled.
func NewBookingHandler(bookings *repository.BookingRepo, users *repository.UserRepo, settings *repository.SettingsRepo) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Users: users, Settings: settings, PublishEvents: true}
}

// CreateBooking handles POST /v1/bookings.  Overrides of existing
// bookings follow the same path; a rejected transition comes back as a
// 409 carrying the occupying booking.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body struct {
		Date        string `json:"date"`
		Room        string `json:"room"`
		Desk        int    `json:"desk"`
		UserID      string `json:"user_id"`
		BookingType string `json:"booking_type"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	date, err := parseDateParam(body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	booking, err := h.Bookings.Book(date, body.Room, body.Desk, body.UserID, model.BookingType(body.BookingType), model.CreatedViaManual)
	if err != nil {
		return fail(c, err)
	}
	h.notifyCreated(booking)
	return c.JSON(http.StatusCreated, booking)
}

// CancelBooking handles DELETE /v1/bookings/:date/:room/:desk.
// Cancelling a free desk is a no-op and still returns 200.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	date, err := parseDateParam(c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	desk, err := parseDeskParam(c.Param("desk"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := h.Bookings.Cancel(date, c.Param("room"), desk); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

// GetDay handles GET /v1/days/:date and returns the full overview of
// one day: every desk of both rooms with occupant, name, the advisory
// blocker banner and the holiday flag.
func (h *BookingHandler) GetDay(c echo.Context) error {
	date, err := parseDateParam(c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	overview, err := h.Bookings.Overview(date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, overview)
}

// GetAvailability handles GET /v1/days/:date/availability and returns
// the free desks per room.  Room blockers never reduce this list.
func (h *BookingHandler) GetAvailability(c echo.Context) error {
	date, err := parseDateParam(c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	availability := map[string][]int{}
	for _, room := range model.Rooms() {
		free, err := h.Bookings.AvailableDesks(date, room)
		if err != nil {
			return fail(c, err)
		}
		availability[room] = free
	}
	return c.JSON(http.StatusOK, availability)
}

// notifyCreated publishes a booking.created event in the background.
// Broker outages only cost the notification, never the booking.
func (h *BookingHandler) notifyCreated(booking *model.Booking) {
	if !h.PublishEvents {
		return
	}
	publishCreated(h.Users, h.Settings, booking)
}

// publishCreated enriches a booking with the owner's display name and
// the desk's display name, then hands the event to the broker in a
// goroutine so the request never waits on RabbitMQ.
func publishCreated(users *repository.UserRepo, settings *repository.SettingsRepo, booking *model.Booking) {
	if booking == nil {
		return
	}
	event := queue.BookingCreatedEvent{
		BookingKey:  booking.Date + "_" + booking.Room + "_" + strconv.Itoa(booking.DeskNum),
		UserID:      booking.UserID,
		Date:        booking.Date,
		Room:        booking.Room,
		DeskNum:     booking.DeskNum,
		BookingType: string(booking.BookingType),
		CreatedVia:  booking.CreatedVia,
		CreatedAt:   booking.CreatedAt,
	}
	if user, err := users.Get(booking.UserID); err == nil {
		event.Username = user.Username
	}
	if name, err := settings.DeskName(booking.Room, booking.DeskNum); err == nil {
		event.DeskName = name
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingCreated(ctx, event)
	}()
}
