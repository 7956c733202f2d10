// Package template implements per-user weekly booking templates: saving
// and deleting named schedules, projecting a schedule onto a concrete
// future week, and materialising the chosen slots into the booking
// ledger.
package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/store"
)

// Engine runs template operations against the shared store.  The clock is
// injectable because every classification ("past day", "future Monday")
// depends on today's date.
type Engine struct {
	store *store.Store
	now   func() time.Time
}

// NewEngine returns an Engine bound to the given store.
func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// SetNow overrides the engine clock.  Intended for tests.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

// Save creates or overwrites a named template for a user.  The name is
// the identity key: saving under an existing name updates it in place and
// never counts against the five-template cap.  The schedule must be
// non-empty, use only monday..friday keys and only the three concrete
// booking types (a template can never produce a maybe booking).
func (e *Engine) Save(userID, name string, schedule map[string]model.BookingType) (*model.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name is required", repository.ErrValidation)
	}
	if len([]rune(name)) > model.MaxTemplateNameLen {
		return nil, fmt.Errorf("%w: template name exceeds %d characters", repository.ErrValidation, model.MaxTemplateNameLen)
	}
	if len(schedule) == 0 {
		return nil, fmt.Errorf("%w: template must cover at least one weekday", repository.ErrValidation)
	}
	for day, bookingType := range schedule {
		if !model.ValidWeekday(day) {
			return nil, fmt.Errorf("%w: unknown weekday %q", repository.ErrValidation, day)
		}
		switch bookingType {
		case model.BookingFullDay, model.BookingHalfAM, model.BookingHalfPM:
		default:
			return nil, fmt.Errorf("%w: booking type %q not allowed in a template", repository.ErrValidation, bookingType)
		}
	}

	var saved *model.Template
	err := e.store.Update(func(snap *store.Snapshot) error {
		user, ok := snap.Users[userID]
		if !ok {
			return fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
		}
		if user.Templates == nil {
			user.Templates = map[string]*model.Template{}
		}
		existing, exists := user.Templates[name]
		if !exists && len(user.Templates) >= model.MaxTemplatesPerUser {
			return fmt.Errorf("%w: user %s already has %d templates", repository.ErrTemplateLimit, userID, model.MaxTemplatesPerUser)
		}

		now := e.now().Format(time.RFC3339)
		tpl := &model.Template{
			Name:      name,
			Schedule:  schedule,
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		}
		if exists {
			tpl.CreatedAt = existing.CreatedAt
			tpl.Version = existing.Version + 1
		}
		user.Templates[name] = tpl
		copied := *tpl
		saved = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete removes a named template.  A missing user or template name is
// reported as not found rather than ignored.
func (e *Engine) Delete(userID, name string) error {
	return e.store.Update(func(snap *store.Snapshot) error {
		user, ok := snap.Users[userID]
		if !ok {
			return fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
		}
		if _, ok := user.Templates[name]; !ok {
			return fmt.Errorf("%w: template %q", repository.ErrNotFound, name)
		}
		delete(user.Templates, name)
		return nil
	})
}

// List returns all templates of a user keyed by name.
func (e *Engine) List(userID string) (map[string]*model.Template, error) {
	out := map[string]*model.Template{}
	err := e.store.View(func(snap *store.Snapshot) error {
		user, ok := snap.Users[userID]
		if !ok {
			return fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
		}
		for name, tpl := range user.Templates {
			copied := *tpl
			out[name] = &copied
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RoomAvailability is the per-room desk availability snapshot attached to
// a valid day.
type RoomAvailability struct {
	AvailableDesks []int `json:"available_desks"`
	TotalDesks     int   `json:"total_desks"`
}

// ValidDay describes a weekday the template can be applied to, carrying
// the availability snapshot the caller picks a desk from.
type ValidDay struct {
	Date         string                      `json:"date"`
	Availability map[string]RoomAvailability `json:"availability"`
	BookingType  model.BookingType           `json:"booking_type"`
}

// SkippedDay describes a weekday the template cannot be applied to.
type SkippedDay struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// ValidationResult partitions the scheduled weekdays of one concrete week
// into applicable, blocked and past days.
type ValidationResult struct {
	ValidDays   map[string]ValidDay   `json:"valid_days"`
	BlockedDays map[string]SkippedDay `json:"blocked_days"`
	PastDays    map[string]SkippedDay `json:"past_days"`
}

// ValidateApplication projects a schedule onto the week starting at
// weekStart (a Monday) and classifies each scheduled weekday.  Days
// strictly before today are past and never offered.  A day is blocked
// only when both rooms have zero free desks; room blockers are advisory
// and do not reduce availability.
func (e *Engine) ValidateApplication(userID string, weekStart time.Time, schedule map[string]model.BookingType) (*ValidationResult, error) {
	result := &ValidationResult{
		ValidDays:   map[string]ValidDay{},
		BlockedDays: map[string]SkippedDay{},
		PastDays:    map[string]SkippedDay{},
	}
	// Dates are compared by their YYYY-MM-DD keys so that the caller's
	// week start (parsed in UTC) and the local clock cannot disagree by
	// a few hours around midnight.
	todayKey := model.FormatDateKey(e.now())

	err := e.store.View(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[userID]; !ok {
			return fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
		}
		for offset, weekday := range model.Weekdays {
			bookingType, scheduled := schedule[weekday]
			if !scheduled {
				continue
			}
			date := weekStart.AddDate(0, 0, offset)
			dateKey := model.FormatDateKey(date)

			if dateKey < todayKey {
				result.PastDays[weekday] = SkippedDay{Date: dateKey, Reason: "Past date"}
				continue
			}

			availability := map[string]RoomAvailability{}
			hasFreeDesk := false
			for _, room := range model.Rooms() {
				free := repository.AvailableDesksIn(snap, date, room)
				availability[room] = RoomAvailability{
					AvailableDesks: free,
					TotalDesks:     model.DeskCount(room),
				}
				if len(free) > 0 {
					hasFreeDesk = true
				}
			}
			if !hasFreeDesk {
				result.BlockedDays[weekday] = SkippedDay{Date: dateKey, Reason: "No available desks"}
				continue
			}
			result.ValidDays[weekday] = ValidDay{
				Date:         dateKey,
				Availability: availability,
				BookingType:  bookingType,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

/// Selection is one caller-resolved slot to materialise: a weekday mapped
// to a concrete (date, room, desk) with the booking type the schedule
// prescribed.  Desk choice is the caller's responsibility; when exactly
// one desk was available the caller is expected to have auto-selected it.
type Selection struct {
	Day         string            `json:"day"`
	Room        string            `json:"room"`
	Desk        int               `json:"desk"`
	Date        string            `json:"date"`
	BookingType model.BookingType `json:"booking_type"`
}

// Apply materialises the selections into the booking ledger.  Each target
// key is re-checked at application time; slots that were taken between
// validation and application are skipped, not failed, as are selections
// that no longer parse or validate.  All surviving bookings are persisted
// in a single save.  The created bookings are returned for reporting.
func (e *Engine) Apply(userID string, selections map[string]Selection) ([]*model.Booking, error) {
	created := []*model.Booking{}
	err := e.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[userID]; !ok {
			return fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
		}
		for _, sel := range selections {
			date, err := model.ParseDateKey(sel.Date)
			if err != nil {
				continue
			}
			if !model.ValidRoom(sel.Room) || !model.ValidDesk(sel.Room, sel.Desk) || !sel.BookingType.Valid() {
				continue
			}
			key := model.BookingKey(date, sel.Room, sel.Desk)
			if _, occupied := snap.Bookings[key]; occupied {
				continue
			}
			booking := &model.Booking{
				UserID:      userID,
				BookingType: sel.BookingType,
				CreatedAt:   e.now().Format(time.RFC3339),
				Date:        sel.Date,
				Room:        sel.Room,
				DeskNum:     sel.Desk,
				EntryType:   model.EntryTypeBooking,
				CreatedVia:  model.CreatedViaTemplate,
			}
			snap.Bookings[key] = booking
			created = append(created, booking)
		}
		if len(created) == 0 {
			return store.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Week is one future Monday-starting week offered as a template target.
type Week struct {
	WeekStart string `json:"week_start"`
	Label     string `json:"label"`
}

// FutureWeeks enumerates the next n Monday-starting weeks beginning from
// the soonest strictly-future Monday.  The current week is never offered:
// when today is a Monday the enumeration starts seven days out.
func (e *Engine) FutureWeeks(n int) []Week {
	today := dateOnly(e.now())
	daysUntilMonday := (int(time.Monday) - int(today.Weekday()) + 7) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	nextMonday := today.AddDate(0, 0, daysUntilMonday)

	weeks := make([]Week, 0, n)
	for i := 0; i < n; i++ {
		start := nextMonday.AddDate(0, 0, 7*i)
		end := start.AddDate(0, 0, 4)
		span := fmt.Sprintf("%s - %s", start.Format("02.01"), end.Format("02.01"))
		label := fmt.Sprintf("In %d Weeks (%s)", i+1, span)
		if i == 0 {
			label = fmt.Sprintf("Next Week (%s)", span)
		}
		weeks = append(weeks, Week{WeekStart: model.FormatDateKey(start), Label: label})
	}
	return weeks
}

// dateOnly truncates a timestamp to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
