package repository

import (
	"fmt"
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/store"
)

// BookingRepo is the booking ledger: it owns the conflict/override rules
// for desk bookings and the advisory room blockers sharing the keyspace.
//
// One known quirk is preserved on purpose: when a half_am booking is
// completed with a half_pm (or vice versa) the stored record is simply
// overwritten with the newer type, so consumers only ever see the latest
// half even though both halves are occupied.  Product has been asked to
// clarify whether both halves should be stored; do not fix silently.
type BookingRepo struct {
	store *store.Store
	now   func() time.Time
}

// NewBookingRepo returns a BookingRepo bound to the given store.
func NewBookingRepo(st *store.Store) *BookingRepo {
	return &BookingRepo{store: st, now: time.Now}
}

// SetNow overrides the repository clock.  Intended for tests.
func (r *BookingRepo) SetNow(now func() time.Time) { r.now = now }

// CanOverride applies the transition table for one desk key.  A maybe
// booking is always weak and may be replaced by anything; a half-day
// booking may only be completed by the opposite half; full-day and
// completed bookings are immutable until cancelled.
func CanOverride(current *model.Booking, next model.BookingType) bool {
	if current == nil {
		return true
	}
	switch current.BookingType {
	case model.BookingMaybe:
		return true
	case model.BookingHalfAM:
		return next == model.BookingHalfPM
	case model.BookingHalfPM:
		return next == model.BookingHalfAM
	}
	return false
}

// Book creates or overrides the booking for one desk on one day.  The
// transition table decides whether an occupied key may be overridden; a
// rejected transition surfaces a BookingConflictError carrying the
// occupying record.  via tags how the booking was created (manual or
// template).
func (r *BookingRepo) Book(date time.Time, room string, deskNum int, userID string, bookingType model.BookingType, via string) (*model.Booking, error) {
	if !model.ValidRoom(room) {
		return nil, fmt.Errorf("%w: unknown room %q", ErrValidation, room)
	}
	if !model.ValidDesk(room, deskNum) {
		return nil, fmt.Errorf("%w: room %s has no desk %d", ErrValidation, room, deskNum)
	}
	if !bookingType.Valid() {
		return nil, fmt.Errorf("%w: unknown booking type %q", ErrValidation, bookingType)
	}
	if via == "" {
		via = model.CreatedViaManual
	}

	key := model.BookingKey(date, room, deskNum)
	booking := &model.Booking{
		UserID:      userID,
		BookingType: bookingType,
		CreatedAt:   r.now().Format(time.RFC3339),
		Date:        model.FormatDateKey(date),
		Room:        room,
		DeskNum:     deskNum,
		EntryType:   model.EntryTypeBooking,
		CreatedVia:  via,
	}
	err := r.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[userID]; !ok {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		if current, ok := snap.Bookings[key]; ok && !CanOverride(current, bookingType) {
			return &BookingConflictError{Key: key, Current: current}
		}
		snap.Bookings[key] = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel removes the booking for one desk on one day.  Removal is
// unconditional and idempotent: cancelling a free desk is a no-op and
// does not touch the files.
func (r *BookingRepo) Cancel(date time.Time, room string, deskNum int) error {
	key := model.BookingKey(date, room, deskNum)
	return r.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Bookings[key]; !ok {
			return store.ErrNoChange
		}
		delete(snap.Bookings, key)
		return nil
	})
}

// Status returns the booking occupying a desk on a day, or nil when the
// desk is free.
func (r *BookingRepo) Status(date time.Time, room string, deskNum int) (*model.Booking, error) {
	var booking *model.Booking
	err := r.store.View(func(snap *store.Snapshot) error {
		if b, ok := snap.Bookings[model.BookingKey(date, room, deskNum)]; ok {
			copied := *b
			booking = &copied
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Block places a room blocker for one day.  Only one blocker may exist
// per (date, room); the existing one must be removed explicitly first.
// Non-custom types carry fixed time ranges; custom requires both HH:MM
// bounds with start before end.  The reason is truncated to 20 runes.
func (r *BookingRepo) Block(date time.Time, room string, userID string, blockerType model.BlockerType, customStart, customEnd, reason string) (*model.RoomBlocker, error) {
	if !model.ValidRoom(room) {
		return nil, fmt.Errorf("%w: unknown room %q", ErrValidation, room)
	}
	if !blockerType.Valid() {
		return nil, fmt.Errorf("%w: unknown blocker type %q", ErrValidation, blockerType)
	}
	start, end, fixed := model.BlockerTimeRange(blockerType)
	if !fixed {
		if err := validateTimeRange(customStart, customEnd); err != nil {
			return nil, err
		}
		start, end = customStart, customEnd
	}
	if runes := []rune(reason); len(runes) > model.MaxBlockerReasonLen {
		reason = string(runes[:model.MaxBlockerReasonLen])
	}

	key := model.BlockerKey(date, room)
	blocker := &model.RoomBlocker{
		UserID:      userID,
		BlockerType: blockerType,
		StartTime:   start,
		EndTime:     end,
		Reason:      reason,
		CreatedAt:   r.now().Format(time.RFC3339),
		Date:        model.FormatDateKey(date),
		Room:        room,
		EntryType:   model.EntryTypeBlocker,
	}
	err := r.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[userID]; !ok {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		if current, ok := snap.Blockers[key]; ok {
			return &BlockerConflictError{Key: key, Current: current}
		}
		snap.Blockers[key] = blocker
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocker, nil
}

// Unblock removes the blocker for one (date, room).  Idempotent.
func (r *BookingRepo) Unblock(date time.Time, room string) error {
	key := model.BlockerKey(date, room)
	return r.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Blockers[key]; !ok {
			return store.ErrNoChange
		}
		delete(snap.Blockers, key)
		return nil
	})
}

// Blocker returns the blocker for one (date, room), or nil when none.
func (r *BookingRepo) Blocker(date time.Time, room string) (*model.RoomBlocker, error) {
	var blocker *model.RoomBlocker
	err := r.store.View(func(snap *store.Snapshot) error {
		if b, ok := snap.Blockers[model.BlockerKey(date, room)]; ok {
			copied := *b
			blocker = &copied
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocker, nil
}

// BlockMessage returns the human-readable warning for a blocked room, or
// an empty string when the room carries no blocker.  The blocking user's
// display name is resolved from the registry, falling back to the frozen
// archived name for deleted users.
func (r *BookingRepo) BlockMessage(date time.Time, room string) (string, error) {
	var message string
	err := r.store.View(func(snap *store.Snapshot) error {
		blocker, ok := snap.Blockers[model.BlockerKey(date, room)]
		if !ok {
			return nil
		}
		message = formatBlockMessage(snap, blocker)
		return nil
	})
	if err != nil {
		return "", err
	}
	return message, nil
}

// formatBlockMessage renders a blocker into the warning line shown next
// to a room.
func formatBlockMessage(snap *store.Snapshot, blocker *model.RoomBlocker) string {
	username := "Unknown User"
	if blocker.UserID == model.DeletedUserID {
		username = blocker.ArchivedUsername
		if username == "" {
			username = "Deleted User"
		}
	} else if u, ok := snap.Users[blocker.UserID]; ok {
		username = u.Username
	}
	message := fmt.Sprintf("This room is blocked from %s to %s by %s", blocker.StartTime, blocker.EndTime, username)
	if blocker.Reason != "" {
		message += fmt.Sprintf(" (%s)", blocker.Reason)
	}
	return message
}

// AvailableDesks returns the free desk numbers of a room on a day.  A
// room blocker does not affect the result: the blocker is advisory and a
// blocked room with free desks still has available desks.
func (r *BookingRepo) AvailableDesks(date time.Time, room string) ([]int, error) {
	var desks []int
	err := r.store.View(func(snap *store.Snapshot) error {
		desks = AvailableDesksIn(snap, date, room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return desks, nil
}

// AvailableDesksIn is the snapshot-level availability check, shared with
// the template engine which runs it inside its own store transaction.
func AvailableDesksIn(snap *store.Snapshot, date time.Time, room string) []int {
	desks := []int{}
	for desk := 1; desk <= model.DeskCount(room); desk++ {
		if _, ok := snap.Bookings[model.BookingKey(date, room, desk)]; !ok {
			desks = append(desks, desk)
		}
	}
	return desks
}

// validateTimeRange checks the HH:MM bounds of a custom blocker.
func validateTimeRange(start, end string) error {
	if start == "" || end == "" {
		return fmt.Errorf("%w: custom blocker requires start and end times", ErrValidation)
	}
	from, err := time.Parse("15:04", start)
	if err != nil {
		return fmt.Errorf("%w: invalid start time %q", ErrValidation, start)
	}
	to, err := time.Parse("15:04", end)
	if err != nil {
		return fmt.Errorf("%w: invalid end time %q", ErrValidation, end)
	}
	if !from.Before(to) {
		return fmt.Errorf("%w: start time %s must be before end time %s", ErrValidation, start, end)
	}
	return nil
}
