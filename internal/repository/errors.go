// Package repository implements the core operations over the shared
// snapshot: the user registry, the booking ledger and the settings data.
// This file defines the error taxonomy reused across repositories.  The
// sentinel values allow handlers to translate failures into HTTP status
// codes without inspecting message text: validation failures become 400,
// missing references 404 and rejected transitions 409.
package repository

import (
	"errors"
	"fmt"

	"github.com/iliyamo/desk-booking/internal/model"
)

// ErrValidation is wrapped by every bad-input failure (empty username,
// unknown room, malformed time, oversized text).  Recoverable; the caller
// is expected to correct the input and retry.
var ErrValidation = errors.New("validation failed")

// ErrNotFound is returned when an operation references a missing user,
// template or ledger entry.  Surfaced once, no retry.
var ErrNotFound = errors.New("not found")

// ErrConflict is the base error for every transition rejected by the
// booking state machine and for attempts to double-block a room.
var ErrConflict = errors.New("conflict")

// ErrTemplateLimit is returned when saving a template under a new name
// would exceed the per-user cap.  Overwriting an existing name never
// triggers it.
var ErrTemplateLimit = errors.New("template limit reached")

// BookingConflictError reports a rejected desk booking transition along
// with the record currently occupying the key, so the caller can decide
// what to present.  It unwraps to ErrConflict.
type BookingConflictError struct {
	Key     string         // ledger key the transition targeted
	Current *model.Booking // the occupying booking
}

func (e *BookingConflictError) Error() string {
	return fmt.Sprintf("booking conflict on %s: desk already booked as %s", e.Key, e.Current.BookingType)
}

func (e *BookingConflictError) Unwrap() error { return ErrConflict }

// BlockerConflictError reports an attempt to block a room that already
// carries a blocker for the date.  The existing blocker must be removed
// explicitly before a new one can be placed.  It unwraps to ErrConflict.
type BlockerConflictError struct {
	Key     string             // ledger key the blocker targeted
	Current *model.RoomBlocker // the existing blocker
}

func (e *BlockerConflictError) Error() string {
	return fmt.Sprintf("blocker conflict on %s: room already blocked %s-%s", e.Key, e.Current.StartTime, e.Current.EndTime)
}

func (e *BlockerConflictError) Unwrap() error { return ErrConflict }
