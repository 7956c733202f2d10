// Package model defines the persistent data types of the desk booking
// service and the constants governing them.  Records are stored in three
// JSON documents; every type here carries the json tags of its on-disk
// form.
package model

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD form used in ledger keys and
// stored dates.  String comparison of two date keys orders them
// chronologically.
const DateKeyLayout = "2006-01-02"

// DeletedUserID is the sentinel a ledger entry's user reference is
// rewritten to when its owner is deleted and the entry is archived.
const DeletedUserID = "DELETED_USER"

// BlockerDeskToken takes the desk position in a room blocker's ledger
// key, marking the entry as room-wide.
const BlockerDeskToken = "ROOM_BLOCKER"

// Entry type tags distinguish the two record kinds sharing the
// bookings.json keyspace.
const (
	EntryTypeBooking = "desk_booking"
	EntryTypeBlocker = "room_blocker"
)

// Created-via tags record how a booking came to exist.
const (
	CreatedViaManual   = "manual"
	CreatedViaTemplate = "template"
)

// BookingType classifies a desk booking.  The type drives the override
// rules: maybe is weak and always replaceable, the two halves complete
// each other, full_day is immutable until cancelled.
type BookingType string

const (
	BookingFullDay BookingType = "full_day"
	BookingHalfAM  BookingType = "half_am"
	BookingHalfPM  BookingType = "half_pm"
	BookingMaybe   BookingType = "maybe"
)

// Valid reports whether t is one of the four booking types.
func (t BookingType) Valid() bool {
	switch t {
	case BookingFullDay, BookingHalfAM, BookingHalfPM, BookingMaybe:
		return true
	}
	return false
}

// Booking is one desk reservation for one day, stored under the key
// "{date}_{room}_{desk}" in bookings.json.
//
// Fields:
//  UserID           – owning user id, or DeletedUserID once archived.
//  BookingType      – one of the four booking types.
//  CreatedAt        – creation timestamp (RFC 3339).
//  Date, Room,
//  DeskNum          – denormalised copies of the key parts, so consumers
//                     never parse keys.
//  EntryType        – always EntryTypeBooking; tags the record kind in
//                     the shared keyspace.
//  CreatedVia       – manual or template.
//  ArchivedUsername – display name frozen in when the owner is deleted.
//  ArchivedAt       – archival timestamp (RFC 3339), empty while live.
//  OriginalUserID   – the owner's id before archival, kept for audits.
type Booking struct {
	UserID           string      `json:"user_id"`
	BookingType      BookingType `json:"booking_type"`
	CreatedAt        string      `json:"created_at"`
	Date             string      `json:"date"`
	Room             string      `json:"room"`
	DeskNum          int         `json:"desk_num"`
	EntryType        string      `json:"entry_type"`
	CreatedVia       string      `json:"created_via,omitempty"`
	ArchivedUsername string      `json:"archived_username,omitempty"`
	ArchivedAt       string      `json:"archived_at,omitempty"`
	OriginalUserID   string      `json:"original_user_id,omitempty"`
}

// BlockerType classifies a room blocker.  The first three carry fixed
// time ranges; custom requires explicit HH:MM bounds.
type BlockerType string

const (
	BlockerMorning   BlockerType = "morning"
	BlockerAfternoon BlockerType = "afternoon"
	BlockerFullDay   BlockerType = "full_day"
	BlockerCustom    BlockerType = "custom"
)

// Valid reports whether t is one of the four blocker types.
func (t BlockerType) Valid() bool {
	switch t {
	case BlockerMorning, BlockerAfternoon, BlockerFullDay, BlockerCustom:
		return true
	}
	return false
}

// BlockerTimeRange returns the fixed HH:MM range of a blocker type.
// fixed is false for the custom type, whose range the caller supplies.
func BlockerTimeRange(t BlockerType) (start, end string, fixed bool) {
	switch t {
	case BlockerMorning:
		return "09:00", "12:00", true
	case BlockerAfternoon:
		return "13:00", "17:00", true
	case BlockerFullDay:
		return "08:00", "18:00", true
	}
	return "", "", false
}

// RoomBlocker marks a whole room as occupied for a time range on one
// day, stored under the key "{date}_{room}_ROOM_BLOCKER".  Blockers are
// advisory: they render as a warning but never prevent desk bookings.
// The archival fields mirror those of Booking.
type RoomBlocker struct {
	UserID           string      `json:"user_id"`
	BlockerType      BlockerType `json:"blocker_type"`
	StartTime        string      `json:"start_time"`
	EndTime          string      `json:"end_time"`
	Reason           string      `json:"reason,omitempty"`
	CreatedAt        string      `json:"created_at"`
	Date             string      `json:"date"`
	Room             string      `json:"room"`
	EntryType        string      `json:"entry_type"`
	ArchivedUsername string      `json:"archived_username,omitempty"`
	ArchivedAt       string      `json:"archived_at,omitempty"`
	OriginalUserID   string      `json:"original_user_id,omitempty"`
}

// The office has exactly two rooms with fixed desk counts.
const (
	RoomKlein = "klein"
	RoomGross = "gross"
)

// Rooms returns the room identifiers in display order.
func Rooms() []string { return []string{RoomKlein, RoomGross} }

// ValidRoom reports whether room is one of the two known rooms.
func ValidRoom(room string) bool { return room == RoomKlein || room == RoomGross }

// DeskCount returns the number of desks in a room, 0 for unknown rooms.
func DeskCount(room string) int {
	switch room {
	case RoomKlein:
		return 2
	case RoomGross:
		return 5
	}
	return 0
}

// ValidDesk reports whether deskNum exists in the given room.  Desks are
// numbered from 1.
func ValidDesk(room string, deskNum int) bool {
	return deskNum >= 1 && deskNum <= DeskCount(room)
}

// FormatDateKey renders a timestamp as its YYYY-MM-DD ledger form.
func FormatDateKey(t time.Time) string { return t.Format(DateKeyLayout) }

// ParseDateKey parses a YYYY-MM-DD string.
func ParseDateKey(s string) (time.Time, error) { return time.Parse(DateKeyLayout, s) }

// BookingKey builds the ledger key of a desk booking.
func BookingKey(date time.Time, room string, deskNum int) string {
	return fmt.Sprintf("%s_%s_%d", FormatDateKey(date), room, deskNum)
}

// BlockerKey builds the ledger key of a room blocker.
func BlockerKey(date time.Time, room string) string {
	return fmt.Sprintf("%s_%s_%s", FormatDateKey(date), room, BlockerDeskToken)
}
