package repository

import (
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/store"
)

// DayOverview aggregates everything the UI layer needs to render one day:
// every desk of both rooms with its display name and occupant, the
// advisory blocker message per room, and the holiday flag.
type DayOverview struct {
	Date    string         `json:"date"`
	Holiday bool           `json:"holiday"`
	Rooms   []RoomOverview `json:"rooms"`
}

// RoomOverview is the per-room slice of a day overview.
type RoomOverview struct {
	Room         string         `json:"room"`
	BlockMessage string         `json:"block_message,omitempty"`
	Blocker      *BlockerView   `json:"blocker,omitempty"`
	Desks        []DeskOverview `json:"desks"`
}

// BlockerView is the presentation form of a room blocker with the
// blocking user's display name resolved.
type BlockerView struct {
	Username    string            `json:"username"`
	BlockerType model.BlockerType `json:"blocker_type"`
	StartTime   string            `json:"start_time"`
	EndTime     string            `json:"end_time"`
	Reason      string            `json:"reason,omitempty"`
}

// DeskOverview is the status of one desk on the overview day.
type DeskOverview struct {
	DeskNum  int          `json:"desk_num"`
	DeskName string       `json:"desk_name"`
	Booking  *BookingView `json:"booking,omitempty"`
}

// BookingView is the presentation form of a booking with the owning
// user's display name and color resolved from the registry.  For
// archived bookings the frozen name is used and the color is empty.
type BookingView struct {
	UserID      string            `json:"user_id"`
	Username    string            `json:"username"`
	Color       string            `json:"color,omitempty"`
	BookingType model.BookingType `json:"booking_type"`
	CreatedVia  string            `json:"created_via,omitempty"`
}

// Overview assembles the full status of one day in a single snapshot
// read.  Blockers are reported but never reduce the per-desk statuses.
func (r *BookingRepo) Overview(date time.Time) (*DayOverview, error) {
	overview := &DayOverview{Date: model.FormatDateKey(date)}
	err := r.store.View(func(snap *store.Snapshot) error {
		_, overview.Holiday = snap.Settings.Holidays[overview.Date]
		for _, room := range model.Rooms() {
			ro := RoomOverview{Room: room}
			if blocker, ok := snap.Blockers[model.BlockerKey(date, room)]; ok {
				ro.BlockMessage = formatBlockMessage(snap, blocker)
				ro.Blocker = &BlockerView{
					Username:    resolveUsername(snap, blocker.UserID, blocker.ArchivedUsername),
					BlockerType: blocker.BlockerType,
					StartTime:   blocker.StartTime,
					EndTime:     blocker.EndTime,
					Reason:      blocker.Reason,
				}
			}
			for desk := 1; desk <= model.DeskCount(room); desk++ {
				do := DeskOverview{DeskNum: desk, DeskName: DeskNameIn(snap, room, desk)}
				if b, ok := snap.Bookings[model.BookingKey(date, room, desk)]; ok {
					view := &BookingView{
						UserID:      b.UserID,
						Username:    resolveUsername(snap, b.UserID, b.ArchivedUsername),
						BookingType: b.BookingType,
						CreatedVia:  b.CreatedVia,
					}
					if u, ok := snap.Users[b.UserID]; ok {
						view.Color = u.Color
					}
					do.Booking = view
				}
				ro.Desks = append(ro.Desks, do)
			}
			overview.Rooms = append(overview.Rooms, ro)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return overview, nil
}

// resolveUsername maps a ledger user reference to a display name: live
// users resolve through the registry, archived entries use the frozen
// name, anything else degrades to a placeholder.
func resolveUsername(snap *store.Snapshot, userID, archived string) string {
	if userID == model.DeletedUserID {
		if archived != "" {
			return archived
		}
		return "Deleted User"
	}
	if u, ok := snap.Users[userID]; ok {
		return u.Username
	}
	return "Unknown User"
}
