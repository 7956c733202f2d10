package model

import "fmt"

// MaxTeamNewsLen caps the team news text stored in settings.json.
const MaxTeamNewsLen = 200

// MaxDeskNameLen caps a custom desk display name.
const MaxDeskNameLen = 20

// MaxBlockerReasonLen caps the free-text reason on a room blocker.
const MaxBlockerReasonLen = 20

// Settings is the third persisted document (settings.json).  It bundles
// the small pieces of shared state that are neither users nor ledger
// entries: the team news banner, custom desk names and company holidays.
//
// Fields:
//  TeamNews  – free text shown to the whole team, at most 200 characters.
//  DeskNames – "{room}_{desk}" → custom label; absence means "Desk {n}".
//  Holidays  – ISO date → holiday record; informational only.
//  Updated   – timestamp of the last save (RFC 3339).
type Settings struct {
	TeamNews  string              `json:"team_news"`
	DeskNames map[string]string   `json:"desk_names"`
	Holidays  map[string]*Holiday `json:"holidays"`
	Updated   string              `json:"updated,omitempty"`
}

// Holiday marks a single non-working date.  Holidays never block bookings;
// the day overview merely flags them.
//
// Fields:
//  Date        – ISO date, identical to the map key.
//  DisplayDate – the DD.MM.YYYY form the date was entered in.
//  AddedAt     – when the holiday was recorded (RFC 3339).
type Holiday struct {
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
	AddedAt     string `json:"added_at"`
}

// DeskNameKey builds the desk_names map key for a desk.
func DeskNameKey(room string, deskNum int) string {
	return fmt.Sprintf("%s_%d", room, deskNum)
}

// DefaultDeskName returns the fallback label used when no custom name is
// set for a desk.
func DefaultDeskName(deskNum int) string { return fmt.Sprintf("Desk %d", deskNum) }
