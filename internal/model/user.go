package model

// User represents an application user record as stored in users.json.
// Users own their weekly booking templates, which are nested under the
// record rather than stored in a separate document.
//
// Fields:
//  Username   – display name shown on booked desks.  Uniqueness is not
//               enforced; all lookups are keyed by the map key (user id).
//  FullName   – optional long name; defaults to Username when blank.
//  Color      – hex color from the fixed palette, used to tint bookings.
//  AvatarPath – path to the stored avatar image, empty when none exists.
//  CreatedAt  – creation timestamp (RFC 3339).
//  Templates  – named weekly schedules, at most MaxTemplatesPerUser.
type User struct {
	Username   string               `json:"username"`
	FullName   string               `json:"full_name"`
	Color      string               `json:"color"`
	AvatarPath string               `json:"avatar_path,omitempty"`
	CreatedAt  string               `json:"created_at"`
	Templates  map[string]*Template `json:"templates,omitempty"`
}

// Template is a named weekly pattern of desired booking types.  The
// schedule maps lowercase weekday names (monday..friday) to one of the
// three concrete booking types; maybe is never allowed in a template.
//
// Fields:
//  Name      – identity key, at most 30 characters.  Saving under an
//              existing name overwrites the template in place.
//  Schedule  – weekday → booking type, must be non-empty.
//  CreatedAt – creation timestamp (RFC 3339).
//  UpdatedAt – last overwrite timestamp (RFC 3339).
//  Version   – starts at 1 and is bumped on every overwrite.
type Template struct {
	Name      string                 `json:"name"`
	Schedule  map[string]BookingType `json:"schedule"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
	Version   int                    `json:"version"`
}

// MaxTemplatesPerUser caps how many named templates one user may keep.
const MaxTemplatesPerUser = 5

// MaxTemplateNameLen caps the length of a template name.
const MaxTemplateNameLen = 30

// Weekdays lists the bookable weekdays in calendar order.  Index i is the
// offset in days from a Monday week start.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// ValidWeekday reports whether day names one of the five bookable weekdays.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// WeekdayOffset returns the day offset of the given weekday from the
// Monday week start, or -1 for an unknown weekday.
func WeekdayOffset(day string) int {
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

// UserColors returns the fixed palette of colors available for user
// identification.  New users are biased towards colors nobody uses yet,
// but the palette may legally be exhausted and reused.
func UserColors() []string {
	return []string{
		"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
		"#FECA57", "#FF9FF3", "#54A0FF", "#5F27CD",
		"#00D2D3", "#FF9F43", "#C44569", "#F8B500",
	}
}

// ValidColor reports whether color is part of the palette.
func ValidColor(color string) bool {
	for _, c := range UserColors() {
		if c == color {
			return true
		}
	}
	return false
}
