package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/store"
)

// SettingsRepo manages the shared settings document: the team news
// banner, custom desk names and the company holiday registry.  Holidays
// are informational only and never block bookings.
type SettingsRepo struct {
	store *store.Store
	now   func() time.Time
}

// NewSettingsRepo returns a SettingsRepo bound to the given store.
func NewSettingsRepo(st *store.Store) *SettingsRepo {
	return &SettingsRepo{store: st, now: time.Now}
}

// SetNow overrides the repository clock.  Intended for tests.
func (r *SettingsRepo) SetNow(now func() time.Time) { r.now = now }

// Settings returns a copy of the current settings document.
func (r *SettingsRepo) Settings() (*model.Settings, error) {
	out := &model.Settings{
		DeskNames: map[string]string{},
		Holidays:  map[string]*model.Holiday{},
	}
	err := r.store.View(func(snap *store.Snapshot) error {
		out.TeamNews = snap.Settings.TeamNews
		out.Updated = snap.Settings.Updated
		for k, v := range snap.Settings.DeskNames {
			out.DeskNames[k] = v
		}
		for k, v := range snap.Settings.Holidays {
			copied := *v
			out.Holidays[k] = &copied
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetTeamNews replaces the team news banner.  Text longer than 200
// characters is rejected rather than truncated.
func (r *SettingsRepo) SetTeamNews(text string) error {
	if len([]rune(text)) > model.MaxTeamNewsLen {
		return fmt.Errorf("%w: team news exceeds %d characters", ErrValidation, model.MaxTeamNewsLen)
	}
	return r.store.Update(func(snap *store.Snapshot) error {
		snap.Settings.TeamNews = text
		return nil
	})
}

// DeskName returns the display label for a desk: the custom override when
// one is set, the default "Desk {n}" otherwise.
func (r *SettingsRepo) DeskName(room string, deskNum int) (string, error) {
	name := model.DefaultDeskName(deskNum)
	err := r.store.View(func(snap *store.Snapshot) error {
		if custom, ok := snap.Settings.DeskNames[model.DeskNameKey(room, deskNum)]; ok {
			name = custom
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// DeskNameIn is the snapshot-level desk name lookup, shared with handlers
// assembling a whole day overview in one read.
func DeskNameIn(snap *store.Snapshot, room string, deskNum int) string {
	if custom, ok := snap.Settings.DeskNames[model.DeskNameKey(room, deskNum)]; ok {
		return custom
	}
	return model.DefaultDeskName(deskNum)
}

// SetDeskName stores a custom label for a desk, truncated to 20 runes.
// A blank name removes the override, falling back to the default label.
func (r *SettingsRepo) SetDeskName(room string, deskNum int, name string) error {
	if !model.ValidRoom(room) {
		return fmt.Errorf("%w: unknown room %q", ErrValidation, room)
	}
	if !model.ValidDesk(room, deskNum) {
		return fmt.Errorf("%w: room %s has no desk %d", ErrValidation, room, deskNum)
	}
	if runes := []rune(name); len(runes) > model.MaxDeskNameLen {
		name = string(runes[:model.MaxDeskNameLen])
	}
	name = strings.TrimSpace(name)
	key := model.DeskNameKey(room, deskNum)
	return r.store.Update(func(snap *store.Snapshot) error {
		if name == "" {
			if _, ok := snap.Settings.DeskNames[key]; !ok {
				return store.ErrNoChange
			}
			delete(snap.Settings.DeskNames, key)
			return nil
		}
		snap.Settings.DeskNames[key] = name
		return nil
	})
}

// AddHoliday records a non-working date entered in DD.MM.YYYY form.  The
// record is stored under its ISO date key with the display form kept for
// presentation.  Re-adding an existing date overwrites it.
func (r *SettingsRepo) AddHoliday(displayDate string) (*model.Holiday, error) {
	date, err := time.Parse("02.01.2006", strings.TrimSpace(displayDate))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q, expected DD.MM.YYYY", ErrValidation, displayDate)
	}
	holiday := &model.Holiday{
		Date:        model.FormatDateKey(date),
		DisplayDate: date.Format("02.01.2006"),
		AddedAt:     r.now().Format(time.RFC3339),
	}
	err = r.store.Update(func(snap *store.Snapshot) error {
		snap.Settings.Holidays[holiday.Date] = holiday
		return nil
	})
	if err != nil {
		return nil, err
	}
	return holiday, nil
}

// RemoveHoliday clears a holiday by its ISO date key.  Idempotent.
func (r *SettingsRepo) RemoveHoliday(dateKey string) error {
	return r.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Settings.Holidays[dateKey]; !ok {
			return store.ErrNoChange
		}
		delete(snap.Settings.Holidays, dateKey)
		return nil
	})
}

// IsHoliday reports whether the given date is marked as a holiday.
func (r *SettingsRepo) IsHoliday(date time.Time) (bool, error) {
	holiday := false
	err := r.store.View(func(snap *store.Snapshot) error {
		_, holiday = snap.Settings.Holidays[model.FormatDateKey(date)]
		return nil
	})
	return holiday, err
}
