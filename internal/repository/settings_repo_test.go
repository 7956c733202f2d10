package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/store"
)

func newSettingsRepo(t *testing.T) *SettingsRepo {
	t.Helper()
	st := store.Open(t.TempDir())
	st.SetNow(fixedNow)
	settings := NewSettingsRepo(st)
	settings.SetNow(fixedNow)
	return settings
}

func TestTeamNews(t *testing.T) {
	settings := newSettingsRepo(t)

	require.NoError(t, settings.SetTeamNews("pizza friday"))
	s, err := settings.Settings()
	require.NoError(t, err)
	assert.Equal(t, "pizza friday", s.TeamNews)

	// Exactly at the limit is fine, one over is rejected untruncated.
	require.NoError(t, settings.SetTeamNews(strings.Repeat("x", model.MaxTeamNewsLen)))
	err = settings.SetTeamNews(strings.Repeat("x", model.MaxTeamNewsLen+1))
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, settings.SetTeamNews(""))
	s, err = settings.Settings()
	require.NoError(t, err)
	assert.Equal(t, "", s.TeamNews)
}

func TestDeskNames(t *testing.T) {
	settings := newSettingsRepo(t)

	name, err := settings.DeskName(model.RoomKlein, 1)
	require.NoError(t, err)
	assert.Equal(t, "Desk 1", name)

	require.NoError(t, settings.SetDeskName(model.RoomKlein, 1, "Window seat"))
	name, err = settings.DeskName(model.RoomKlein, 1)
	require.NoError(t, err)
	assert.Equal(t, "Window seat", name)

	// Long names are truncated, not rejected.
	require.NoError(t, settings.SetDeskName(model.RoomGross, 5, strings.Repeat("n", 30)))
	name, err = settings.DeskName(model.RoomGross, 5)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("n", model.MaxDeskNameLen), name)

	// Blank restores the default label.
	require.NoError(t, settings.SetDeskName(model.RoomKlein, 1, "  "))
	name, err = settings.DeskName(model.RoomKlein, 1)
	require.NoError(t, err)
	assert.Equal(t, "Desk 1", name)

	err = settings.SetDeskName("atrium", 1, "x")
	assert.ErrorIs(t, err, ErrValidation)
	err = settings.SetDeskName(model.RoomKlein, 3, "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHolidays(t *testing.T) {
	settings := newSettingsRepo(t)

	holiday, err := settings.AddHoliday("24.12.2026")
	require.NoError(t, err)
	assert.Equal(t, "2026-12-24", holiday.Date)
	assert.Equal(t, "24.12.2026", holiday.DisplayDate)
	assert.Equal(t, fixedNow().Format(time.RFC3339), holiday.AddedAt)

	is, err := settings.IsHoliday(time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, is)

	_, err = settings.AddHoliday("2026-12-24")
	assert.ErrorIs(t, err, ErrValidation, "only the DD.MM.YYYY input form is accepted")
	_, err = settings.AddHoliday("32.01.2026")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, settings.RemoveHoliday("2026-12-24"))
	is, err = settings.IsHoliday(time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, is)

	// Removing twice is a no-op.
	require.NoError(t, settings.RemoveHoliday("2026-12-24"))
}
