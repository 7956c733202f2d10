package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st := Open(dir)
	st.SetNow(fixedNow)

	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	err := st.Update(func(snap *Snapshot) error {
		snap.Users["abc12345"] = &model.User{Username: "alice", FullName: "Alice", Color: "#FF6B6B"}
		snap.Bookings[model.BookingKey(date, model.RoomKlein, 1)] = &model.Booking{
			UserID:      "abc12345",
			BookingType: model.BookingFullDay,
			Date:        "2026-03-20",
			Room:        model.RoomKlein,
			DeskNum:     1,
			EntryType:   model.EntryTypeBooking,
		}
		snap.Blockers[model.BlockerKey(date, model.RoomGross)] = &model.RoomBlocker{
			UserID:      "abc12345",
			BlockerType: model.BlockerMorning,
			StartTime:   "09:00",
			EndTime:     "12:00",
			Date:        "2026-03-20",
			Room:        model.RoomGross,
			EntryType:   model.EntryTypeBlocker,
		}
		snap.Settings.TeamNews = "pizza friday"
		return nil
	})
	require.NoError(t, err)

	// Force the next read to hit the files instead of the cache.
	st.Invalidate()

	err = st.View(func(snap *Snapshot) error {
		require.Len(t, snap.Users, 1)
		assert.Equal(t, "alice", snap.Users["abc12345"].Username)

		require.Len(t, snap.Bookings, 1)
		b := snap.Bookings["2026-03-20_klein_1"]
		require.NotNil(t, b)
		assert.Equal(t, model.BookingFullDay, b.BookingType)

		require.Len(t, snap.Blockers, 1)
		blk := snap.Blockers["2026-03-20_gross_ROOM_BLOCKER"]
		require.NotNil(t, blk)
		assert.Equal(t, model.BlockerMorning, blk.BlockerType)

		assert.Equal(t, "pizza friday", snap.Settings.TeamNews)
		assert.Equal(t, fixedNow().Format(time.RFC3339), snap.Settings.Updated)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreMergesLedgerOnDisk(t *testing.T) {
	dir := t.TempDir()
	st := Open(dir)
	st.SetNow(fixedNow)

	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	err := st.Update(func(snap *Snapshot) error {
		snap.Bookings[model.BookingKey(date, model.RoomKlein, 2)] = &model.Booking{
			UserID: "u1", BookingType: model.BookingMaybe,
			Date: "2026-03-20", Room: model.RoomKlein, DeskNum: 2,
			EntryType: model.EntryTypeBooking,
		}
		snap.Blockers[model.BlockerKey(date, model.RoomKlein)] = &model.RoomBlocker{
			UserID: "u1", BlockerType: model.BlockerFullDay,
			StartTime: "08:00", EndTime: "18:00",
			Date: "2026-03-20", Room: model.RoomKlein,
			EntryType: model.EntryTypeBlocker,
		}
		return nil
	})
	require.NoError(t, err)

	// Both entry kinds share one document on disk.
	raw, err := os.ReadFile(filepath.Join(dir, "bookings.json"))
	require.NoError(t, err)
	var ledger map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &ledger))
	require.Len(t, ledger, 2)
	assert.Equal(t, "desk_booking", ledger["2026-03-20_klein_2"]["entry_type"])
	assert.Equal(t, "room_blocker", ledger["2026-03-20_klein_ROOM_BLOCKER"]["entry_type"])
}

func TestStoreNoChangeSkipsSave(t *testing.T) {
	dir := t.TempDir()
	st := Open(dir)

	err := st.Update(func(snap *Snapshot) error {
		return ErrNoChange
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "users.json"))
	assert.True(t, os.IsNotExist(err), "no document should be written for a no-op update")
}

func TestStoreMissingFilesYieldDefaults(t *testing.T) {
	st := Open(t.TempDir())
	err := st.View(func(snap *Snapshot) error {
		assert.Empty(t, snap.Users)
		assert.Empty(t, snap.Bookings)
		assert.Empty(t, snap.Blockers)
		assert.Equal(t, "", snap.Settings.TeamNews)
		assert.NotNil(t, snap.Settings.DeskNames)
		assert.NotNil(t, snap.Settings.Holidays)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreLegacyTeamNewsFallback(t *testing.T) {
	dir := t.TempDir()
	legacy := []byte(`{"news": "welcome aboard"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "team_news.json"), legacy, 0o644))

	st := Open(dir)
	err := st.View(func(snap *Snapshot) error {
		assert.Equal(t, "welcome aboard", snap.Settings.TeamNews)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreUntaggedLedgerEntriesAreBookings(t *testing.T) {
	dir := t.TempDir()
	// Documents written before the entry_type tag existed.
	old := []byte(`{"2026-03-20_klein_1": {"user_id": "u1", "booking_type": "full_day", "date": "2026-03-20", "room": "klein", "desk_num": 1}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bookings.json"), old, 0o644))

	st := Open(dir)
	err := st.View(func(snap *Snapshot) error {
		require.Len(t, snap.Bookings, 1)
		assert.Empty(t, snap.Blockers)
		assert.Equal(t, model.EntryTypeBooking, snap.Bookings["2026-03-20_klein_1"].EntryType)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreCorruptDocumentFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644))

	st := Open(dir)
	err := st.View(func(snap *Snapshot) error {
		assert.Empty(t, snap.Users)
		return nil
	})
	require.NoError(t, err)
}
