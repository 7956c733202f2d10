package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/store"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
}

// newTestRepos wires a store in a temp dir with one registered user and
// deterministic clocks and ids.
func newTestRepos(t *testing.T) (*store.Store, *UserRepo, *BookingRepo, string) {
	t.Helper()
	st := store.Open(t.TempDir())
	st.SetNow(fixedNow)

	users := NewUserRepo(st)
	users.SetNow(fixedNow)
	seq := 0
	users.SetIDGenerator(func() string {
		seq++
		return []string{"aaaa0001", "bbbb0002", "cccc0003"}[seq-1]
	})

	bookings := NewBookingRepo(st)
	bookings.SetNow(fixedNow)

	id, _, err := users.Create("alice", "", "", "")
	require.NoError(t, err)
	return st, users, bookings, id
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestBookFreeDesk(t *testing.T) {
	_, _, bookings, alice := newTestRepos(t)

	b, err := bookings.Book(day(20), model.RoomKlein, 1, alice, model.BookingFullDay, "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-20", b.Date)
	assert.Equal(t, model.EntryTypeBooking, b.EntryType)
	assert.Equal(t, model.CreatedViaManual, b.CreatedVia)

	got, err := bookings.Status(day(20), model.RoomKlein, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice, got.UserID)
}

func TestBookValidation(t *testing.T) {
	_, _, bookings, alice := newTestRepos(t)

	_, err := bookings.Book(day(20), "atrium", 1, alice, model.BookingFullDay, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = bookings.Book(day(20), model.RoomKlein, 3, alice, model.BookingFullDay, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = bookings.Book(day(20), model.RoomGross, 5, alice, "weekend", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = bookings.Book(day(20), model.RoomKlein, 1, "ghost000", model.BookingFullDay, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOverrideMatrix(t *testing.T) {
	cases := []struct {
		current model.BookingType
		next    model.BookingType
		allowed bool
	}{
		{model.BookingMaybe, model.BookingFullDay, true},
		{model.BookingMaybe, model.BookingHalfAM, true},
		{model.BookingMaybe, model.BookingMaybe, true},
		{model.BookingHalfAM, model.BookingHalfPM, true},
		{model.BookingHalfPM, model.BookingHalfAM, true},
		{model.BookingHalfAM, model.BookingHalfAM, false},
		{model.BookingHalfAM, model.BookingFullDay, false},
		{model.BookingHalfAM, model.BookingMaybe, false},
		{model.BookingFullDay, model.BookingFullDay, false},
		{model.BookingFullDay, model.BookingMaybe, false},
		{model.BookingFullDay, model.BookingHalfPM, false},
	}
	for _, tc := range cases {
		current := &model.Booking{BookingType: tc.current}
		assert.Equalf(t, tc.allowed, CanOverride(current, tc.next), "%s -> %s", tc.current, tc.next)
	}
	assert.True(t, CanOverride(nil, model.BookingMaybe), "a free desk accepts anything")
}

func TestBookOverridesMaybe(t *testing.T) {
	_, users, bookings, alice := newTestRepos(t)
	bob, _, err := users.Create("bob", "", "", "")
	require.NoError(t, err)

	_, err = bookings.Book(day(20), model.RoomGross, 3, alice, model.BookingMaybe, "")
	require.NoError(t, err)

	b, err := bookings.Book(day(20), model.RoomGross, 3, bob, model.BookingFullDay, "")
	require.NoError(t, err)
	assert.Equal(t, bob, b.UserID)

	got, err := bookings.Status(day(20), model.RoomGross, 3)
	require.NoError(t, err)
	assert.Equal(t, model.BookingFullDay, got.BookingType)
	assert.Equal(t, bob, got.UserID)
}

func TestBookConflictCarriesOccupant(t *testing.T) {
	_, users, bookings, alice := newTestRepos(t)
	bob, _, err := users.Create("bob", "", "", "")
	require.NoError(t, err)

	_, err = bookings.Book(day(20), model.RoomKlein, 2, alice, model.BookingFullDay, "")
	require.NoError(t, err)

	_, err = bookings.Book(day(20), model.RoomKlein, 2, bob, model.BookingHalfAM, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var conflict *BookingConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "2026-03-20_klein_2", conflict.Key)
	assert.Equal(t, alice, conflict.Current.UserID)
}

func TestHalfDayCompletionOverwrites(t *testing.T) {
	_, users, bookings, alice := newTestRepos(t)
	bob, _, err := users.Create("bob", "", "", "")
	require.NoError(t, err)

	_, err = bookings.Book(day(20), model.RoomKlein, 1, alice, model.BookingHalfAM, "")
	require.NoError(t, err)
	_, err = bookings.Book(day(20), model.RoomKlein, 1, bob, model.BookingHalfPM, "")
	require.NoError(t, err)

	// Only the latest half is stored; the completed desk is immutable.
	got, err := bookings.Status(day(20), model.RoomKlein, 1)
	require.NoError(t, err)
	assert.Equal(t, model.BookingHalfPM, got.BookingType)
	assert.Equal(t, bob, got.UserID)

	// A completed pair no longer accepts a full day.
	_, err = bookings.Book(day(20), model.RoomKlein, 1, alice, model.BookingFullDay, "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = bookings.Book(day(20), model.RoomKlein, 1, alice, model.BookingHalfAM, "")
	assert.NoError(t, err, "the opposite half remains a legal transition")
}

func TestCancelIsIdempotent(t *testing.T) {
	_, _, bookings, alice := newTestRepos(t)

	_, err := bookings.Book(day(20), model.RoomKlein, 1, alice, model.BookingFullDay, "")
	require.NoError(t, err)

	require.NoError(t, bookings.Cancel(day(20), model.RoomKlein, 1))
	got, err := bookings.Status(day(20), model.RoomKlein, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Cancelling a free desk is a no-op, not an error.
	require.NoError(t, bookings.Cancel(day(20), model.RoomKlein, 1))

	// After cancel the desk accepts a fresh full day.
	_, err = bookings.Book(day(20), model.RoomKlein, 1, alice, model.BookingFullDay, "")
	assert.NoError(t, err)
}

func TestBlockRoom(t *testing.T) {
	_, _, bookings, alice := newTestRepos(t)

	blk, err := bookings.Block(day(20), model.RoomGross, alice, model.BlockerMorning, "", "", "standup")
	require.NoError(t, err)
	assert.Equal(t, "09:00", blk.StartTime)
	assert.Equal(t, "12:00", blk.EndTime)
	assert.Equal(t, model.EntryTypeBlocker, blk.EntryType)

	msg, err := bookings.BlockMessage(day(20), model.RoomGross)
	require.NoError(t, err)
	assert.Equal(t, "This room is blocked from 09:00 to 12:00 by alice (standup)", msg)

	// One blocker per room and day.
	_, err = bookings.Block(day(20), model.RoomGross, alice, model.BlockerFullDay, "", "", "")
	require.Error(t, err)
	var conflict *BlockerConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, model.BlockerMorning, conflict.Current.BlockerType)
}

func TestBlockCustomTimeRange(t *testing.T) {
	_, _, bookings, alice := newTestRepos(t)

	_, err := bookings.Block(day(20), model.RoomKlein, alice, model.BlockerCustom, "", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = bookings.Block(day(20), model.RoomKlein, alice, model.BlockerCustom, "14:00", "13:00", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = bookings.Block(day(20), model.RoomKlein, alice, model.BlockerCustom, "25:00", "26:00", "")
	assert.ErrorIs(t, err, ErrValidation)

	blk, err := bookings.Block(day(20), model.RoomKlein, alice, model.BlockerCustom, "10:30", "11:45", "")
	require.NoError(t, err)
	assert.Equal(t, "10:30", blk.StartTime)
	assert.Equal(t, "11:45", blk.EndTime)
}

func TestBlockReasonTruncated(t *testing.T) {
	_, _, bookings, alice := newTestRepos(t)

	blk, err := bookings.Block(day(20), model.RoomKlein, alice, model.BlockerAfternoon, "", "", "a very long meeting about quarterly numbers")
	require.NoError(t, err)
	assert.Equal(t, "a very long meeting ", blk.Reason)
	assert.Len(t, []rune(blk.Reason), model.MaxBlockerReasonLen)
}

func TestUnblockIsIdempotent(t *testing.T) {
	_, _, bookings, alice := newTestRepos(t)

	_, err := bookings.Block(day(20), model.RoomKlein, alice, model.BlockerFullDay, "", "", "")
	require.NoError(t, err)

	require.NoError(t, bookings.Unblock(day(20), model.RoomKlein))
	blk, err := bookings.Blocker(day(20), model.RoomKlein)
	require.NoError(t, err)
	assert.Nil(t, blk)

	require.NoError(t, bookings.Unblock(day(20), model.RoomKlein))
}

func TestAvailableDesksIgnoreBlockers(t *testing.T) {
	_, _, bookings, alice := newTestRepos(t)

	_, err := bookings.Book(day(20), model.RoomGross, 2, alice, model.BookingFullDay, "")
	require.NoError(t, err)
	_, err = bookings.Block(day(20), model.RoomGross, alice, model.BlockerFullDay, "", "", "")
	require.NoError(t, err)

	free, err := bookings.AvailableDesks(day(20), model.RoomGross)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4, 5}, free, "the blocker is advisory and must not hide free desks")

	free, err = bookings.AvailableDesks(day(20), model.RoomKlein)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, free)
}

func TestOverviewResolvesNamesAndBlockers(t *testing.T) {
	st, users, bookings, alice := newTestRepos(t)
	settings := NewSettingsRepo(st)
	settings.SetNow(fixedNow)

	require.NoError(t, settings.SetDeskName(model.RoomKlein, 1, "Window"))
	_, err := settings.AddHoliday("20.03.2026")
	require.NoError(t, err)

	_, err = bookings.Book(day(20), model.RoomKlein, 1, alice, model.BookingHalfAM, "")
	require.NoError(t, err)
	_, err = bookings.Block(day(20), model.RoomGross, alice, model.BlockerMorning, "", "", "")
	require.NoError(t, err)

	overview, err := bookings.Overview(day(20))
	require.NoError(t, err)
	assert.True(t, overview.Holiday)
	require.Len(t, overview.Rooms, 2)

	klein := overview.Rooms[0]
	require.Equal(t, model.RoomKlein, klein.Room)
	require.Len(t, klein.Desks, 2)
	assert.Equal(t, "Window", klein.Desks[0].DeskName)
	require.NotNil(t, klein.Desks[0].Booking)
	assert.Equal(t, "alice", klein.Desks[0].Booking.Username)
	assert.Nil(t, klein.Desks[1].Booking)
	assert.Equal(t, "Desk 2", klein.Desks[1].DeskName)

	gross := overview.Rooms[1]
	require.Equal(t, model.RoomGross, gross.Room)
	require.Len(t, gross.Desks, 5)
	assert.Equal(t, "This room is blocked from 09:00 to 12:00 by alice", gross.BlockMessage)
	require.NotNil(t, gross.Blocker)
	assert.Equal(t, "alice", gross.Blocker.Username)

	// Deleting the user archives the past nothing here, but the overview
	// must still resolve the frozen name on archived entries.
	_, err = users.Delete(alice)
	require.NoError(t, err)
	overview, err = bookings.Overview(day(20))
	require.NoError(t, err)
	assert.Nil(t, overview.Rooms[0].Desks[0].Booking, "future booking is removed with its owner")
}
