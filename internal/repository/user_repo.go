package repository

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/store"
)

// UserRepo provides CRUD operations over user records and owns the
// deletion/archival policy.  Users are always addressed by their opaque
// id; display names are presentation data and are never used as lookup
// keys, so duplicate usernames cannot make an operation ambiguous.
type UserRepo struct {
	store *store.Store
	now   func() time.Time
	newID func() string
}

// NewUserRepo returns a UserRepo bound to the given store.
func NewUserRepo(st *store.Store) *UserRepo {
	return &UserRepo{
		store: st,
		now:   time.Now,
		newID: func() string { return uuid.NewString()[:8] },
	}
}

// SetNow overrides the repository clock.  Intended for tests.
func (r *UserRepo) SetNow(now func() time.Time) { r.now = now }

// SetIDGenerator overrides id generation.  Intended for tests.
func (r *UserRepo) SetIDGenerator(gen func() string) { r.newID = gen }

// Create registers a new user and returns its fresh id.  The username is
// required; the full name falls back to the username; an empty color is
// auto-assigned from the palette, biased towards colors no other user
// holds yet.  Username uniqueness is deliberately not enforced.
func (r *UserRepo) Create(username, fullName, color, avatarPath string) (string, *model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = username
	}
	if color != "" && !model.ValidColor(color) {
		return "", nil, fmt.Errorf("%w: unknown color %q", ErrValidation, color)
	}

	id := r.newID()
	user := &model.User{
		Username:   username,
		FullName:   fullName,
		Color:      color,
		AvatarPath: avatarPath,
		CreatedAt:  r.now().Format(time.RFC3339),
	}
	err := r.store.Update(func(snap *store.Snapshot) error {
		if user.Color == "" {
			free := freeColorsIn(snap)
			user.Color = free[0]
		}
		snap.Users[id] = user
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return id, user, nil
}

// Get returns the user record for id, or ErrNotFound.
func (r *UserRepo) Get(id string) (*model.User, error) {
	var user *model.User
	err := r.store.View(func(snap *store.Snapshot) error {
		u, ok := snap.Users[id]
		if !ok {
			return fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		copied := *u
		user = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns all users keyed by id.
func (r *UserRepo) List() (map[string]*model.User, error) {
	out := map[string]*model.User{}
	err := r.store.View(func(snap *store.Snapshot) error {
		for id, u := range snap.Users {
			copied := *u
			out[id] = &copied
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUserParams carries the optional fields of an update; nil pointers
// leave the stored value untouched.
type UpdateUserParams struct {
	Username *string
	FullName *string
	Color    *string
	Avatar   *string
}

// Update edits a user record in place.  An empty username or a color
// outside the palette is rejected with ErrValidation; an unknown id with
// ErrNotFound.
func (r *UserRepo) Update(id string, params UpdateUserParams) (*model.User, error) {
	if params.Username != nil && strings.TrimSpace(*params.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if params.Color != nil && !model.ValidColor(*params.Color) {
		return nil, fmt.Errorf("%w: unknown color %q", ErrValidation, *params.Color)
	}
	var updated *model.User
	err := r.store.Update(func(snap *store.Snapshot) error {
		u, ok := snap.Users[id]
		if !ok {
			return fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		if params.Username != nil {
			u.Username = strings.TrimSpace(*params.Username)
		}
		if params.FullName != nil {
			u.FullName = strings.TrimSpace(*params.FullName)
			if u.FullName == "" {
				u.FullName = u.Username
			}
		}
		if params.Color != nil {
			u.Color = *params.Color
		}
		if params.Avatar != nil {
			u.AvatarPath = *params.Avatar
		}
		copied := *u
		updated = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteResult reports what happened to the ledger entries of a deleted
// user, for caller reporting.
type DeleteResult struct {
	FutureRemoved int    `json:"future_removed"` // today-or-future entries removed outright
	PastArchived  int    `json:"past_archived"`  // past entries archived in place
	AvatarPath    string `json:"-"`              // blob to release, empty when none
}

// Delete removes a user record and migrates every ledger entry that
// references it: entries dated today or later are removed outright, past
// entries are rewritten in place to the DELETED_USER sentinel with the
// display name frozen inline.  The whole migration happens under one
// store update, so no entry is ever left half-migrated.  The caller is
// responsible for releasing the returned avatar blob (best effort).
func (r *UserRepo) Delete(id string) (DeleteResult, error) {
	var result DeleteResult
	err := r.store.Update(func(snap *store.Snapshot) error {
		user, ok := snap.Users[id]
		if !ok {
			return fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		// Entries are partitioned by comparing YYYY-MM-DD keys, which
		// avoids location mismatches between stored dates and the clock.
		todayKey := model.FormatDateKey(r.now())
		archivedAt := r.now().Format(time.RFC3339)

		for key, b := range snap.Bookings {
			if b.UserID != id {
				continue
			}
			if _, err := model.ParseDateKey(b.Date); err != nil {
				log.Printf("user delete: skipping booking %s with invalid date %q", key, b.Date)
				continue
			}
			if b.Date >= todayKey {
				delete(snap.Bookings, key)
				result.FutureRemoved++
				continue
			}
			b.UserID = model.DeletedUserID
			b.ArchivedUsername = user.Username
			b.ArchivedAt = archivedAt
			b.OriginalUserID = id
			result.PastArchived++
		}
		for key, b := range snap.Blockers {
			if b.UserID != id {
				continue
			}
			if _, err := model.ParseDateKey(b.Date); err != nil {
				log.Printf("user delete: skipping blocker %s with invalid date %q", key, b.Date)
				continue
			}
			if b.Date >= todayKey {
				delete(snap.Blockers, key)
				result.FutureRemoved++
				continue
			}
			b.UserID = model.DeletedUserID
			b.ArchivedUsername = user.Username
			b.ArchivedAt = archivedAt
			b.OriginalUserID = id
			result.PastArchived++
		}

		result.AvatarPath = user.AvatarPath
		delete(snap.Users, id)
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}

// FreeColors returns the palette colors no current user holds.  When the
// palette is exhausted the full palette is returned so creation can fall
// back to reuse.
func (r *UserRepo) FreeColors() ([]string, error) {
	var free []string
	err := r.store.View(func(snap *store.Snapshot) error {
		free = freeColorsIn(snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return free, nil
}

// freeColorsIn computes the unused palette subset for a snapshot,
// preserving palette order.  Never returns an empty slice.
func freeColorsIn(snap *store.Snapshot) []string {
	used := map[string]bool{}
	for _, u := range snap.Users {
		used[u.Color] = true
	}
	free := []string{}
	for _, c := range model.UserColors() {
		if !used[c] {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return model.UserColors()
	}
	return free
}

// SortedUserIDs returns the ids of a user map in stable order.  Shared by
// handlers that need deterministic listings.
func SortedUserIDs(users map[string]*model.User) []string {
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
