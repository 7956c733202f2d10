// Package store implements the persistence gateway for the desk booking
// service.  All shared state lives in three JSON documents (users.json,
// bookings.json, settings.json) that are rewritten whole on every save.
// A read-through cache avoids redundant file reads between writes, and a
// single mutex serialises every read-check-write sequence so that two
// near-simultaneous bookings cannot both observe a free desk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
)

// ErrPersistence wraps every file I/O failure surfaced by the store.
// Callers should treat it as "retry or warn the user data may be lost",
// never as fatal: the in-memory snapshot is kept even when a save fails.
var ErrPersistence = errors.New("persistence failure")

// ErrNoChange may be returned by an Update callback to report that the
// snapshot was left untouched.  Update treats it as success and skips the
// file rewrite.  Idempotent removals use it to avoid redundant writes.
var ErrNoChange = errors.New("no change")

// Snapshot holds the full in-memory state of the three documents.  Desk
// bookings and room blockers share the bookings.json keyspace on disk but
// are kept in two explicit maps here, split by their entry_type tag, so
// consumers never have to parse keys to tell the entity kinds apart.
type Snapshot struct {
	Users    map[string]*model.User
	Bookings map[string]*model.Booking
	Blockers map[string]*model.RoomBlocker
	Settings *model.Settings
}

// NewSnapshot returns an empty snapshot with all collections allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:    map[string]*model.User{},
		Bookings: map[string]*model.Booking{},
		Blockers: map[string]*model.RoomBlocker{},
		Settings: &model.Settings{
			DeskNames: map[string]string{},
			Holidays:  map[string]*model.Holiday{},
		},
	}
}

// Store is the single writer over the three JSON documents.  Every
// repository operation goes through View or Update; direct field mutation
// from outside this package is not part of the API.
type Store struct {
	mu      sync.Mutex
	dataDir string
	cache   *Snapshot // read-through cache; nil means the next read hits disk
	now     func() time.Time
}

// Open returns a store rooted at dataDir.  The directory is created on
// the first save; opening never touches the disk.
func Open(dataDir string) *Store {
	return &Store{dataDir: dataDir, now: time.Now}
}

// SetNow overrides the store's clock.  Intended for tests.
func (s *Store) SetNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// View runs fn with the current snapshot under the store lock.  The
// callback must not mutate the snapshot; nothing is written back.
func (s *Store) View(fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.snapshot())
}

// Update runs fn with the current snapshot under the store lock and, when
// fn succeeds, rewrites all three documents.  On save failure the mutated
// snapshot stays cached (the in-memory state is deliberately not rolled
// back) and the error is surfaced once, wrapped in ErrPersistence.  On a
// successful save the cache is invalidated so the next read observes the
// files as written.
func (s *Store) Update(fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(snap); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	if err := s.save(snap); err != nil {
		s.cache = snap
		return err
	}
	s.cache = nil
	return nil
}

// snapshot returns the cached snapshot, loading from disk when the cache
// is invalid.  Load failures are reported and replaced by empty defaults;
// loading never fails hard.
func (s *Store) snapshot() *Snapshot {
	if s.cache == nil {
		s.cache = s.load()
	}
	return s.cache
}

// Invalidate drops the cached snapshot so the next read hits the files.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
}

// ledgerPeek is used to inspect the entry_type tag of a raw ledger record
// before deciding which concrete type to decode it into.
type ledgerPeek struct {
	EntryType string `json:"entry_type"`
}

// load reads the three documents, substituting empty defaults for any
// missing or unreadable file.  When settings.json is absent, the legacy
// team_news.json document seeds the news text if it exists.
func (s *Store) load() *Snapshot {
	snap := NewSnapshot()

	if raw, ok := s.readFile("users.json"); ok {
		if err := json.Unmarshal(raw, &snap.Users); err != nil {
			log.Printf("store: decode users.json: %v; starting with no users", err)
			snap.Users = map[string]*model.User{}
		}
	}

	if raw, ok := s.readFile("bookings.json"); ok {
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			log.Printf("store: decode bookings.json: %v; starting with an empty ledger", err)
		} else {
			for key, rawEntry := range entries {
				var peek ledgerPeek
				if err := json.Unmarshal(rawEntry, &peek); err != nil {
					log.Printf("store: skipping unreadable ledger entry %s: %v", key, err)
					continue
				}
				switch peek.EntryType {
				case model.EntryTypeBlocker:
					var b model.RoomBlocker
					if err := json.Unmarshal(rawEntry, &b); err != nil {
						log.Printf("store: skipping invalid blocker %s: %v", key, err)
						continue
					}
					snap.Blockers[key] = &b
				default:
					// Older documents predate the entry_type tag; anything
					// that is not a blocker is treated as a desk booking.
					var b model.Booking
					if err := json.Unmarshal(rawEntry, &b); err != nil {
						log.Printf("store: skipping invalid booking %s: %v", key, err)
						continue
					}
					if b.EntryType == "" {
						b.EntryType = model.EntryTypeBooking
					}
					snap.Bookings[key] = &b
				}
			}
		}
	}

	if raw, ok := s.readFile("settings.json"); ok {
		if err := json.Unmarshal(raw, snap.Settings); err != nil {
			log.Printf("store: decode settings.json: %v; starting with default settings", err)
		}
	} else if raw, ok := s.readFile("team_news.json"); ok {
		// Legacy layout: the news text lived in its own document.
		var legacy struct {
			News string `json:"news"`
		}
		if err := json.Unmarshal(raw, &legacy); err == nil {
			snap.Settings.TeamNews = legacy.News
		}
	}
	if snap.Settings.DeskNames == nil {
		snap.Settings.DeskNames = map[string]string{}
	}
	if snap.Settings.Holidays == nil {
		snap.Settings.Holidays = map[string]*model.Holiday{}
	}
	return snap
}

// readFile returns the contents of a document, or ok=false when the file
// does not exist or cannot be read.  Read errors other than absence are
// reported but still treated as a missing file.
func (s *Store) readFile(name string) ([]byte, bool) {
	raw, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("store: read %s: %v; using defaults", name, err)
		}
		return nil, false
	}
	return raw, true
}

// save rewrites all three documents.  Bookings and blockers are merged
// back into the single bookings.json keyspace.  The first failure aborts
// the whole operation without retry; a crash between files can leave the
// documents mutually inconsistent, which is an accepted limitation of the
// flat-file design.
func (s *Store) save(snap *Snapshot) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %v", ErrPersistence, err)
	}

	ledger := make(map[string]any, len(snap.Bookings)+len(snap.Blockers))
	for key, b := range snap.Bookings {
		ledger[key] = b
	}
	for key, b := range snap.Blockers {
		ledger[key] = b
	}

	snap.Settings.Updated = s.now().Format(time.RFC3339)

	documents := []struct {
		name string
		data any
	}{
		{"users.json", snap.Users},
		{"bookings.json", ledger},
		{"settings.json", snap.Settings},
	}
	for _, doc := range documents {
		raw, err := json.MarshalIndent(doc.data, "", "  ")
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", ErrPersistence, doc.name, err)
		}
		if err := os.WriteFile(filepath.Join(s.dataDir, doc.name), raw, 0o644); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrPersistence, doc.name, err)
		}
	}
	return nil
}
