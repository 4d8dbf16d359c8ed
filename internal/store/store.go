// Package store implements the single shared document store that every
// operation in the system runs against.
//
// The whole database is one JSON document on disk. Every mutating operation
// follows the same discipline: take the write lock, apply a pure transform to
// a deep copy of the in-memory snapshot, persist the copy in full (write to a
// temporary file, fsync, atomically rename into place), and only then swap
// the in-memory snapshot. Readers take the read lock and see either the state
// before a mutation or the state after it — never a partially applied one.
//
// That single RWMutex over load+mutate+persist is the serialization primitive
// the rest of the codebase depends on for correctness: cross-record updates
// (both halves of a friendship edge, both halves of a pending request) happen
// inside one Update call and are therefore atomic with respect to every other
// operation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fahim/linkup/internal/apperror"
	"github.com/fahim/linkup/internal/model"
)

// Snapshot is the entire database value at one instant: the five top-level
// collections, and nothing else. Maps are keyed by user ID except Threads,
// which is keyed by the canonical thread key (see model.ThreadKey).
type Snapshot struct {
	Users    map[string]model.User           `json:"users"`
	Posts    []model.Post                    `json:"posts"`
	Friends  map[string]model.FriendshipEdge `json:"friends"`
	Requests map[string]model.RequestRecord  `json:"requests"`
	Threads  map[string][]model.Message      `json:"threads"`
}

// emptySnapshot returns a snapshot with all collections initialized.
// Collections are never nil after load, so callers can index without checks.
func emptySnapshot() *Snapshot {
	return &Snapshot{
		Users:    make(map[string]model.User),
		Posts:    []model.Post{},
		Friends:  make(map[string]model.FriendshipEdge),
		Requests: make(map[string]model.RequestRecord),
		Threads:  make(map[string][]model.Message),
	}
}

// Edge returns the friendship edge for userID. The map zero value is the
// lazily materialized empty record: a user with no edge behaves as if their
// friend set is empty until first write. Writers assign the modified record
// back into the map.
func (s *Snapshot) Edge(userID string) model.FriendshipEdge {
	return s.Friends[userID]
}

// Record returns the request record for userID, empty if never touched.
func (s *Snapshot) Record(userID string) model.RequestRecord {
	return s.Requests[userID]
}

// Store owns the document at path and serializes all access to it.
type Store struct {
	path   string
	logger *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// Open reads the document at path and returns a ready Store.
//
// A missing file is first run: the store starts with empty collections and
// the file appears on the first mutation. A malformed document is treated the
// same way, logged at Warn. Any other read failure is surfaced as
// ErrUnavailable.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperror.Unavailable(fmt.Errorf("creating data directory: %w", err))
		}
	}

	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	s.snap = snap

	logger.Info("store opened",
		slog.String("path", path),
		slog.Int("users", len(snap.Users)),
		slog.Int("posts", len(snap.Posts)),
		slog.Int("threads", len(snap.Threads)),
	)
	return s, nil
}

func (s *Store) load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, apperror.Unavailable(fmt.Errorf("reading %s: %w", s.path, err))
	}

	snap := emptySnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		// Malformed document: start from empty collections. The broken file
		// stays on disk until the first successful persist replaces it.
		s.logger.Warn("store document malformed, starting empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return emptySnapshot(), nil
	}

	// Unmarshal leaves absent collections nil; normalize so callers never
	// have to nil-check.
	if snap.Users == nil {
		snap.Users = make(map[string]model.User)
	}
	if snap.Posts == nil {
		snap.Posts = []model.Post{}
	}
	if snap.Friends == nil {
		snap.Friends = make(map[string]model.FriendshipEdge)
	}
	if snap.Requests == nil {
		snap.Requests = make(map[string]model.RequestRecord)
	}
	if snap.Threads == nil {
		snap.Threads = make(map[string][]model.Message)
	}
	return snap, nil
}

// View runs fn against the current snapshot under the read lock.
//
// fn must treat the snapshot as read-only: it is the live in-memory value,
// shared with every other concurrent reader. Mutations belong in Update.
func (s *Store) View(fn func(*Snapshot) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.snap)
}

// Update runs fn against a deep copy of the snapshot under the write lock,
// then persists the result before making it visible.
//
// If fn returns an error, nothing is persisted and the in-memory state is
// untouched — the error propagates to the caller as-is. If persistence
// fails, the in-memory state is likewise untouched and the caller gets
// ErrUnavailable; there is no background retry and no write queue.
func (s *Store) Update(fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.snap = next
	return nil
}

// persist rewrites the whole document: marshal, write to a temporary file in
// the same directory, fsync, rename over the target. A crash mid-write can
// leave a stray temporary file but never a truncated document visible to a
// subsequent load.
func (s *Store) persist(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return apperror.Unavailable(fmt.Errorf("encoding snapshot: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return apperror.Unavailable(fmt.Errorf("creating temp file: %w", err))
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return apperror.Unavailable(fmt.Errorf("writing snapshot: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return apperror.Unavailable(fmt.Errorf("syncing snapshot: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperror.Unavailable(fmt.Errorf("closing temp file: %w", err))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperror.Unavailable(fmt.Errorf("replacing %s: %w", s.path, err))
	}
	return nil
}

// clone deep-copies the snapshot so an aborted Update can never leak partial
// mutations into the shared state.
func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		Users:    make(map[string]model.User, len(s.Users)),
		Posts:    make([]model.Post, len(s.Posts)),
		Friends:  make(map[string]model.FriendshipEdge, len(s.Friends)),
		Requests: make(map[string]model.RequestRecord, len(s.Requests)),
		Threads:  make(map[string][]model.Message, len(s.Threads)),
	}
	for id, u := range s.Users {
		next.Users[id] = u
	}
	for i, p := range s.Posts {
		p.Likes = append([]string(nil), p.Likes...)
		p.Comments = append([]model.Comment(nil), p.Comments...)
		next.Posts[i] = p
	}
	for id, e := range s.Friends {
		e.Friends = append([]string(nil), e.Friends...)
		next.Friends[id] = e
	}
	for id, r := range s.Requests {
		r.Sent = append([]string(nil), r.Sent...)
		r.Received = append([]string(nil), r.Received...)
		next.Requests[id] = r
	}
	for key, msgs := range s.Threads {
		next.Threads[key] = append([]model.Message(nil), msgs...)
	}
	return next
}
