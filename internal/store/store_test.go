package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahim/linkup/internal/apperror"
	"github.com/fahim/linkup/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linkup.json")
	s, err := Open(path, testLogger())
	require.NoError(t, err)
	return s, path
}

func TestOpenFirstRun(t *testing.T) {
	s, path := newTestStore(t)

	// No file yet — first mutation creates it.
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	err = s.View(func(snap *Snapshot) error {
		assert.NotNil(t, snap.Users)
		assert.NotNil(t, snap.Posts)
		assert.NotNil(t, snap.Friends)
		assert.NotNil(t, snap.Requests)
		assert.NotNil(t, snap.Threads)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	s, path := newTestStore(t)

	err := s.Update(func(snap *Snapshot) error {
		snap.Users["u1"] = model.User{ID: "u1", Username: "alice", Glyph: "A", CreatedAt: time.Now()}
		return nil
	})
	require.NoError(t, err)

	// A fresh store over the same file sees the persisted state.
	reopened, err := Open(path, testLogger())
	require.NoError(t, err)

	err = reopened.View(func(snap *Snapshot) error {
		u, ok := snap.Users["u1"]
		require.True(t, ok)
		assert.Equal(t, "alice", u.Username)
		return nil
	})
	require.NoError(t, err)
}

func TestPersistedDocumentIsHumanReadable(t *testing.T) {
	s, path := newTestStore(t)

	require.NoError(t, s.Update(func(snap *Snapshot) error {
		snap.Users["u1"] = model.User{ID: "u1", Username: "alice"}
		return nil
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	// Indented output, all five collections present at the top level.
	assert.Contains(t, string(data), "\n  \"users\"")
	for _, key := range []string{"users", "posts", "friends", "requests", "threads"} {
		assert.Contains(t, string(data), `"`+key+`"`)
	}
}

func TestUpdateNoTempDebris(t *testing.T) {
	s, path := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Update(func(snap *Snapshot) error {
			snap.Posts = append(snap.Posts, model.Post{ID: "p"})
			return nil
		}))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestOpenMalformedDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkup.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := Open(path, testLogger())
	require.NoError(t, err)

	err = s.View(func(snap *Snapshot) error {
		assert.Empty(t, snap.Users)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateAbortLeavesStateUntouched(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Update(func(snap *Snapshot) error {
		snap.Users["u1"] = model.User{ID: "u1", Username: "alice"}
		return nil
	}))

	boom := errors.New("boom")
	err := s.Update(func(snap *Snapshot) error {
		snap.Users["u2"] = model.User{ID: "u2", Username: "mallory"}
		delete(snap.Users, "u1")
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.View(func(snap *Snapshot) error {
		assert.Contains(t, snap.Users, "u1")
		assert.NotContains(t, snap.Users, "u2")
		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePersistFailureRollsBack(t *testing.T) {
	s, path := newTestStore(t)

	require.NoError(t, s.Update(func(snap *Snapshot) error {
		snap.Users["u1"] = model.User{ID: "u1", Username: "alice"}
		return nil
	}))

	// Replace the document with a non-empty directory so the rename step of
	// the next persist fails.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0o755))

	err := s.Update(func(snap *Snapshot) error {
		snap.Users["u2"] = model.User{ID: "u2", Username: "bob"}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)

	// The failed persist must not have swapped the in-memory snapshot.
	require.NoError(t, s.View(func(snap *Snapshot) error {
		assert.Contains(t, snap.Users, "u1")
		assert.NotContains(t, snap.Users, "u2")
		return nil
	}))
}

func TestUpdateMutationsDoNotLeakBeforePersist(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Update(func(snap *Snapshot) error {
		snap.Friends["u1"] = model.FriendshipEdge{Friends: []string{"u2"}}
		return nil
	}))

	// Mutating slices inside an aborted Update must not alias the live state.
	err := s.Update(func(snap *Snapshot) error {
		e := snap.Friends["u1"]
		e.Friends[0] = "corrupted"
		snap.Friends["u1"] = e
		return errors.New("abort")
	})
	require.Error(t, err)

	require.NoError(t, s.View(func(snap *Snapshot) error {
		assert.Equal(t, []string{"u2"}, snap.Friends["u1"].Friends)
		return nil
	}))
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	s, _ := newTestStore(t)
	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = s.Update(func(snap *Snapshot) error {
					snap.Posts = append(snap.Posts, model.Post{ID: "p"})
					return nil
				})
			}
		}()
	}
	wg.Wait()

	require.NoError(t, s.View(func(snap *Snapshot) error {
		assert.Len(t, snap.Posts, workers*perWorker)
		return nil
	}))
}
