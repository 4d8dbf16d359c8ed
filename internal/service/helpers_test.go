package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fahim/linkup/internal/auth"
	"github.com/fahim/linkup/internal/model"
	"github.com/fahim/linkup/internal/store"
)

// services bundles every service over one shared store, the way the server
// wires them. Tests run against a real store backed by a temp file so the
// full load-transform-persist path is exercised, mirroring how the
// repository tests run against a real database rather than a mock.
type services struct {
	store *store.Store
	auth  *AuthService
	graph *GraphService
	chat  *ChatService
	feed  *FeedService
}

func newServices(t *testing.T) *services {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := store.Open(filepath.Join(t.TempDir(), "linkup.json"), logger)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	return &services{
		store: st,
		auth:  NewAuthService(st, auth.PlainVerifier{}, logger),
		graph: NewGraphService(st, logger),
		chat:  NewChatService(st, logger),
		feed:  NewFeedService(st, logger),
	}
}

// register creates a user and fails the test if registration errors.
func (s *services) register(t *testing.T, username string) model.User {
	t.Helper()
	u, err := s.auth.Register(username, username+"-secret")
	if err != nil {
		t.Fatalf("Register(%q): %v", username, err)
	}
	return u
}

// checkInvariants asserts friendship symmetry and request mirror
// consistency over the whole snapshot. Call it after every graph mutation.
func (s *services) checkInvariants(t *testing.T) {
	t.Helper()
	err := s.store.View(func(snap *store.Snapshot) error {
		for userID, edge := range snap.Friends {
			for _, friendID := range edge.Friends {
				if friendID == userID {
					t.Errorf("self-friendship recorded for %s", userID)
				}
				if !snap.Edge(friendID).Has(userID) {
					t.Errorf("asymmetric friendship: %s has %s but not vice versa", userID, friendID)
				}
			}
		}
		for userID, rec := range snap.Requests {
			for _, targetID := range rec.Sent {
				if !snap.Record(targetID).HasReceived(userID) {
					t.Errorf("mirror violation: %s sent to %s but no received entry", userID, targetID)
				}
			}
			for _, senderID := range rec.Received {
				if !snap.Record(senderID).HasSent(userID) {
					t.Errorf("mirror violation: %s received from %s but no sent entry", userID, senderID)
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}
