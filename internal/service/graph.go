package service

import (
	"log/slog"

	"github.com/fahim/linkup/internal/apperror"
	"github.com/fahim/linkup/internal/model"
	"github.com/fahim/linkup/internal/store"
)

// GraphService maintains the friend graph and pending-request records.
//
// Two invariants hold at every observable point and every mutation here is
// written to preserve them inside a single store transaction:
//
//   - friendship symmetry: B ∈ friends(A) ⇔ A ∈ friends(B)
//   - request mirror consistency: B ∈ sent(A) ⇔ A ∈ received(B)
//
// Requests in opposite directions may coexist as two independent pending
// requests; there is no auto-accept when the target had already asked first.
type GraphService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewGraphService(st *store.Store, logger *slog.Logger) *GraphService {
	return &GraphService{store: st, logger: logger}
}

// PendingRequests is the caller-facing view of a request record.
type PendingRequests struct {
	Sent     []string `json:"sent"`
	Received []string `json:"received"`
}

// ListFriends returns public views of the actor's friends in edge-storage
// order. Friend IDs that no longer resolve to a user are dropped silently.
func (s *GraphService) ListFriends(actorID string) ([]model.PublicView, error) {
	friends := []model.PublicView{}
	err := s.store.View(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		for _, id := range snap.Edge(actorID).Friends {
			if u, ok := snap.Users[id]; ok {
				friends = append(friends, u.Public())
			}
		}
		return nil
	})
	return friends, err
}

// ListRequests returns the actor's pending requests, both directions.
// A user with no record has two empty sets.
func (s *GraphService) ListRequests(actorID string) (PendingRequests, error) {
	out := PendingRequests{Sent: []string{}, Received: []string{}}
	err := s.store.View(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		rec := snap.Record(actorID)
		out.Sent = append(out.Sent, rec.Sent...)
		out.Received = append(out.Received, rec.Received...)
		return nil
	})
	return out, err
}

// SendRequest records a pending friend request from actor to target.
//
// Sending to yourself is invalid; sending to an unknown user is a 404.
// Re-sending an already-pending request is an idempotent success.
func (s *GraphService) SendRequest(actorID, targetID string) error {
	if targetID == actorID {
		return apperror.ValidationFailed("target", "cannot send a friend request to yourself")
	}

	err := s.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		if _, ok := snap.Users[targetID]; !ok {
			return apperror.NotFound("user", targetID)
		}

		sender := snap.Record(actorID)
		receiver := snap.Record(targetID)
		if sender.HasSent(targetID) && receiver.HasReceived(actorID) {
			return nil // already pending
		}

		if !sender.HasSent(targetID) {
			sender.Sent = append(sender.Sent, targetID)
		}
		if !receiver.HasReceived(actorID) {
			receiver.Received = append(receiver.Received, actorID)
		}
		snap.Requests[actorID] = sender
		snap.Requests[targetID] = receiver
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("friend request sent",
		slog.String("from", actorID),
		slog.String("to", targetID),
	)
	return nil
}

// AcceptRequest clears the pending request from fromID (a tolerant no-op if
// none is pending) and establishes the symmetric friendship edge, all in one
// transaction. Accepting an already-established friendship changes nothing.
func (s *GraphService) AcceptRequest(actorID, fromID string) error {
	if fromID == actorID {
		return apperror.ValidationFailed("from", "cannot accept a friend request from yourself")
	}

	err := s.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}

		clearRequest(snap, fromID, actorID)

		mine := snap.Edge(actorID)
		theirs := snap.Edge(fromID)
		mine.Add(fromID)
		theirs.Add(actorID)
		snap.Friends[actorID] = mine
		snap.Friends[fromID] = theirs
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("friend request accepted",
		slog.String("actor", actorID),
		slog.String("from", fromID),
	)
	return nil
}

// DeclineRequest removes the pending request from fromID in both directions.
// No edge is created. Declining a request that was never sent is a no-op.
func (s *GraphService) DeclineRequest(actorID, fromID string) error {
	if fromID == actorID {
		return apperror.ValidationFailed("from", "cannot decline a friend request from yourself")
	}

	err := s.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		clearRequest(snap, fromID, actorID)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("friend request declined",
		slog.String("actor", actorID),
		slog.String("from", fromID),
	)
	return nil
}

// clearRequest removes the pending request sender→receiver from both
// records. Both halves go in the same transaction so mirror consistency
// holds at every observable point.
func clearRequest(snap *store.Snapshot, senderID, receiverID string) {
	sender := snap.Record(senderID)
	receiver := snap.Record(receiverID)
	sender.Sent = model.Remove(sender.Sent, receiverID)
	receiver.Received = model.Remove(receiver.Received, senderID)
	snap.Requests[senderID] = sender
	snap.Requests[receiverID] = receiver
}
