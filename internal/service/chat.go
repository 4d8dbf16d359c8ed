package service

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/fahim/linkup/internal/apperror"
	"github.com/fahim/linkup/internal/model"
	"github.com/fahim/linkup/internal/store"
)

// ChatService manages pairwise direct-message threads.
//
// A thread is addressed by model.ThreadKey over the two member IDs, so both
// parties always land on the same append-only sequence. Any authenticated
// user may open a thread with any other user ID — the peer does not have to
// be a confirmed friend. That is a deliberate product boundary, not a
// missing check.
type ChatService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewChatService(st *store.Store, logger *slog.Logger) *ChatService {
	return &ChatService{store: st, logger: logger}
}

// ChatSummary pairs a friend with the tail message of the shared thread.
// LastMessage is nil when the thread has never carried a message.
type ChatSummary struct {
	Friend      model.PublicView `json:"friend"`
	LastMessage *model.Message   `json:"lastMessage"`
}

// ListChats reports, for every friend of the actor, the last message of the
// shared thread, followed by any non-friend threads that already carry
// messages (sorted by peer ID so the order is stable). Peers who no longer
// resolve to a user are dropped.
func (s *ChatService) ListChats(actorID string) ([]ChatSummary, error) {
	chats := []ChatSummary{}
	err := s.store.View(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}

		seen := map[string]bool{}
		for _, friendID := range snap.Edge(actorID).Friends {
			friend, ok := snap.Users[friendID]
			if !ok {
				continue
			}
			seen[friendID] = true
			summary := ChatSummary{Friend: friend.Public()}
			if msgs := snap.Threads[model.ThreadKey(actorID, friendID)]; len(msgs) > 0 {
				last := msgs[len(msgs)-1]
				summary.LastMessage = &last
			}
			chats = append(chats, summary)
		}

		// Threads opened with users outside the friend list.
		extra := []string{}
		for key, msgs := range snap.Threads {
			if len(msgs) == 0 {
				continue
			}
			a, b, ok := model.ThreadMembers(key)
			if !ok {
				continue
			}
			var peerID string
			switch actorID {
			case a:
				peerID = b
			case b:
				peerID = a
			default:
				continue
			}
			if seen[peerID] {
				continue
			}
			if _, ok := snap.Users[peerID]; !ok {
				continue
			}
			extra = append(extra, peerID)
		}
		sort.Strings(extra)

		for _, peerID := range extra {
			msgs := snap.Threads[model.ThreadKey(actorID, peerID)]
			last := msgs[len(msgs)-1]
			chats = append(chats, ChatSummary{
				Friend:      snap.Users[peerID].Public(),
				LastMessage: &last,
			})
		}
		return nil
	})
	return chats, err
}

// ListMessages returns the full ordered sequence of the thread between the
// actor and peer, empty if the thread has never been created.
func (s *ChatService) ListMessages(actorID, peerID string) ([]model.Message, error) {
	msgs := []model.Message{}
	err := s.store.View(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		msgs = append(msgs, snap.Threads[model.ThreadKey(actorID, peerID)]...)
		return nil
	})
	return msgs, err
}

// SendText appends a text message from the actor to the thread with peer.
func (s *ChatService) SendText(actorID, peerID, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, apperror.ValidationFailed("text", "message text is required")
	}
	return s.append(actorID, peerID, model.Message{
		Kind: model.KindText,
		Text: text,
	})
}

// SendVoice appends a voice message (binary-as-text payload) from the actor
// to the thread with peer.
func (s *ChatService) SendVoice(actorID, peerID, audioData string) (model.Message, error) {
	if audioData == "" {
		return model.Message{}, apperror.ValidationFailed("audioData", "audio data is required")
	}
	return s.append(actorID, peerID, model.Message{
		Kind:      model.KindVoice,
		AudioData: audioData,
	})
}

// append assigns server-side fields and appends msg to the thread. The
// timestamp is clamped to the tail message's so creation time never runs
// backwards within a thread; ties keep append order.
func (s *ChatService) append(actorID, peerID string, msg model.Message) (model.Message, error) {
	if peerID == actorID {
		return model.Message{}, apperror.ValidationFailed("peer", "cannot message yourself")
	}

	err := s.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		if _, ok := snap.Users[peerID]; !ok {
			return apperror.NotFound("user", peerID)
		}

		key := model.ThreadKey(actorID, peerID)
		thread := snap.Threads[key]

		msg.ID = xid.New().String()
		msg.SenderID = actorID
		msg.Read = false
		msg.CreatedAt = time.Now()
		if n := len(thread); n > 0 && msg.CreatedAt.Before(thread[n-1].CreatedAt) {
			msg.CreatedAt = thread[n-1].CreatedAt
		}

		snap.Threads[key] = append(thread, msg)
		return nil
	})
	if err != nil {
		return model.Message{}, err
	}

	s.logger.Info("message sent",
		slog.String("from", actorID),
		slog.String("to", peerID),
		slog.String("kind", string(msg.Kind)),
	)
	return msg, nil
}
