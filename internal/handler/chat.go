package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fahim/linkup/internal/apperror"
	"github.com/fahim/linkup/internal/auth"
	"github.com/fahim/linkup/internal/service"
)

// ChatHandler exposes pairwise direct-message threads.
type ChatHandler struct {
	svc    *service.ChatService
	logger *slog.Logger
}

func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// HandleListChats returns one summary per friend: the friend's public view
// and the last message of the shared thread (null when empty).
//
// HTTP: GET /api/chats
func (h *ChatHandler) HandleListChats(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	chats, err := h.svc.ListChats(actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// HandleListMessages returns the full thread with the user in the path.
//
// HTTP: GET /api/chats/{userID}/messages
func (h *ChatHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	msgs, err := h.svc.ListMessages(actorID, chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HandleSendMessage appends a message to the thread with the user in the
// path. The body carries either text or audioData; the payload decides the
// message kind.
//
// HTTP: POST /api/chats/{userID}/messages {"text": "..."} | {"audioData": "..."}
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	peerID := chi.URLParam(r, "userID")

	var req struct {
		Text      string `json:"text"`
		AudioData string `json:"audioData"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	switch {
	case req.AudioData != "":
		msg, err := h.svc.SendVoice(actorID, peerID, req.AudioData)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	case req.Text != "":
		msg, err := h.svc.SendText(actorID, peerID, req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	default:
		writeError(w, apperror.ValidationFailed("body", "a message needs text or audio data"))
	}
}
