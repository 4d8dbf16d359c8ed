package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fahim/linkup/internal/auth"
	"github.com/fahim/linkup/internal/service"
)

// FriendsHandler exposes the relationship graph.
type FriendsHandler struct {
	svc    *service.GraphService
	logger *slog.Logger
}

func NewFriendsHandler(svc *service.GraphService, logger *slog.Logger) *FriendsHandler {
	return &FriendsHandler{svc: svc, logger: logger}
}

// HandleList returns the caller's friends as public views.
//
// HTTP: GET /api/friends
func (h *FriendsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	friends, err := h.svc.ListFriends(actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// HandleListRequests returns the caller's pending requests in both
// directions.
//
// HTTP: GET /api/friends/requests
func (h *FriendsHandler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	reqs, err := h.svc.ListRequests(actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// HandleSendRequest sends a friend request to the user in the path.
// Re-sending a pending request succeeds without change.
//
// HTTP: POST /api/friends/requests/{userID}
func (h *FriendsHandler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.SendRequest(actorID, chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAcceptRequest accepts a pending request from the user in the path.
//
// HTTP: POST /api/friends/requests/{userID}/accept
func (h *FriendsHandler) HandleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.AcceptRequest(actorID, chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeclineRequest declines a pending request from the user in the path.
// Declining a request that does not exist is a success no-op.
//
// HTTP: POST /api/friends/requests/{userID}/decline
func (h *FriendsHandler) HandleDeclineRequest(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.DeclineRequest(actorID, chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
