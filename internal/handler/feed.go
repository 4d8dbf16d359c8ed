package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fahim/linkup/internal/auth"
	"github.com/fahim/linkup/internal/service"
)

// FeedHandler exposes the public post feed.
type FeedHandler struct {
	svc    *service.FeedService
	logger *slog.Logger
}

func NewFeedHandler(svc *service.FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{svc: svc, logger: logger}
}

// HandleList returns all posts, newest first.
//
// HTTP: GET /api/posts
func (h *FeedHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	posts, err := h.svc.ListPosts(actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleCreate creates a post from text, an image, or both.
//
// HTTP: POST /api/posts {"text": "...", "image": "..."}
func (h *FeedHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.svc.CreatePost(actorID, req.Text, req.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleToggleLike flips the caller's like on the post and returns the
// resulting like set.
//
// HTTP: POST /api/posts/{postID}/like
func (h *FeedHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	likes, err := h.svc.ToggleLike(actorID, chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"likes": likes})
}

// HandleAddComment appends a comment to the post.
//
// HTTP: POST /api/posts/{postID}/comments {"text": "..."}
func (h *FeedHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.svc.AddComment(actorID, chi.URLParam(r, "postID"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
