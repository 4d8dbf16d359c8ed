// Package handler contains the HTTP layer: request parsing, response
// shaping, and nothing else. Business rules live in internal/service.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fahim/linkup/internal/auth"
	"github.com/fahim/linkup/internal/service"
)

// AuthHandler manages registration, login and the profile surface.
type AuthHandler struct {
	svc    *service.AuthService
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		tokens: tokens,
		logger: logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// HandleRegister creates an account and signs the caller in.
//
// HTTP: POST /api/auth/register {"username": "...", "secret": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.Register(req.Username, req.Secret)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.setTokenCookie(w, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user.Public())
}

// HandleLogin verifies credentials and issues a fresh token cookie.
//
// HTTP: POST /api/auth/login {"username": "...", "secret": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.Login(req.Username, req.Secret)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.setTokenCookie(w, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// HandleLogout clears the token cookie.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated user's own profile.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.svc.ResolveActor(actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// HandleUpdateAvatar replaces the caller's avatar image.
//
// HTTP: PUT /api/me/avatar {"avatarImage": "..."}
func (h *AuthHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		AvatarImage string `json:"avatarImage"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.UpdateAvatar(actorID, req.AvatarImage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// HandleUpdateBio replaces the caller's bio.
//
// HTTP: PUT /api/me/bio {"bio": "..."}
func (h *AuthHandler) HandleUpdateBio(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Bio string `json:"bio"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.UpdateBio(actorID, req.Bio)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// HandleGetUser returns another user's public view.
//
// HTTP: GET /api/users/{userID}
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// setTokenCookie issues a fresh access token as an HttpOnly cookie.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, userID string) error {
	token, err := h.tokens.Generate(userID)
	if err != nil {
		h.logger.Error("failed to generate token", slog.String("error", err.Error()))
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
