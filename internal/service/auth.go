// Package service contains the business logic layer of the application.
//
// Every service follows the same shape: validate the arguments, then run a
// pure transform against the store snapshot inside a single View or Update
// call. The store serializes those calls, so a service method never observes
// or produces a half-applied state — cross-record invariants (friendship
// symmetry, request mirror consistency) are established atomically inside
// one Update closure.
//
// Services return apperror values; handlers translate them to HTTP.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/fahim/linkup/internal/apperror"
	"github.com/fahim/linkup/internal/auth"
	"github.com/fahim/linkup/internal/model"
	"github.com/fahim/linkup/internal/store"
)

const (
	MaxUsernameLength = 32
	MaxBioLength      = 500
)

// AuthService handles registration, login and profile mutations.
type AuthService struct {
	store    *store.Store
	verifier auth.CredentialVerifier
	logger   *slog.Logger
}

func NewAuthService(st *store.Store, verifier auth.CredentialVerifier, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:    st,
		verifier: verifier,
		logger:   logger,
	}
}

// Register creates a new account.
//
// Username and secret are both required; the username must be unused.
// The derived glyph is captured at creation and the username is immutable
// afterwards.
func (s *AuthService) Register(username, secret string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return model.User{}, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if secret == "" {
		return model.User{}, apperror.ValidationFailed("secret", "secret is required")
	}

	stored, err := s.verifier.Store(secret)
	if err != nil {
		return model.User{}, apperror.ValidationFailed("secret", err.Error())
	}

	user := model.User{
		ID:        xid.New().String(),
		Username:  username,
		Secret:    stored,
		Glyph:     model.GlyphFor(username),
		CreatedAt: time.Now(),
	}

	err = s.store.Update(func(snap *store.Snapshot) error {
		for _, existing := range snap.Users {
			if existing.Username == username {
				return apperror.Conflict("user", "username already taken")
			}
		}
		snap.Users[user.ID] = user
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", username),
	)
	return user, nil
}

// Login verifies the supplied credentials and returns the matching user.
// The error never reveals whether the username or the secret was wrong.
func (s *AuthService) Login(username, secret string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || secret == "" {
		return model.User{}, apperror.Unauthenticated("invalid credentials")
	}

	var user model.User
	found := false
	err := s.store.View(func(snap *store.Snapshot) error {
		for _, u := range snap.Users {
			if u.Username == username {
				user = u
				found = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	if !found || s.verifier.Verify(user.Secret, secret) != nil {
		return model.User{}, apperror.Unauthenticated("invalid credentials")
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))
	return user, nil
}

// GetUser resolves a user ID to its record.
func (s *AuthService) GetUser(userID string) (model.User, error) {
	var user model.User
	err := s.store.View(func(snap *store.Snapshot) error {
		u, ok := snap.Users[userID]
		if !ok {
			return apperror.NotFound("user", userID)
		}
		user = u
		return nil
	})
	return user, err
}

// ResolveActor maps a token subject to a user record. A subject that no
// longer resolves (e.g. a token outliving a wiped store) is unauthenticated,
// not a 404.
func (s *AuthService) ResolveActor(actorID string) (model.User, error) {
	user, err := s.GetUser(actorID)
	if errors.Is(err, apperror.ErrNotFound) {
		return model.User{}, apperror.Unauthenticated("unknown identity")
	}
	return user, err
}

// UpdateAvatar replaces the actor's avatar image (binary-as-text).
func (s *AuthService) UpdateAvatar(actorID, avatarImage string) (model.User, error) {
	if strings.TrimSpace(avatarImage) == "" {
		return model.User{}, apperror.ValidationFailed("avatarImage", "avatar image is required")
	}

	var user model.User
	err := s.store.Update(func(snap *store.Snapshot) error {
		u, ok := snap.Users[actorID]
		if !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		u.AvatarImage = avatarImage
		snap.Users[actorID] = u
		user = u
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("avatar updated", slog.String("id", actorID))
	return user, nil
}

// UpdateBio replaces the actor's bio. An empty bio clears it.
func (s *AuthService) UpdateBio(actorID, bio string) (model.User, error) {
	bio = strings.TrimSpace(bio)
	if len(bio) > MaxBioLength {
		return model.User{}, apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
	}

	var user model.User
	err := s.store.Update(func(snap *store.Snapshot) error {
		u, ok := snap.Users[actorID]
		if !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		u.Bio = bio
		snap.Users[actorID] = u
		user = u
		return nil
	})
	return user, err
}
