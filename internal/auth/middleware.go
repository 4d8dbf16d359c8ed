package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can read or write userID values in the context, so other
// packages cannot collide with or shadow the value.
type contextKey string

const userIDKey contextKey = "userID"

// TokenCookie is the name of the HttpOnly cookie carrying the access token.
const TokenCookie = "token"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the JWT from the token cookie or the Authorization: Bearer
// header, validates it, and stores the userID in the request context. If the
// token is missing or invalid, it returns 401 Unauthorized and stops the
// request chain.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) if the request carried no valid token.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the token from the cookie or the Authorization header
// and validates it. The cookie wins when both are present — browser clients
// always send it, and a stale header should not shadow a fresh login.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return tokens.Validate(cookie.Value)
	}

	header := r.Header.Get("Authorization")
	if raw, ok := strings.CutPrefix(header, "Bearer "); ok {
		return tokens.Validate(strings.TrimSpace(raw))
	}

	return "", http.ErrNoCookie
}
