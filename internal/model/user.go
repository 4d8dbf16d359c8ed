// Package model defines the data structures used throughout the application.
package model

import (
	"strings"
	"time"
	"unicode"
)

// User represents a registered account.
//
// Secret holds the credential material as stored — by default the plaintext
// secret the product ships with, or a bcrypt hash when secret hashing is
// enabled in config. It is never serialized into API responses; handlers only
// ever return PublicView projections.
//
// Glyph is the derived default avatar: the upper-cased first rune of the
// username, rendered by the frontend when AvatarImage is empty.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Secret      string    `json:"secret"`
	Glyph       string    `json:"glyph"`
	AvatarImage string    `json:"avatarImage,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PublicView is the projection of a User that crosses the API boundary.
// It never includes credential material.
type PublicView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Glyph       string `json:"glyph"`
	AvatarImage string `json:"avatarImage,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// Public returns the public-safe projection of the user.
func (u User) Public() PublicView {
	return PublicView{
		ID:          u.ID,
		Username:    u.Username,
		Glyph:       u.Glyph,
		AvatarImage: u.AvatarImage,
		Bio:         u.Bio,
	}
}

// GlyphFor derives the default avatar glyph for a username: its first rune,
// upper-cased. Empty usernames (rejected at registration anyway) yield "?".
func GlyphFor(username string) string {
	username = strings.TrimSpace(username)
	for _, r := range username {
		return string(unicode.ToUpper(r))
	}
	return "?"
}
