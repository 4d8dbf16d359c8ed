package model

import "time"

// AuthorSnapshot is the denormalized display copy of a user captured when a
// post, comment or message is written. It is a point-in-time copy, not a live
// reference: if the author later changes their avatar, existing posts keep
// showing the old one. That staleness is a product decision, not a bug.
type AuthorSnapshot struct {
	AuthorID          string `json:"authorId"`
	AuthorName        string `json:"authorName"`
	AuthorGlyph       string `json:"authorGlyph"`
	AuthorAvatarImage string `json:"authorAvatarImage,omitempty"`
}

// SnapshotOf captures the denormalized display fields of a user.
func SnapshotOf(u User) AuthorSnapshot {
	return AuthorSnapshot{
		AuthorID:          u.ID,
		AuthorName:        u.Username,
		AuthorGlyph:       u.Glyph,
		AuthorAvatarImage: u.AvatarImage,
	}
}

// Post is a public feed entry. Likes is a set: a user ID appears at most
// once. Comments are append-only in creation order. Posts are never deleted.
type Post struct {
	ID string `json:"id"`
	AuthorSnapshot
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
}

// Comment is an append-only entry under a post.
type Comment struct {
	ID string `json:"id"`
	AuthorSnapshot
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Liked reports whether userID is in the post's like set.
func (p Post) Liked(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
