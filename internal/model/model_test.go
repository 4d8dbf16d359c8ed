package model

import (
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
)

func TestThreadKeyCommutative(t *testing.T) {
	a := xid.New().String()
	b := xid.New().String()

	assert.Equal(t, ThreadKey(a, b), ThreadKey(b, a))
}

func TestThreadKeyDistinctPairs(t *testing.T) {
	a := xid.New().String()
	b := xid.New().String()
	c := xid.New().String()

	assert.NotEqual(t, ThreadKey(a, b), ThreadKey(a, c))
	assert.NotEqual(t, ThreadKey(a, b), ThreadKey(b, c))
}

func TestThreadMembers(t *testing.T) {
	a, b := "aid", "bid"
	key := ThreadKey(b, a)

	first, second, ok := ThreadMembers(key)
	assert.True(t, ok)
	assert.Equal(t, "aid", first)
	assert.Equal(t, "bid", second)
}

func TestGlyphFor(t *testing.T) {
	tests := []struct {
		username string
		want     string
	}{
		{"alice", "A"},
		{"Bob", "B"},
		{"  carol", "C"},
		{"élise", "É"},
		{"", "?"},
		{"   ", "?"},
	}

	for _, tt := range tests {
		if got := GlyphFor(tt.username); got != tt.want {
			t.Errorf("GlyphFor(%q) = %q, want %q", tt.username, got, tt.want)
		}
	}
}

func TestFriendshipEdgeAddIsSet(t *testing.T) {
	var e FriendshipEdge
	e.Add("u1")
	e.Add("u2")
	e.Add("u1")

	assert.Equal(t, []string{"u1", "u2"}, e.Friends)
	assert.True(t, e.Has("u1"))
	assert.False(t, e.Has("u3"))
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	ids := []string{"a", "b", "c"}

	assert.Equal(t, []string{"a", "c"}, Remove(append([]string(nil), ids...), "b"))
	assert.Equal(t, ids, Remove(append([]string(nil), ids...), "zzz"))
}

func TestPublicViewOmitsSecret(t *testing.T) {
	u := User{ID: "id", Username: "alice", Secret: "hunter2", Glyph: "A", Bio: "hi"}
	p := u.Public()

	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "hi", p.Bio)
	// PublicView has no secret field at all; this just pins the projection.
	assert.Equal(t, PublicView{ID: "id", Username: "alice", Glyph: "A", Bio: "hi"}, p)
}
