package model

import (
	"strings"
	"time"
)

// MessageKind distinguishes text from voice payloads.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindVoice MessageKind = "voice"
)

// Message is one entry in a two-party chat thread. The thread sequence is
// append-only: message order is creation order, with no reordering and no
// deletion. Text and AudioData are mutually exclusive by Kind.
//
// Read defaults to false; there is no read-receipt mutation path.
type Message struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"senderId"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text,omitempty"`
	AudioData string      `json:"audioData,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	Read      bool        `json:"read"`
}

// threadKeySep joins the two member IDs of a thread key. IDs are xids
// (base32, [0-9a-v]), so the separator can never occur inside an identity
// and distinct unordered pairs can never collide.
const threadKeySep = "|"

// ThreadKey derives the canonical identifier for the chat between two users.
// It is commutative — ThreadKey(a, b) == ThreadKey(b, a) — and injective over
// unordered pairs: the lower ID always comes first.
func ThreadKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + threadKeySep + b
}

// ThreadMembers splits a thread key back into its two member IDs.
func ThreadMembers(key string) (string, string, bool) {
	a, b, ok := strings.Cut(key, threadKeySep)
	return a, b, ok
}
