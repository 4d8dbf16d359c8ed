package model

// FriendshipEdge holds one user's side of the friend graph.
//
// Invariant (symmetry): for all users A and B,
// B ∈ Friends(A) if and only if A ∈ Friends(B). Every mutation that touches
// an edge must update both records inside the same store transaction.
// Self-friendship is never recorded.
//
// Friends is ordered — listFriends reports members in edge-storage order.
type FriendshipEdge struct {
	Friends []string `json:"friends"`
}

// Has reports whether userID is already a friend on this edge.
func (e FriendshipEdge) Has(userID string) bool {
	return contains(e.Friends, userID)
}

// Add appends userID to the edge if not already present.
func (e *FriendshipEdge) Add(userID string) {
	if !e.Has(userID) {
		e.Friends = append(e.Friends, userID)
	}
}

// RequestRecord holds one user's pending friend requests.
//
// Invariant (mirror consistency): for all A and B,
// B ∈ Sent(A) if and only if A ∈ Received(B). Both halves of a request are
// written and cleared together inside the same store transaction.
//
// A record is materialized lazily on first write; a user with no record
// behaves as if both sets were empty.
type RequestRecord struct {
	Sent     []string `json:"sent"`
	Received []string `json:"received"`
}

// HasSent reports whether a request to userID is pending.
func (r RequestRecord) HasSent(userID string) bool {
	return contains(r.Sent, userID)
}

// HasReceived reports whether a request from userID is pending.
func (r RequestRecord) HasReceived(userID string) bool {
	return contains(r.Received, userID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Remove deletes id from ids, preserving order. Removing an absent id is a
// no-op.
func Remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
