package chat

import (
	"sort"
	"strings"
	"time"
)

// Room groups participants for message delivery. Public rooms are long-lived
// and listed; private rooms are created lazily per pair of users and keyed by
// their pairing key (stored as the room name, mirroring lookup by name).
type Room struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	IsPrivate      bool      `db:"is_private"`
	ParticipantIDs []string  `db:"-"`
	CreatedAt      time.Time `db:"created_at"`
}

// HasParticipant tells whether userID belongs to the room's participant set.
func (r *Room) HasParticipant(userID string) bool {
	if r == nil {
		return false
	}
	for _, id := range r.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PrivatePairKey derives the deterministic identifier for the private room of
// an unordered user pair. Both orderings of the arguments yield the same key,
// which is what guarantees at most one room per pair.
func PrivatePairKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, "-")
}
