package realtime

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTypingTTL is how long a typing flag survives without a refresh.
const DefaultTypingTTL = 3 * time.Second

type typingKey struct {
	roomID string
	userID string
}

// typingEntry carries the expiry timer plus a generation counter. A refresh
// bumps the generation, so an expiry that already fired for the old timer
// recognizes it lost the race and stays silent.
type typingEntry struct {
	timer *time.Timer
	gen   uint64
}

// Typing tracks ephemeral per-room, per-user typing state. Every start signal
// arms (or re-arms) an expiry timer for its (room, user) key, so a silent
// client never leaves a stale indicator behind. Stop signals and expiries emit
// a room-scoped stop event excluding the typist. State lives only in memory
// and is dropped wholesale when the owning connection disconnects.
type Typing struct {
	mu      sync.Mutex
	entries map[typingKey]*typingEntry

	registry *Registry
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewTyping constructs a Typing coordinator. A non-positive ttl falls back to
// DefaultTypingTTL.
func NewTyping(registry *Registry, ttl time.Duration, logger zerolog.Logger) *Typing {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &Typing{
		entries:  make(map[typingKey]*typingEntry),
		registry: registry,
		ttl:      ttl,
		logger:   logger,
	}
}

// SetTyping records or clears the typing flag for (roomID, userID). A true
// call refreshes any pending expiry timer (debounce); false clears it.
func (t *Typing) SetTyping(roomID, userID string, isTyping bool) {
	key := typingKey{roomID: roomID, userID: userID}

	if isTyping {
		t.mu.Lock()
		entry, ok := t.entries[key]
		if ok {
			entry.timer.Stop()
			entry.gen++
		} else {
			entry = &typingEntry{}
			t.entries[key] = entry
		}
		gen := entry.gen
		entry.timer = time.AfterFunc(t.ttl, func() { t.expire(key, gen) })
		t.mu.Unlock()

		t.emit(roomID, userID, true)
		return
	}

	t.mu.Lock()
	entry, ok := t.entries[key]
	if ok {
		entry.timer.Stop()
		delete(t.entries, key)
	}
	t.mu.Unlock()

	if ok {
		t.emit(roomID, userID, false)
	}
}

// ClearUser cancels all pending typing state for a disconnecting user and
// emits stop events so peers do not keep a stale indicator.
func (t *Typing) ClearUser(userID string) {
	t.mu.Lock()
	var rooms []string
	for key, entry := range t.entries {
		if key.userID != userID {
			continue
		}
		entry.timer.Stop()
		delete(t.entries, key)
		rooms = append(rooms, key.roomID)
	}
	t.mu.Unlock()

	for _, roomID := range rooms {
		t.emit(roomID, userID, false)
	}
}

func (t *Typing) expire(key typingKey, gen uint64) {
	t.mu.Lock()
	entry, ok := t.entries[key]
	expired := ok && entry.gen == gen
	if expired {
		delete(t.entries, key)
	}
	t.mu.Unlock()

	if expired {
		t.emit(key.roomID, key.userID, false)
	}
}

func (t *Typing) emit(roomID, userID string, isTyping bool) {
	payload, err := EncodeEvent(EventUserTyping, TypingPayload{
		RoomID:   roomID,
		UserID:   userID,
		IsTyping: isTyping,
	})
	if err != nil {
		t.logger.Error().Err(err).Msg("encode typing event")
		return
	}
	t.registry.Broadcast(roomID, payload, userID)
}
