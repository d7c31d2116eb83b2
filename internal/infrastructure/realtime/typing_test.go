package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeTypingFrames(t *testing.T, frames [][]byte) []TypingPayload {
	t.Helper()
	out := make([]TypingPayload, 0, len(frames))
	for _, frame := range frames {
		var ev struct {
			Name string        `json:"event"`
			Data TypingPayload `json:"data"`
		}
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("unmarshal frame %q: %v", frame, err)
		}
		if ev.Name != EventUserTyping {
			t.Fatalf("frame event = %q, want %q", ev.Name, EventUserTyping)
		}
		out = append(out, ev.Data)
	}
	return out
}

func newTypingFixture(t *testing.T, ttl time.Duration) (*Typing, *Connection, *Connection) {
	t.Helper()
	r := NewRegistry()
	typist := NewConnection("alice", nil)
	peer := NewConnection("bob", nil)
	r.Attach(typist)
	r.Attach(peer)
	r.Join("general", typist)
	r.Join("general", peer)
	return NewTyping(r, ttl, zerolog.Nop()), typist, peer
}

func TestTypingStartExcludesTypist(t *testing.T) {
	typing, typist, peer := newTypingFixture(t, time.Minute)

	typing.SetTyping("general", "alice", true)

	if got := drain(typist); len(got) != 0 {
		t.Fatalf("typist received %d typing frames about herself", len(got))
	}
	events := decodeTypingFrames(t, drain(peer))
	if len(events) != 1 || !events[0].IsTyping || events[0].UserID != "alice" {
		t.Fatalf("peer events = %+v, want one typing start from alice", events)
	}
}

func TestTypingExpiresWithoutRefresh(t *testing.T) {
	typing, _, peer := newTypingFixture(t, 40*time.Millisecond)

	typing.SetTyping("general", "alice", true)
	time.Sleep(150 * time.Millisecond)

	events := decodeTypingFrames(t, drain(peer))
	if len(events) != 2 {
		t.Fatalf("peer received %d events, want start then expiry stop", len(events))
	}
	if !events[0].IsTyping || events[1].IsTyping {
		t.Fatalf("events = %+v, want [start, stop]", events)
	}
}

func TestTypingRefreshDelaysExpiry(t *testing.T) {
	typing, _, peer := newTypingFixture(t, 120*time.Millisecond)

	typing.SetTyping("general", "alice", true)
	time.Sleep(70 * time.Millisecond)
	typing.SetTyping("general", "alice", true)
	time.Sleep(70 * time.Millisecond)

	// 140ms elapsed since the first start, but the refresh re-armed the
	// timer; no stop yet.
	for _, ev := range decodeTypingFrames(t, drain(peer)) {
		if !ev.IsTyping {
			t.Fatalf("stop emitted before the refreshed TTL elapsed: %+v", ev)
		}
	}

	time.Sleep(200 * time.Millisecond)
	events := decodeTypingFrames(t, drain(peer))
	if len(events) != 1 || events[0].IsTyping {
		t.Fatalf("events after expiry = %+v, want a single stop", events)
	}
}

func TestTypingStopClearsImmediately(t *testing.T) {
	typing, _, peer := newTypingFixture(t, time.Minute)

	typing.SetTyping("general", "alice", true)
	typing.SetTyping("general", "alice", false)

	events := decodeTypingFrames(t, drain(peer))
	if len(events) != 2 || events[1].IsTyping {
		t.Fatalf("events = %+v, want start then stop", events)
	}

	// A stop without prior state stays silent.
	typing.SetTyping("general", "alice", false)
	if got := drain(peer); len(got) != 0 {
		t.Fatalf("redundant stop emitted %d frames", len(got))
	}
}

func TestClearUserStopsAllRooms(t *testing.T) {
	r := NewRegistry()
	typist := NewConnection("alice", nil)
	peer := NewConnection("bob", nil)
	r.Attach(typist)
	r.Attach(peer)
	for _, room := range []string{"general", "random"} {
		r.Join(room, typist)
		r.Join(room, peer)
	}
	typing := NewTyping(r, time.Minute, zerolog.Nop())

	typing.SetTyping("general", "alice", true)
	typing.SetTyping("random", "alice", true)
	drain(peer)

	typing.ClearUser("alice")

	events := decodeTypingFrames(t, drain(peer))
	if len(events) != 2 {
		t.Fatalf("peer received %d frames, want a stop per room", len(events))
	}
	rooms := map[string]bool{}
	for _, ev := range events {
		if ev.IsTyping {
			t.Fatalf("ClearUser emitted a start event: %+v", ev)
		}
		rooms[ev.RoomID] = true
	}
	if !rooms["general"] || !rooms["random"] {
		t.Fatalf("stops covered rooms %v, want both general and random", rooms)
	}
}
