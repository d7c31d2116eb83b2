package realtime

import (
	"sync"
	"testing"
)

// recordingListener captures presence callbacks for assertions.
type recordingListener struct {
	mu           sync.Mutex
	connected    []string
	disconnected []string
}

func (l *recordingListener) UserConnected(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = append(l.connected, userID)
}

func (l *recordingListener) UserDisconnected(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disconnected = append(l.disconnected, userID)
}

func (l *recordingListener) snapshot() (connected, disconnected []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.connected...), append([]string(nil), l.disconnected...)
}

// drain empties a connection's outbound buffer. The write loop is never
// started in tests, so everything sent stays queued.
func drain(conn *Connection) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-conn.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestAttachAndLookup(t *testing.T) {
	r := NewRegistry()
	conn := NewConnection("alice", nil)
	r.Attach(conn)

	got, ok := r.Lookup("alice")
	if !ok || got.ID != conn.ID {
		t.Fatalf("Lookup(alice) = %v, %v; want the attached connection", got, ok)
	}
	if !r.IsOnline("alice") {
		t.Fatal("IsOnline(alice) = false after attach")
	}
	if r.IsOnline("bob") {
		t.Fatal("IsOnline(bob) = true, nobody attached for bob")
	}
}

func TestAttachReplacesPreviousSession(t *testing.T) {
	r := NewRegistry()
	listener := &recordingListener{}
	r.SetPresenceListener(listener)

	first := NewConnection("alice", nil)
	r.Attach(first)
	second := NewConnection("alice", nil)
	r.Attach(second)

	got, ok := r.Lookup("alice")
	if !ok || got.ID != second.ID {
		t.Fatalf("Lookup(alice) returned %v, %v; want the replacement connection", got, ok)
	}
	if err := first.Send([]byte("x")); err != ErrConnClosed {
		t.Fatalf("Send on replaced connection = %v, want ErrConnClosed", err)
	}

	// The replaced socket's detach must not flip the user offline.
	r.Detach(first)
	_, disconnected := listener.snapshot()
	if len(disconnected) != 0 {
		t.Fatalf("disconnected = %v after detaching a replaced socket, want none", disconnected)
	}
	if !r.IsOnline("alice") {
		t.Fatal("alice went offline after her stale socket detached")
	}

	r.Detach(second)
	_, disconnected = listener.snapshot()
	if len(disconnected) != 1 || disconnected[0] != "alice" {
		t.Fatalf("disconnected = %v, want [alice]", disconnected)
	}
}

func TestBroadcastScopedToRoom(t *testing.T) {
	r := NewRegistry()
	alice := NewConnection("alice", nil)
	bob := NewConnection("bob", nil)
	carol := NewConnection("carol", nil)
	for _, c := range []*Connection{alice, bob, carol} {
		r.Attach(c)
	}
	r.Join("general", alice)
	r.Join("general", bob)

	if n := r.Broadcast("general", []byte("hi"), ""); n != 2 {
		t.Fatalf("Broadcast delivered %d, want 2", n)
	}
	if got := drain(carol); len(got) != 0 {
		t.Fatalf("carol received %d frames without joining the room", len(got))
	}
	drain(alice)
	drain(bob)

	if n := r.Broadcast("general", []byte("hi"), "alice"); n != 1 {
		t.Fatalf("Broadcast with exclusion delivered %d, want 1", n)
	}
	if got := drain(alice); len(got) != 0 {
		t.Fatalf("excluded sender received %d frames", len(got))
	}
	if got := drain(bob); len(got) != 1 {
		t.Fatalf("bob received %d frames, want 1", len(got))
	}

	r.Leave("general", bob)
	if n := r.Broadcast("general", []byte("bye"), ""); n != 1 {
		t.Fatalf("Broadcast after leave delivered %d, want 1", n)
	}
	if got := drain(bob); len(got) != 0 {
		t.Fatalf("bob received %d frames after leaving", len(got))
	}
}

func TestDetachClearsRoomMemberships(t *testing.T) {
	r := NewRegistry()
	alice := NewConnection("alice", nil)
	r.Attach(alice)
	r.Join("general", alice)
	r.Join("random", alice)

	if rooms := r.Rooms(alice); len(rooms) != 2 {
		t.Fatalf("Rooms = %v, want two memberships", rooms)
	}

	r.Detach(alice)
	if n := r.Broadcast("general", []byte("hi"), ""); n != 0 {
		t.Fatalf("Broadcast after detach delivered %d, want 0", n)
	}
	if rooms := r.Rooms(alice); len(rooms) != 0 {
		t.Fatalf("Rooms after detach = %v, want none", rooms)
	}
}

func TestNotifyUser(t *testing.T) {
	r := NewRegistry()
	alice := NewConnection("alice", nil)
	r.Attach(alice)

	if !r.NotifyUser("alice", []byte("ping")) {
		t.Fatal("NotifyUser(alice) = false, want delivery")
	}
	if r.NotifyUser("bob", []byte("ping")) {
		t.Fatal("NotifyUser(bob) = true for an offline user")
	}
	if got := drain(alice); len(got) != 1 || string(got[0]) != "ping" {
		t.Fatalf("alice received %q, want one ping frame", got)
	}
}

func TestBroadcastAll(t *testing.T) {
	r := NewRegistry()
	alice := NewConnection("alice", nil)
	bob := NewConnection("bob", nil)
	r.Attach(alice)
	r.Attach(bob)

	if n := r.BroadcastAll([]byte("announce"), "alice"); n != 1 {
		t.Fatalf("BroadcastAll delivered %d, want 1", n)
	}
	if got := drain(alice); len(got) != 0 {
		t.Fatalf("excluded user received %d frames", len(got))
	}
}

func TestBroadcastConcurrentWithSessionReplace(t *testing.T) {
	r := NewRegistry()
	peer := NewConnection("bob", nil)
	peer.Start() // keep the buffer draining so broadcasts keep flowing
	r.Attach(peer)
	r.Join("general", peer)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				r.Broadcast("general", []byte("hi"), "")
			}
		}
	}()

	// Each attach closes the previous alice socket while the broadcast
	// loop may be mid-send to it.
	for i := 0; i < 100; i++ {
		conn := NewConnection("alice", nil)
		conn.Start()
		r.Attach(conn)
		r.Join("general", conn)
	}
	close(stop)
	wg.Wait()

	// A leaked registry lock would deadlock this write-side call.
	r.Detach(peer)
	if r.IsOnline("bob") {
		t.Fatal("bob still online after detach")
	}
}

func TestCloseTerminatesAllConnections(t *testing.T) {
	r := NewRegistry()
	alice := NewConnection("alice", nil)
	r.Attach(alice)
	r.Join("general", alice)

	r.Close()

	if r.IsOnline("alice") {
		t.Fatal("alice still online after registry close")
	}
	if err := alice.Send([]byte("x")); err != ErrConnClosed {
		t.Fatalf("Send after close = %v, want ErrConnClosed", err)
	}
}
