package realtime

import "sync"

// PresenceListener observes registry transitions. Notifications fire outside
// the registry lock, after the state change is visible.
type PresenceListener interface {
	UserConnected(userID string)
	UserDisconnected(userID string)
}

// Registry maps authenticated users to their live connection and maintains
// the room-membership index used for fan-out.
//
// Single-slot semantics: a user holds at most one live connection; attaching
// a new one replaces and closes the previous socket. The replaced socket's
// detach does not flip the user offline because the mapping already points at
// the replacement.
type Registry struct {
	mu        sync.RWMutex
	conns     map[string]*Connection            // connID -> connection
	userConns map[string]string                 // userID -> connID
	rooms     map[string]map[string]*Connection // roomID -> connID -> connection
	connRooms map[string]map[string]struct{}    // connID -> set of roomIDs

	presence PresenceListener
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:     make(map[string]*Connection),
		userConns: make(map[string]string),
		rooms:     make(map[string]map[string]*Connection),
		connRooms: make(map[string]map[string]struct{}),
	}
}

// SetPresenceListener wires the presence tracker. Must be called before the
// first Attach.
func (r *Registry) SetPresenceListener(l PresenceListener) {
	r.presence = l
}

// Attach registers a connection for its user, replacing any previous session.
func (r *Registry) Attach(conn *Connection) {
	var previous *Connection

	r.mu.Lock()
	if existingID, ok := r.userConns[conn.UserID]; ok {
		if existing := r.conns[existingID]; existing != nil {
			previous = existing
			r.detachLocked(existingID)
		}
	}

	r.conns[conn.ID] = conn
	r.userConns[conn.UserID] = conn.ID
	r.connRooms[conn.ID] = make(map[string]struct{})
	r.mu.Unlock()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
	if r.presence != nil {
		r.presence.UserConnected(conn.UserID)
	}
}

// Detach removes a connection if it is still tracked. The presence listener
// is notified only when the user's current mapping was removed, so detaching
// a replaced socket never flips its user offline.
func (r *Registry) Detach(conn *Connection) {
	r.mu.Lock()
	_, tracked := r.conns[conn.ID]
	wasCurrent := tracked && r.userConns[conn.UserID] == conn.ID
	r.detachLocked(conn.ID)
	r.mu.Unlock()

	if wasCurrent && r.presence != nil {
		r.presence.UserDisconnected(conn.UserID)
	}
}

// Lookup returns the live connection for userID, if any. Absence is not an
// error; callers treat it as "offline".
func (r *Registry) Lookup(userID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.userConns[userID]
	if !ok {
		return nil, false
	}
	conn := r.conns[connID]
	return conn, conn != nil
}

// IsOnline reports whether the registry holds a live connection for userID.
func (r *Registry) IsOnline(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Join adds the connection to the room's fan-out index.
func (r *Registry) Join(roomID string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[conn.ID]; !ok {
		return
	}

	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[roomID] = room
	}
	room[conn.ID] = conn

	memberships := r.connRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.connRooms[conn.ID] = memberships
	}
	memberships[roomID] = struct{}{}
}

// Leave removes the connection from the room's fan-out index.
func (r *Registry) Leave(roomID string, conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(roomID, conn.ID)
	r.mu.Unlock()
}

// Rooms returns the room ids the connection has joined.
func (r *Registry) Rooms(conn *Connection) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	memberships := r.connRooms[conn.ID]
	ids := make([]string, 0, len(memberships))
	for id := range memberships {
		ids = append(ids, id)
	}
	return ids
}

// Broadcast writes payload to every connection joined to the room and returns
// the delivered count. excludeUserID, when non-empty, skips that user.
// Delivery is best-effort: failed sends are dropped, never retried.
func (r *Registry) Broadcast(roomID string, payload []byte, excludeUserID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, conn := range r.rooms[roomID] {
		if excludeUserID != "" && conn.UserID == excludeUserID {
			continue
		}
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// BroadcastAll writes payload to every live connection (presence updates and
// room announcements are not scoped to a room).
func (r *Registry) BroadcastAll(payload []byte, excludeUserID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, conn := range r.conns {
		if excludeUserID != "" && conn.UserID == excludeUserID {
			continue
		}
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser delivers payload to the current connection of the given user.
func (r *Registry) NotifyUser(userID string, payload []byte) bool {
	conn, ok := r.Lookup(userID)
	if !ok {
		return false
	}
	return conn.Send(payload) == nil
}

// Close terminates all tracked connections and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.conns = make(map[string]*Connection)
	r.userConns = make(map[string]string)
	r.rooms = make(map[string]map[string]*Connection)
	r.connRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "registry shutdown")
	}
}

func (r *Registry) detachLocked(connID string) {
	conn, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(r.conns, connID)

	if current, ok := r.userConns[conn.UserID]; ok && current == connID {
		delete(r.userConns, conn.UserID)
	}

	for roomID := range r.connRooms[connID] {
		r.leaveLocked(roomID, connID)
	}
	delete(r.connRooms, connID)
}

func (r *Registry) leaveLocked(roomID string, connID string) {
	room := r.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
	if memberships, ok := r.connRooms[connID]; ok {
		delete(memberships, roomID)
	}
}
