package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// fakeRepo is an in-memory ChatRepository mirroring the store's uniqueness
// rules: usernames are unique, and so are private room names (pairing keys).
type fakeRepo struct {
	mu       sync.Mutex
	users    map[string]chat.User
	rooms    map[string]chat.Room
	messages []chat.Message
	nextID   int

	// loseCreateRoomRace makes the next CreateRoom behave as if another
	// process inserted the same private room first: the winner's row
	// appears, the caller gets ErrConflict.
	loseCreateRoomRace bool

	findUserCalls int
}

var _ repository.ChatRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: make(map[string]chat.User),
		rooms: make(map[string]chat.Room),
	}
}

func (f *fakeRepo) genID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeRepo) addUser(u chat.User) chat.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = f.genID()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeRepo) addRoom(r chat.Room) chat.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == "" {
		r.ID = f.genID()
	}
	f.rooms[r.ID] = r
	return r
}

func (f *fakeRepo) SaveMessage(_ context.Context, m chat.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[m.RoomID]; !ok {
		return "", repository.ErrNotFound
	}
	m.ID = f.genID()
	f.messages = append(f.messages, m)
	return m.ID, nil
}

func (f *fakeRepo) ListMessagesByRoom(_ context.Context, roomID string, limit int, offset int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Message
	for _, m := range f.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) CreateRoom(_ context.Context, r chat.Room) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.IsPrivate {
		for _, existing := range f.rooms {
			if existing.IsPrivate && existing.Name == r.Name {
				return "", repository.ErrConflict
			}
		}
	}
	r.ID = f.genID()
	r.ParticipantIDs = append([]string(nil), r.ParticipantIDs...)
	f.rooms[r.ID] = r
	if f.loseCreateRoomRace {
		f.loseCreateRoomRace = false
		return "", repository.ErrConflict
	}
	return r.ID, nil
}

func (f *fakeRepo) GetRoom(_ context.Context, roomID string) (*chat.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r
	out.ParticipantIDs = append([]string(nil), r.ParticipantIDs...)
	return &out, nil
}

func (f *fakeRepo) ListPublicRooms(_ context.Context) ([]chat.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Room
	for _, r := range f.rooms {
		if !r.IsPrivate {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindRoomByPairingKey(_ context.Context, key string) (*chat.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		if r.IsPrivate && r.Name == key {
			out := r
			out.ParticipantIDs = append([]string(nil), r.ParticipantIDs...)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) FindRoomsByParticipant(_ context.Context, userID string) ([]chat.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Room
	for _, r := range f.rooms {
		for _, id := range r.ParticipantIDs {
			if id == userID {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) AddParticipant(_ context.Context, roomID string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range r.ParticipantIDs {
		if id == userID {
			return nil
		}
	}
	r.ParticipantIDs = append(r.ParticipantIDs, userID)
	f.rooms[roomID] = r
	return nil
}

func (f *fakeRepo) ListParticipantIDs(_ context.Context, roomID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]string(nil), r.ParticipantIDs...), nil
}

func (f *fakeRepo) IsParticipant(_ context.Context, roomID string, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return false, nil
	}
	for _, id := range r.ParticipantIDs {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateUser(_ context.Context, u chat.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return "", repository.ErrConflict
		}
	}
	u.ID = f.genID()
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeRepo) FindUserByID(_ context.Context, id string) (*chat.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findUserCalls++
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (f *fakeRepo) FindUserByUsername(_ context.Context, username string) (*chat.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) ListUsers(_ context.Context) ([]chat.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]chat.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepo) UpdateUserStatus(_ context.Context, userID string, status string, lastSeen time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = chat.UserStatus(status)
	u.LastSeen = lastSeen
	f.users[userID] = u
	return nil
}
