package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// InitPrivateChatInput identifies the unordered pair of users.
type InitPrivateChatInput struct {
	UserID      string
	OtherUserID string
}

// InitPrivateChatOutput returns the pair's room and whether this call created it.
type InitPrivateChatOutput struct {
	Room    chat.Room
	Created bool
}

// InitPrivateChatUseCase resolves the single private room of a user pair,
// creating it on first contact. Concurrent first contacts from both sides are
// the highest-risk race in the system: a per-pairing-key mutex makes the
// find-or-create atomic within the process, and a unique-insert conflict from
// the store resolves the cross-process case by re-fetching the winner's room.
type InitPrivateChatUseCase struct {
	Repo repository.ChatRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewInitPrivateChatUseCase(repo repository.ChatRepository) *InitPrivateChatUseCase {
	return &InitPrivateChatUseCase{
		Repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

// pairLock returns the mutex guarding one pairing key. Locks are never
// removed; the map is bounded by the number of distinct pairs seen.
func (uc *InitPrivateChatUseCase) pairLock(key string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.locks[key]
	if !ok {
		l = &sync.Mutex{}
		uc.locks[key] = l
	}
	return l
}

func (uc *InitPrivateChatUseCase) Execute(ctx context.Context, in InitPrivateChatInput) (*InitPrivateChatOutput, error) {
	if in.UserID == "" || in.OtherUserID == "" {
		return nil, fmt.Errorf("user_id and other_user_id are required")
	}
	if in.UserID == in.OtherUserID {
		return nil, chat.ErrSelfPrivateChat
	}

	// The other user must exist before a room is minted for the pair.
	if _, err := uc.Repo.FindUserByID(ctx, in.OtherUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	key := chat.PrivatePairKey(in.UserID, in.OtherUserID)

	lock := uc.pairLock(key)
	lock.Lock()
	defer lock.Unlock()

	room, err := uc.Repo.FindRoomByPairingKey(ctx, key)
	if err == nil {
		return &InitPrivateChatOutput{Room: *room}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	id, err := uc.Repo.CreateRoom(ctx, chat.Room{
		Name:           key,
		IsPrivate:      true,
		ParticipantIDs: []string{in.UserID, in.OtherUserID},
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost the race to another process: use the winner's room.
			room, err = uc.Repo.FindRoomByPairingKey(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			return &InitPrivateChatOutput{Room: *room}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	room, err = uc.Repo.GetRoom(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &InitPrivateChatOutput{Room: *room, Created: true}, nil
}
