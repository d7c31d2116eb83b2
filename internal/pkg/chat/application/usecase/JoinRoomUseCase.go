package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// JoinRoomInput validates a request to attach a user session to a room.
type JoinRoomInput struct {
	RoomID string
	UserID string
}

// JoinRoomUseCase enforces the membership invariant before the realtime layer
// indexes the connection: public rooms accept anyone (the joiner is added to
// the participant set idempotently), private rooms only their two
// participants. Returns the refreshed room for the room-updated broadcast.
type JoinRoomUseCase struct {
	Repo repository.ChatRepository
}

func NewJoinRoomUseCase(repo repository.ChatRepository) *JoinRoomUseCase {
	return &JoinRoomUseCase{Repo: repo}
}

func (uc *JoinRoomUseCase) Execute(ctx context.Context, in JoinRoomInput) (*chat.Room, error) {
	if in.RoomID == "" || in.UserID == "" {
		return nil, fmt.Errorf("room_id and user_id are required")
	}

	room, err := uc.Repo.GetRoom(ctx, in.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if room.IsPrivate {
		if !room.HasParticipant(in.UserID) {
			return nil, chat.ErrNotParticipant
		}
		return room, nil
	}

	if err := uc.Repo.AddParticipant(ctx, in.RoomID, in.UserID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Re-read: the participant set may have moved while we were writing.
	room, err = uc.Repo.GetRoom(ctx, in.RoomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return room, nil
}
