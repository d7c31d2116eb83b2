package usecase

import (
	"context"
	"fmt"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// GetMessagesInput carries parameters to fetch a room's history.
type GetMessagesInput struct {
	RoomID string
	Limit  int
	Offset int
}

// GetMessagesUseCase returns messages in creation order: the canonical chat
// history each client reconstructs on room entry.
type GetMessagesUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessagesUseCase(repo repository.ChatRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]chat.Message, error) {
	if in.RoomID == "" {
		return nil, fmt.Errorf("room_id is required")
	}
	msgs, err := uc.Repo.ListMessagesByRoom(ctx, in.RoomID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
