package usecase

import (
	"context"
	"fmt"

	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// ListParticipantsUseCase returns user IDs for all participants in the room.
type ListParticipantsUseCase struct {
	Repo repository.ChatRepository
}

func NewListParticipantsUseCase(repo repository.ChatRepository) *ListParticipantsUseCase {
	return &ListParticipantsUseCase{Repo: repo}
}

func (uc *ListParticipantsUseCase) Execute(ctx context.Context, roomID string) ([]string, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room_id is required")
	}
	ids, err := uc.Repo.ListParticipantIDs(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ids, nil
}
