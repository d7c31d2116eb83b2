package usecase

import (
	"context"
	"fmt"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// ListRoomsUseCase returns all public rooms with their participant sets.
type ListRoomsUseCase struct {
	Repo repository.ChatRepository
}

func NewListRoomsUseCase(repo repository.ChatRepository) *ListRoomsUseCase {
	return &ListRoomsUseCase{Repo: repo}
}

func (uc *ListRoomsUseCase) Execute(ctx context.Context) ([]chat.Room, error) {
	rooms, err := uc.Repo.ListPublicRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rooms, nil
}
