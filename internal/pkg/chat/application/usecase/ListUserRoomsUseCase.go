package usecase

import (
	"context"
	"fmt"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// ListUserRoomsUseCase returns every room (public or private) the user
// participates in; the gateway auto-joins the session to all of them.
type ListUserRoomsUseCase struct {
	Repo repository.ChatRepository
}

func NewListUserRoomsUseCase(repo repository.ChatRepository) *ListUserRoomsUseCase {
	return &ListUserRoomsUseCase{Repo: repo}
}

func (uc *ListUserRoomsUseCase) Execute(ctx context.Context, userID string) ([]chat.Room, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	rooms, err := uc.Repo.FindRoomsByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rooms, nil
}
