package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// CreateRoomInput carries the data to open a new public room. Room names are
// display-only: duplicates are allowed, rooms are keyed by id.
type CreateRoomInput struct {
	Name      string
	CreatorID string
}

// CreateRoomUseCase persists a public room with the creator as its first
// participant. One class per use case (own file).
type CreateRoomUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateRoomUseCase(repo repository.ChatRepository) *CreateRoomUseCase {
	return &CreateRoomUseCase{Repo: repo}
}

func (uc *CreateRoomUseCase) Execute(ctx context.Context, in CreateRoomInput) (*chat.Room, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.CreatorID == "" {
		return nil, fmt.Errorf("name and creator_id are required")
	}

	room := chat.Room{
		Name:           name,
		IsPrivate:      false,
		ParticipantIDs: []string{in.CreatorID},
		CreatedAt:      time.Now().UTC(),
	}
	id, err := uc.Repo.CreateRoom(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	room.ID = id
	return &room, nil
}
