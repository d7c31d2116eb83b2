package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	RoomID      string
	SenderID    string
	Content     string
	IsPrivate   bool
	RecipientID *string
	FileURL     *string
}

// SendMessageUseCase validates membership and persists a new message.
// Hexagonal: depends on repository port, returns domain entity.
type SendMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewSendMessageUseCase(repo repository.ChatRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.RoomID == "" || in.SenderID == "" {
		return nil, fmt.Errorf("room_id and sender_id are required")
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.RoomID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	msg, err := chat.NewMessage(chat.Message{
		RoomID:      in.RoomID,
		SenderID:    in.SenderID,
		Content:     in.Content,
		IsPrivate:   in.IsPrivate,
		RecipientID: in.RecipientID,
		FileURL:     in.FileURL,
	})
	if err != nil {
		return nil, err
	}

	// Persist letting the store generate the id.
	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id
	return msg, nil
}
