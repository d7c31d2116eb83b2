package usecase

import (
	"context"
	"fmt"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// ListUsersUseCase returns the user directory with password hashes stripped.
type ListUsersUseCase struct {
	Repo repository.ChatRepository
}

func NewListUsersUseCase(repo repository.ChatRepository) *ListUsersUseCase {
	return &ListUsersUseCase{Repo: repo}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]chat.User, error) {
	users, err := uc.Repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
