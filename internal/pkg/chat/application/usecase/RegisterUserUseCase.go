package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatwire/internal/pkg/chat/application/auth"
	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// RegisterUserInput carries the data needed to create an account.
type RegisterUserInput struct {
	Username string
	Password string
}

// RegisterUserOutput returns the created user plus its session token.
type RegisterUserOutput struct {
	User  chat.User
	Token string
}

// RegisterUserUseCase creates a new account and issues a session token.
// Hexagonal: depends on repository port and auth service only.
type RegisterUserUseCase struct {
	Repo repository.ChatRepository
	Auth *auth.Service
}

func NewRegisterUserUseCase(repo repository.ChatRepository, authSvc *auth.Service) *RegisterUserUseCase {
	return &RegisterUserUseCase{Repo: repo, Auth: authSvc}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, in RegisterUserInput) (*RegisterUserOutput, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	if _, err := uc.Repo.FindUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	hash, err := uc.Auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := chat.User{
		Username:     username,
		PasswordHash: hash,
		Status:       chat.StatusOffline,
		LastSeen:     time.Now().UTC(),
	}
	id, err := uc.Repo.CreateUser(ctx, user)
	if err != nil {
		// A concurrent registration of the same username surfaces here.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	user.ID = id
	user.PasswordHash = ""

	token, err := uc.Auth.IssueToken(id)
	if err != nil {
		return nil, err
	}
	return &RegisterUserOutput{User: user, Token: token}, nil
}
