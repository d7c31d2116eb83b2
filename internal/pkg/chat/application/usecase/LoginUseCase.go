package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatwire/internal/pkg/chat/application/auth"
	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// LoginInput carries the credentials of a login attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput returns the authenticated user plus its session token.
type LoginOutput struct {
	User  chat.User
	Token string
}

// LoginUseCase verifies credentials, marks the user online and issues a token.
type LoginUseCase struct {
	Repo repository.ChatRepository
	Auth *auth.Service
}

func NewLoginUseCase(repo repository.ChatRepository, authSvc *auth.Service) *LoginUseCase {
	return &LoginUseCase{Repo: repo, Auth: authSvc}
}

func (uc *LoginUseCase) Execute(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	if in.Username == "" || in.Password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := uc.Repo.FindUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Auth.CheckPassword(user.PasswordHash, in.Password); err != nil {
		return nil, err
	}

	// Best effort: presence proper flips when the socket attaches.
	if err := uc.Repo.UpdateUserStatus(ctx, user.ID, string(chat.StatusOnline), time.Now().UTC()); err == nil {
		user.Status = chat.StatusOnline
	}

	token, err := uc.Auth.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginOutput{User: *user, Token: token}, nil
}
