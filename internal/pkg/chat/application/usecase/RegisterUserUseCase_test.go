package usecase

import (
	"context"
	"errors"
	"testing"

	"chatwire/internal/pkg/chat/application/auth"
	chat "chatwire/internal/pkg/chat/application/domain"
)

func TestRegisterUserIssuesVerifiableToken(t *testing.T) {
	repo := newFakeRepo()
	authSvc := auth.NewService("test-secret")
	uc := NewRegisterUserUseCase(repo, authSvc)

	out, err := uc.Execute(context.Background(), RegisterUserInput{Username: "  alice  ", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.User.Username != "alice" {
		t.Fatalf("Username = %q, want trimmed", out.User.Username)
	}
	if out.User.PasswordHash != "" {
		t.Fatal("password hash leaked from register")
	}

	subject, err := authSvc.VerifyToken(out.Token)
	if err != nil || subject != out.User.ID {
		t.Fatalf("VerifyToken = %q, %v; want the new user id", subject, err)
	}

	// Stored hash must validate the original password.
	stored, err := repo.FindUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindUserByUsername: %v", err)
	}
	if err := authSvc.CheckPassword(stored.PasswordHash, "hunter2"); err != nil {
		t.Fatalf("stored hash rejects the password: %v", err)
	}
}

func TestRegisterUserDuplicateUsername(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(chat.User{Username: "alice"})
	uc := NewRegisterUserUseCase(repo, auth.NewService("test-secret"))

	_, err := uc.Execute(context.Background(), RegisterUserInput{Username: "alice", Password: "hunter2"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestLoginVerifiesCredentials(t *testing.T) {
	repo := newFakeRepo()
	authSvc := auth.NewService("test-secret")
	hash, err := authSvc.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	alice := repo.addUser(chat.User{Username: "alice", PasswordHash: hash, Status: chat.StatusOffline})
	uc := NewLoginUseCase(repo, authSvc)

	out, err := uc.Execute(context.Background(), LoginInput{Username: "alice", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.User.PasswordHash != "" {
		t.Fatal("password hash leaked from login")
	}
	if out.User.Status != chat.StatusOnline {
		t.Fatalf("Status = %q, want online after login", out.User.Status)
	}
	subject, err := authSvc.VerifyToken(out.Token)
	if err != nil || subject != alice.ID {
		t.Fatalf("VerifyToken = %q, %v; want alice's id", subject, err)
	}

	_, err = uc.Execute(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}

	// Unknown users and wrong passwords are indistinguishable.
	_, err = uc.Execute(context.Background(), LoginInput{Username: "ghost", Password: "hunter2"})
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}
