package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := NewService("secret")
	hash, err := svc.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}
	if err := svc.CheckPassword(hash, "hunter2"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("secret")
	token, err := svc.IssueToken("user-42")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	subject, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if subject != "user-42" {
		t.Fatalf("subject = %q, want user-42", subject)
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	svc := NewService("secret")
	token, err := svc.IssueToken("user-42")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"truncated": token[:len(token)-5],
	}
	for name, tok := range cases {
		if _, err := svc.VerifyToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s token err = %v, want ErrInvalidToken", name, err)
		}
	}

	// Signed with a different secret.
	other := NewService("other-secret")
	foreign, err := other.IssueToken("user-42")
	if err != nil {
		t.Fatalf("IssueToken (other): %v", err)
	}
	if _, err := svc.VerifyToken(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token err = %v, want ErrInvalidToken", err)
	}

	// Tampered payload.
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := svc.VerifyToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token err = %v, want ErrInvalidToken", err)
	}
}
