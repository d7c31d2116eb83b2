package chat

import (
	"errors"
	"testing"
)

func TestNewMessageValidation(t *testing.T) {
	fileURL := "http://example.com/uploads/pic.png"
	recipient := "bob"

	t.Run("missing identity", func(t *testing.T) {
		_, err := NewMessage(Message{Content: "hi"})
		if !errors.Is(err, ErrMissingIdentity) {
			t.Fatalf("err = %v, want ErrMissingIdentity", err)
		}
	})

	t.Run("blank content", func(t *testing.T) {
		_, err := NewMessage(Message{RoomID: "r1", SenderID: "alice", Content: "   "})
		if !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("err = %v, want ErrEmptyMessage", err)
		}
	})

	t.Run("file only is content-bearing", func(t *testing.T) {
		msg, err := NewMessage(Message{RoomID: "r1", SenderID: "alice", FileURL: &fileURL})
		if err != nil {
			t.Fatalf("err = %v, want nil", err)
		}
		if msg.Content != "" || msg.FileURL == nil {
			t.Fatalf("message = %+v, want empty content with file url", msg)
		}
	})

	t.Run("trims content and stamps created at", func(t *testing.T) {
		msg, err := NewMessage(Message{RoomID: "r1", SenderID: "alice", Content: "  hello  "})
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if msg.Content != "hello" {
			t.Fatalf("Content = %q, want trimmed", msg.Content)
		}
		if msg.CreatedAt.IsZero() {
			t.Fatal("CreatedAt not defaulted")
		}
	})

	t.Run("recipient cleared on public message", func(t *testing.T) {
		msg, err := NewMessage(Message{RoomID: "r1", SenderID: "alice", Content: "hi", RecipientID: &recipient})
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if msg.RecipientID != nil {
			t.Fatalf("RecipientID = %v on a public message, want nil", *msg.RecipientID)
		}
	})

	t.Run("recipient kept on private message", func(t *testing.T) {
		msg, err := NewMessage(Message{RoomID: "r1", SenderID: "alice", Content: "hi", IsPrivate: true, RecipientID: &recipient})
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if msg.RecipientID == nil || *msg.RecipientID != "bob" {
			t.Fatalf("RecipientID = %v, want bob", msg.RecipientID)
		}
	})
}
