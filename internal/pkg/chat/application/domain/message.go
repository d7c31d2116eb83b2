package chat

import (
	"strings"
	"time"
)

// Message is an immutable, append-only log entry in a room. Creation order in
// storage defines canonical history order; live fan-out carries no ordering
// guarantee across recipients.
type Message struct {
	ID          string    `db:"id"`
	RoomID      string    `db:"room_id"`
	SenderID    string    `db:"sender_id"`
	Content     string    `db:"content"`
	IsPrivate   bool      `db:"is_private"`
	RecipientID *string   `db:"recipient_id"`
	FileURL     *string   `db:"file_url"`
	CreatedAt   time.Time `db:"created_at"`
}

// NewMessage validates and normalizes a message before persistence.
// A message with only a file URL and empty content is content-bearing.
func NewMessage(m Message) (*Message, error) {
	if m.RoomID == "" || m.SenderID == "" {
		return nil, ErrMissingIdentity
	}

	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" && m.FileURL == nil {
		return nil, ErrEmptyMessage
	}

	if !m.IsPrivate {
		m.RecipientID = nil
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return &m, nil
}
