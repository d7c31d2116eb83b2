package repository

import (
	"context"
	"errors"
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
)

// ErrNotFound signals that the requested row does not exist. Callers decide
// whether absence is an error (lookups) or just "offline"/"no-op" (presence).
var ErrNotFound = errors.New("repository: not found")

// ErrConflict signals a lost unique-insert race (e.g. two concurrent creates
// of the same private room). Callers re-fetch and use the winner's row.
var ErrConflict = errors.New("repository: conflict")

// ChatRepository defines persistence operations for the chat domain.
type ChatRepository interface {
	// Messages
	SaveMessage(ctx context.Context, m chat.Message) (string, error)
	ListMessagesByRoom(ctx context.Context, roomID string, limit int, offset int) ([]chat.Message, error)

	// Rooms
	CreateRoom(ctx context.Context, r chat.Room) (string, error)
	GetRoom(ctx context.Context, roomID string) (*chat.Room, error)
	ListPublicRooms(ctx context.Context) ([]chat.Room, error)
	FindRoomByPairingKey(ctx context.Context, key string) (*chat.Room, error)
	FindRoomsByParticipant(ctx context.Context, userID string) ([]chat.Room, error)
	AddParticipant(ctx context.Context, roomID string, userID string) error
	ListParticipantIDs(ctx context.Context, roomID string) ([]string, error)
	IsParticipant(ctx context.Context, roomID string, userID string) (bool, error)

	// Users
	CreateUser(ctx context.Context, u chat.User) (string, error)
	FindUserByID(ctx context.Context, id string) (*chat.User, error)
	FindUserByUsername(ctx context.Context, username string) (*chat.User, error)
	ListUsers(ctx context.Context) ([]chat.User, error)
	UpdateUserStatus(ctx context.Context, userID string, status string, lastSeen time.Time) error
}
