package chat

import "errors"

// Domain-level errors for chat behaviors
var (
	ErrMissingIdentity = errors.New("chat: room_id and sender_id are required")
	ErrEmptyMessage    = errors.New("chat: empty message (no content or file)")
	ErrNotParticipant  = errors.New("chat: user is not a participant in the room")
	ErrSelfPrivateChat = errors.New("chat: private chat requires two distinct users")
)
