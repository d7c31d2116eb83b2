package controller

import (
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
)

// Wire DTOs shared by the HTTP controllers and the websocket gateway. Field
// names follow the client contract, not the domain structs.

type userPayload struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"lastSeen"`
}

type senderPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type roomPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsPrivate    bool      `json:"isPrivate"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

type messagePayload struct {
	ID          string        `json:"id"`
	RoomID      string        `json:"roomId"`
	Sender      senderPayload `json:"sender"`
	Content     string        `json:"content"`
	IsPrivate   bool          `json:"isPrivate"`
	RecipientID *string       `json:"recipientId,omitempty"`
	FileURL     *string       `json:"fileUrl,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func toUserPayload(u chat.User) userPayload {
	return userPayload{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Status:   string(u.Status),
		LastSeen: u.LastSeen,
	}
}

func toRoomPayload(r chat.Room) roomPayload {
	participants := r.ParticipantIDs
	if participants == nil {
		participants = []string{}
	}
	return roomPayload{
		ID:           r.ID,
		Name:         r.Name,
		IsPrivate:    r.IsPrivate,
		Participants: participants,
		CreatedAt:    r.CreatedAt,
	}
}

func toMessagePayload(m chat.Message, sender chat.User) messagePayload {
	return messagePayload{
		ID:          m.ID,
		RoomID:      m.RoomID,
		Sender:      senderPayload{ID: sender.ID, Username: sender.Username, Avatar: sender.Avatar},
		Content:     m.Content,
		IsPrivate:   m.IsPrivate,
		RecipientID: m.RecipientID,
		FileURL:     m.FileURL,
		CreatedAt:   m.CreatedAt,
	}
}
