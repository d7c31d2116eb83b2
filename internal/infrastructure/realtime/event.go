package realtime

import "encoding/json"

// Wire event names shared by the gateway and the coordination components.
// Inbound and outbound frames use the same envelope: {"event": ..., "data": ...}.
const (
	EventConnected       = "connected"
	EventError           = "error"
	EventJoinRoom        = "join-room"
	EventSendMessage     = "send-message"
	EventTyping          = "typing"
	EventInitPrivateChat = "init-private-chat"

	EventNewMessage       = "new-message"
	EventRoomCreated      = "room-created"
	EventRoomUpdated      = "room-updated"
	EventUserStatusChange = "user-status-change"
	EventUserTyping       = "user-typing"
	EventPrivateChatInit  = "private-chat-initialized"
	EventJoinPrivateChat  = "join-private-chat"
)

// Event is the envelope for every frame on the wire.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// EncodeEvent marshals an event envelope for delivery.
func EncodeEvent(name string, data any) ([]byte, error) {
	return json.Marshal(Event{Name: name, Data: data})
}

// StatusChangePayload is broadcast to every live connection on a presence
// transition.
type StatusChangePayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// TypingPayload is broadcast to a room when a member starts or stops typing.
type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}
