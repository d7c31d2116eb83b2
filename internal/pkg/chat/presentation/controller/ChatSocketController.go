package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	qport "chatwire/internal/infrastructure/queue/port"
	"chatwire/internal/infrastructure/realtime"
	"chatwire/internal/pkg/chat/application/auth"
	chat "chatwire/internal/pkg/chat/application/domain"
	"chatwire/internal/pkg/chat/application/task"
	"chatwire/internal/pkg/chat/application/usecase"
	repoAdapter "chatwire/internal/pkg/chat/persistence/repository/adapter"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const defaultReadTimeout = 60 * time.Second

// ChatSocketController is the session gateway: it authenticates an incoming
// websocket, registers the connection, auto-joins the user's rooms and
// dispatches every command frame to the coordination components. A session
// moves through connecting -> authenticated -> active -> disconnected; the
// terminal transition unwinds registry, presence and typing state in that
// order, best effort.
type ChatSocketController struct {
	registry *realtime.Registry
	typing   *realtime.Typing
	authSvc  *auth.Service
	queue    qport.Client // nil disables offline notifications
	logger   zerolog.Logger

	sendMessageUC  *usecase.SendMessageUseCase
	joinRoomUC     *usecase.JoinRoomUseCase
	initPrivateUC  *usecase.InitPrivateChatUseCase
	userRoomsUC    *usecase.ListUserRoomsUseCase
	participantsUC *usecase.ListParticipantsUseCase
	getUserUC      *usecase.GetUserUseCase

	inflightTimeout time.Duration
}

func NewChatSocketController(
	pool *pgxpool.Pool,
	registry *realtime.Registry,
	typing *realtime.Typing,
	authSvc *auth.Service,
	queue qport.Client,
	getUserUC *usecase.GetUserUseCase,
	logger zerolog.Logger,
) *ChatSocketController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &ChatSocketController{
		registry:        registry,
		typing:          typing,
		authSvc:         authSvc,
		queue:           queue,
		logger:          logger,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo),
		joinRoomUC:      usecase.NewJoinRoomUseCase(repo),
		initPrivateUC:   usecase.NewInitPrivateChatUseCase(repo),
		userRoomsUC:     usecase.NewListUserRoomsUseCase(repo),
		participantsUC:  usecase.NewListParticipantsUseCase(repo),
		getUserUC:       getUserUC,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Token auth gates the session; origin filtering is left to the proxy.
		return true
	},
}

type errorFrame struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type sendMessageData struct {
	Content     string  `json:"content"`
	RoomID      string  `json:"roomId"`
	IsPrivate   bool    `json:"isPrivate"`
	RecipientID *string `json:"recipientId"`
	FileURL     *string `json:"fileUrl"`
}

// Handle upgrades the HTTP connection and runs the session until the client
// disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ctl.authenticate(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication error"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()
		ctl.registry.Attach(conn)
		defer func() {
			ctl.registry.Detach(conn)
			ctl.typing.ClearUser(userID)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ctl.autoJoinRooms(conn)

		if payload, err := realtime.EncodeEvent(realtime.EventConnected, nil); err == nil {
			_ = conn.Send(payload)
		}

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.logger.Debug().Err(err).Str("user_id", userID).Msg("read loop ended")
				return
			}

			switch gjson.GetBytes(data, "event").String() {
			case realtime.EventJoinRoom:
				ctl.handleJoinRoom(c, conn, data)
			case realtime.EventSendMessage:
				ctl.handleSendMessage(c, conn, data)
			case realtime.EventTyping:
				ctl.handleTyping(conn, data)
			case realtime.EventInitPrivateChat:
				ctl.handleInitPrivateChat(c, conn, data)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown event")
			}
		}
	}
}

// authenticate resolves the user id from the handshake token (query param or
// Authorization header).
func (ctl *ChatSocketController) authenticate(c *gin.Context) (string, error) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		token, _ = strings.CutPrefix(header, "Bearer ")
	}
	return ctl.authSvc.VerifyToken(token)
}

// autoJoinRooms indexes the fresh connection into every room its user already
// participates in, so history and live traffic line up without an explicit
// join from the client.
func (ctl *ChatSocketController) autoJoinRooms(conn *realtime.Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
	defer cancel()

	rooms, err := ctl.userRoomsUC.Execute(ctx, conn.UserID)
	if err != nil {
		ctl.logger.Warn().Err(err).Str("user_id", conn.UserID).Msg("auto-join skipped")
		return
	}
	for _, room := range rooms {
		ctl.registry.Join(room.ID, conn)
	}
}

func (ctl *ChatSocketController) handleJoinRoom(c *gin.Context, conn *realtime.Connection, data []byte) {
	roomID := gjson.GetBytes(data, "data.roomId").String()
	if roomID == "" {
		ctl.replyError(conn, "bad_request", "roomId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	room, err := ctl.joinRoomUC.Execute(ctx, usecase.JoinRoomInput{
		RoomID: roomID,
		UserID: conn.UserID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	ctl.registry.Join(room.ID, conn)

	if payload, err := realtime.EncodeEvent(realtime.EventRoomUpdated, toRoomPayload(*room)); err == nil {
		ctl.registry.Broadcast(room.ID, payload, "")
	}
}

func (ctl *ChatSocketController) handleSendMessage(c *gin.Context, conn *realtime.Connection, data []byte) {
	var req sendMessageData
	if err := json.Unmarshal([]byte(gjson.GetBytes(data, "data").Raw), &req); err != nil {
		ctl.replyError(conn, "bad_request", "invalid payload")
		return
	}
	if req.RoomID == "" {
		ctl.replyError(conn, "bad_request", "roomId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	msg, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		RoomID:      req.RoomID,
		SenderID:    conn.UserID,
		Content:     req.Content,
		IsPrivate:   req.IsPrivate,
		RecipientID: req.RecipientID,
		FileURL:     req.FileURL,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	sender := ctl.resolveSender(ctx, conn.UserID)
	payload, err := realtime.EncodeEvent(realtime.EventNewMessage, toMessagePayload(*msg, sender))
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode message")
		return
	}

	// The sender is joined to the room, so fan-out covers their own echo.
	ctl.registry.Broadcast(msg.RoomID, payload, "")

	ctl.notifyOfflineParticipants(ctx, msg)
}

func (ctl *ChatSocketController) handleTyping(conn *realtime.Connection, data []byte) {
	roomID := gjson.GetBytes(data, "data.roomId").String()
	if roomID == "" {
		ctl.replyError(conn, "bad_request", "roomId is required")
		return
	}
	isTyping := gjson.GetBytes(data, "data.isTyping").Bool()
	ctl.typing.SetTyping(roomID, conn.UserID, isTyping)
}

func (ctl *ChatSocketController) handleInitPrivateChat(c *gin.Context, conn *realtime.Connection, data []byte) {
	otherUserID := gjson.GetBytes(data, "data.otherUserId").String()
	if otherUserID == "" {
		ctl.replyError(conn, "bad_request", "otherUserId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	out, err := ctl.initPrivateUC.Execute(ctx, usecase.InitPrivateChatInput{
		UserID:      conn.UserID,
		OtherUserID: otherUserID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}
	room := out.Room

	ctl.registry.Join(room.ID, conn)

	// If the peer is online, index their session into the room too and tell
	// their client which room to open.
	if otherConn, ok := ctl.registry.Lookup(otherUserID); ok {
		ctl.registry.Join(room.ID, otherConn)
		if payload, err := realtime.EncodeEvent(realtime.EventJoinPrivateChat, gin.H{"roomId": room.ID}); err == nil {
			_ = otherConn.Send(payload)
		}
	}

	if payload, err := realtime.EncodeEvent(realtime.EventPrivateChatInit, toRoomPayload(room)); err == nil {
		_ = conn.Send(payload)
	}
}

// notifyOfflineParticipants enqueues a background notification for room
// participants without a live socket. Best effort: a queue failure never
// affects the delivered message.
func (ctl *ChatSocketController) notifyOfflineParticipants(ctx context.Context, msg *chat.Message) {
	if ctl.queue == nil {
		return
	}

	participants, err := ctl.participantsUC.Execute(ctx, msg.RoomID)
	if err != nil {
		ctl.logger.Warn().Err(err).Str("room_id", msg.RoomID).Msg("offline notify skipped")
		return
	}

	var offline []string
	for _, id := range participants {
		if id == msg.SenderID || ctl.registry.IsOnline(id) {
			continue
		}
		offline = append(offline, id)
	}
	if len(offline) == 0 {
		return
	}

	payload, err := json.Marshal(task.NotifyOfflinePayload{
		MessageID:    msg.ID,
		RoomID:       msg.RoomID,
		SenderID:     msg.SenderID,
		RecipientIDs: offline,
	})
	if err != nil {
		return
	}
	_, err = ctl.queue.Enqueue(ctx,
		qport.Task{Type: task.NotifyOfflineTaskType, Payload: payload},
		qport.EnqueueOption{Queue: "chat", MaxRetry: 5},
	)
	if err != nil {
		ctl.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("offline notify enqueue failed")
	}
}

// resolveSender populates sender info through the profile cache; failures
// degrade to a bare id rather than dropping the message.
func (ctl *ChatSocketController) resolveSender(ctx context.Context, senderID string) chat.User {
	if user, err := ctl.getUserUC.Execute(ctx, senderID); err == nil {
		return *user
	}
	return chat.User{ID: senderID}
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, chat.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a participant in this room")
	case errors.Is(err, repository.ErrNotFound):
		ctl.replyError(conn, "not_found", "room or user not found")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	if payload, err := realtime.EncodeEvent(realtime.EventError, errorFrame{Code: code, Error: message}); err == nil {
		_ = conn.Send(payload)
	}
}
