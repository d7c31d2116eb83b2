package task

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	qport "chatwire/internal/infrastructure/queue/port"
	chat "chatwire/internal/pkg/chat/application/domain"
	repoAdapter "chatwire/internal/pkg/chat/persistence/repository/adapter"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NotifyOfflineTaskType is the queue task name for notifying room participants
// who had no live socket at fan-out time.
const NotifyOfflineTaskType = "chat:notify_offline"

// NotifyOfflinePayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type NotifyOfflinePayload struct {
	MessageID    string   `json:"messageId"`
	RoomID       string   `json:"roomId"`
	SenderID     string   `json:"senderId"`
	RecipientIDs []string `json:"recipientIds"`
}

// RegisterNotifyOfflineTask binds the task handler to the provided server.
// The handler re-checks each recipient against the store and records the
// pending notification; the actual push/email channel is a separate concern.
func RegisterNotifyOfflineTask(srv qport.Server, pool *pgxpool.Pool, logger zerolog.Logger) {
	srv.Register(NotifyOfflineTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyOfflinePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		repo := repoAdapter.NewPgChatRepository(pool)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		for _, recipientID := range p.RecipientIDs {
			user, err := repo.FindUserByID(ctx, recipientID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return err
			}
			// The recipient may have reconnected since enqueue; the live
			// socket already delivered the message in that case.
			if user.Status == chat.StatusOnline {
				continue
			}
			logger.Info().
				Str("message_id", p.MessageID).
				Str("room_id", p.RoomID).
				Str("recipient_id", recipientID).
				Time("recipient_last_seen", user.LastSeen).
				Msg("queued offline notification")
		}
		return nil
	})
}
