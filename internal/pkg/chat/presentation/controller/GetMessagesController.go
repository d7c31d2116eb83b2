package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
	"chatwire/internal/pkg/chat/application/usecase"
	"chatwire/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetMessagesController serves a room's chronological history. Clients fetch
// it on room entry and apply live new-message events on top.
type GetMessagesController struct {
	MessagesUC *usecase.GetMessagesUseCase
	UserUC     *usecase.GetUserUseCase
}

func NewGetMessagesController(pool *pgxpool.Pool, userUC *usecase.GetUserUseCase) *GetMessagesController {
	repo := adapter.NewPgChatRepository(pool)
	return &GetMessagesController{
		MessagesUC: usecase.NewGetMessagesUseCase(repo),
		UserUC:     userUC,
	}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
			return
		}

		limit := 50
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.MessagesUC.Execute(ctx, usecase.GetMessagesInput{
			RoomID: roomID,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]messagePayload, 0, len(msgs))
		for _, m := range msgs {
			sender := h.resolveSender(ctx, m.SenderID)
			out = append(out, toMessagePayload(m, sender))
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": out,
			"limit":    limit,
			"offset":   offset,
			"count":    len(out),
		})
	}
}

// resolveSender populates sender info through the profile cache; an unknown
// sender (deleted account) degrades to a bare id.
func (h *GetMessagesController) resolveSender(ctx context.Context, senderID string) (sender chat.User) {
	if user, err := h.UserUC.Execute(ctx, senderID); err == nil {
		return *user
	}
	sender.ID = senderID
	return sender
}
