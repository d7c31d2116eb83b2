package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chatwire/internal/pkg/chat/application/usecase"
	"chatwire/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListRoomsController returns all public rooms.
type ListRoomsController struct {
	UC *usecase.ListRoomsUseCase
}

func NewListRoomsController(pool *pgxpool.Pool) *ListRoomsController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListRoomsController{UC: usecase.NewListRoomsUseCase(repo)}
}

func (h *ListRoomsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		rooms, err := h.UC.Execute(ctx)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]roomPayload, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, toRoomPayload(r))
		}
		c.JSON(http.StatusOK, out)
	}
}
