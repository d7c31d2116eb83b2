package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chatwire/internal/infrastructure/realtime"
	"chatwire/internal/pkg/chat/application/usecase"
	"chatwire/internal/pkg/chat/persistence/repository/adapter"
	"chatwire/internal/pkg/chat/presentation/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CreateRoomController persists a new public room and announces it to every
// live connection so clients can refresh their room lists.
type CreateRoomController struct {
	UC       *usecase.CreateRoomUseCase
	registry *realtime.Registry
	logger   zerolog.Logger
}

func NewCreateRoomController(pool *pgxpool.Pool, registry *realtime.Registry, logger zerolog.Logger) *CreateRoomController {
	repo := adapter.NewPgChatRepository(pool)
	return &CreateRoomController{
		UC:       usecase.NewCreateRoomUseCase(repo),
		registry: registry,
		logger:   logger,
	}
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CreateRoomController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		room, err := h.UC.Execute(ctx, usecase.CreateRoomInput{
			Name:      req.Name,
			CreatorID: middleware.UserID(c),
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		if payload, err := realtime.EncodeEvent(realtime.EventRoomCreated, toRoomPayload(*room)); err == nil {
			h.registry.BroadcastAll(payload, "")
		} else {
			h.logger.Error().Err(err).Msg("encode room-created event")
		}

		c.JSON(http.StatusCreated, toRoomPayload(*room))
	}
}
