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

// ListUsersController serves the user directory (password hashes stripped).
type ListUsersController struct {
	UC *usecase.ListUsersUseCase
}

func NewListUsersController(pool *pgxpool.Pool) *ListUsersController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListUsersController{UC: usecase.NewListUsersUseCase(repo)}
}

func (h *ListUsersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		users, err := h.UC.Execute(ctx)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]userPayload, 0, len(users))
		for _, u := range users {
			out = append(out, toUserPayload(u))
		}
		c.JSON(http.StatusOK, out)
	}
}
