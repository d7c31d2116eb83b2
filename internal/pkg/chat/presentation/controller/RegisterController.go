package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chatwire/internal/pkg/chat/application/auth"
	"chatwire/internal/pkg/chat/application/usecase"
	"chatwire/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterController handles account creation (one controller per endpoint)
type RegisterController struct {
	UC *usecase.RegisterUserUseCase
}

func NewRegisterController(pool *pgxpool.Pool, authSvc *auth.Service) *RegisterController {
	repo := adapter.NewPgChatRepository(pool)
	return &RegisterController{UC: usecase.NewRegisterUserUseCase(repo, authSvc)}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *RegisterController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.RegisterUserInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrUsernameTaken):
				c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "user registered successfully",
			"token":   out.Token,
			"user":    toUserPayload(out.User),
		})
	}
}
