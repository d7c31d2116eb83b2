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

// LoginController handles credential verification and token issuance.
type LoginController struct {
	UC *usecase.LoginUseCase
}

func NewLoginController(pool *pgxpool.Pool, authSvc *auth.Service) *LoginController {
	repo := adapter.NewPgChatRepository(pool)
	return &LoginController{UC: usecase.NewLoginUseCase(repo, authSvc)}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *LoginController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "login successful",
			"token":   out.Token,
			"user":    toUserPayload(out.User),
		})
	}
}
