package http

import (
	cacheport "chatwire/internal/infrastructure/cache/port"
	qport "chatwire/internal/infrastructure/queue/port"
	"chatwire/internal/infrastructure/realtime"
	"chatwire/internal/pkg/chat/application/auth"
	"chatwire/internal/pkg/chat/application/usecase"
	"chatwire/internal/pkg/chat/persistence/repository/adapter"
	"chatwire/internal/pkg/chat/presentation/controller"
	"chatwire/internal/pkg/chat/presentation/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Deps bundles the shared infrastructure handed down from main.
type Deps struct {
	Pool      *pgxpool.Pool
	Cache     cacheport.Cache // nil disables the profile cache
	Queue     qport.Client    // nil disables offline notifications
	Registry  *realtime.Registry
	Typing    *realtime.Typing
	Auth      *auth.Service
	Logger    zerolog.Logger
	UploadDir string
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	repo := adapter.NewPgChatRepository(deps.Pool)
	getUserUC := usecase.NewGetUserUseCase(repo, deps.Cache)

	registerCtl := controller.NewRegisterController(deps.Pool, deps.Auth)
	loginCtl := controller.NewLoginController(deps.Pool, deps.Auth)
	listRoomsCtl := controller.NewListRoomsController(deps.Pool)
	createRoomCtl := controller.NewCreateRoomController(deps.Pool, deps.Registry, deps.Logger)
	getMessagesCtl := controller.NewGetMessagesController(deps.Pool, getUserUC)
	listUsersCtl := controller.NewListUsersController(deps.Pool)
	uploadCtl := controller.NewUploadController(deps.UploadDir)
	socketCtl := controller.NewChatSocketController(
		deps.Pool, deps.Registry, deps.Typing, deps.Auth, deps.Queue, getUserUC, deps.Logger)

	g.POST("/register", registerCtl.Handle())
	g.POST("/login", loginCtl.Handle())

	authed := g.Group("", middleware.RequireAuth(deps.Auth))
	authed.GET("/rooms", listRoomsCtl.Handle())
	authed.POST("/rooms", createRoomCtl.Handle())
	authed.GET("/rooms/:roomId/messages", getMessagesCtl.Handle())
	authed.GET("/users", listUsersCtl.Handle())
	authed.POST("/upload", uploadCtl.Handle())

	// The websocket endpoint authenticates via handshake token itself.
	g.GET("/ws", socketCtl.Handle())
}
