package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	router "chatwire/cmd/api/router/v1"
	cacheAdapter "chatwire/internal/infrastructure/cache/adapter"
	cacheport "chatwire/internal/infrastructure/cache/port"
	"chatwire/internal/infrastructure/database"
	"chatwire/internal/infrastructure/logging"
	queueAdapter "chatwire/internal/infrastructure/queue/adapter"
	qport "chatwire/internal/infrastructure/queue/port"
	"chatwire/internal/infrastructure/realtime"
	"chatwire/internal/pkg/chat/application/auth"
	"chatwire/internal/pkg/chat/application/task"
	"chatwire/internal/pkg/chat/persistence/repository/adapter"
	httpHandler "chatwire/internal/pkg/chat/presentation/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8080"
}

func main() {
	// Load .env before flag defaults are computed; absence is fine when
	// config arrives via real env vars.
	dotenvErr := godotenv.Load()

	addr := flag.String("addr", defaultAddr(), "listen address for the HTTP server")
	logLevel := flag.String("log-level", "info", "zerolog level (trace..panic)")
	uploadDir := flag.String("upload-dir", envOr("UPLOAD_DIR", "uploads"), "directory for uploaded files")
	flag.Parse()

	logger, err := logging.New(*logLevel)
	if err != nil {
		logger, _ = logging.New("info")
		logger.Warn().Err(err).Msg("invalid log level, falling back to info")
	}

	if dotenvErr != nil {
		logger.Debug().Err(dotenvErr).Msg(".env not loaded")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal().Msg("JWT_SECRET environment variable is not set")
	}
	authSvc := auth.NewService(secret)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Redis-backed pieces degrade to nil when REDIS_URL is absent: the
	// profile cache falls back to direct reads and offline notifications
	// are skipped.
	var cache cacheport.Cache
	if rc, err := cacheAdapter.NewRedisAdapter(); err != nil {
		logger.Warn().Err(err).Msg("profile cache disabled")
	} else {
		cache = rc
		defer rc.Close()
	}

	var queueClient qport.Client
	if qc, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		logger.Warn().Err(err).Msg("offline notifications disabled")
	} else {
		queueClient = qc
		defer qc.Close()
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if queueClient != nil {
		srv, err := queueAdapter.NewAsynqServer(logging.Component(logger, "worker"))
		if err != nil {
			logger.Warn().Err(err).Msg("task worker disabled")
		} else {
			task.RegisterNotifyOfflineTask(srv, pool, logging.Component(logger, "worker"))
			go func() {
				if err := srv.Run(runCtx); err != nil {
					logger.Error().Err(err).Msg("task worker stopped")
				}
			}()
		}
	}

	registry := realtime.NewRegistry()
	repo := adapter.NewPgChatRepository(pool)
	presence := realtime.NewPresence(registry, repo, logging.Component(logger, "presence"))
	registry.SetPresenceListener(presence)
	typing := realtime.NewTyping(registry, realtime.DefaultTypingTTL, logging.Component(logger, "typing"))

	if err := os.MkdirAll(*uploadDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", *uploadDir).Msg("failed to create upload dir")
	}

	r := gin.Default()
	r.Static("/uploads", *uploadDir)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	router.RegisterRoutes(r, httpHandler.Deps{
		Pool:      pool,
		Cache:     cache,
		Queue:     queueClient,
		Registry:  registry,
		Typing:    typing,
		Auth:      authSvc,
		Logger:    logger,
		UploadDir: *uploadDir,
	})

	server := &http.Server{Addr: *addr, Handler: r}
	go func() {
		logger.Info().Str("addr", *addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-runCtx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	registry.Close()
}
