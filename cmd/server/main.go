package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"taskdeck.app/assistant/common/id"
	"taskdeck.app/assistant/common/llm"
	"taskdeck.app/assistant/common/logger"
	"taskdeck.app/assistant/common/otel"
	"taskdeck.app/assistant/core/config"
	"taskdeck.app/assistant/core/db"
	"taskdeck.app/assistant/internal/assistant"
	"taskdeck.app/assistant/internal/http/middleware"
	httprouter "taskdeck.app/assistant/internal/http/router"
	"taskdeck.app/assistant/internal/repository"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "assistant starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)

	ids, err := id.NewGenerator(1)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected")

	stores := repository.NewStores(database, ids)
	transcripts := assistant.NewRedisTranscriptStore(redisClient)

	// No API key means no client: sessions stay alive and report the
	// missing configuration per turn instead of crashing at boot.
	var agentClient llm.AgentClient
	var transcriber llm.Transcriber
	if cfg.AssistantLLM.Enabled() {
		agentClient, err = llm.NewAgentClient(llm.Config{
			APIKey:    cfg.AssistantLLM.APIKey,
			BaseURL:   cfg.AssistantLLM.BaseURL,
			Model:     cfg.AssistantLLM.Model,
			MaxTokens: cfg.AssistantLLM.MaxTokens,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create llm client", "error", err)
			os.Exit(1)
		}

		transcriber, err = llm.NewTranscriber(llm.TranscriberConfig{
			APIKey:   cfg.AssistantLLM.APIKey,
			BaseURL:  cfg.AssistantLLM.BaseURL,
			Model:    cfg.Transcribe.Model,
			Language: cfg.Transcribe.Language,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create transcriber", "error", err)
			os.Exit(1)
		}
	} else {
		slog.WarnContext(ctx, "assistant llm not configured, turns will report a configuration error")
	}

	manager := assistant.NewManager(cfg.AssistantLLM, agentClient, stores, transcripts, ids)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, manager, transcriber)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Write timeout has headroom for a full multi-round assistant turn.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 4 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	// Flush debounced transcript writes before the stores go away.
	manager.Shutdown()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, manager *assistant.Manager, transcriber llm.Transcriber) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, manager, transcriber)

	return router
}
