package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/saapai/jarvis-sub001/common/id"
	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/common/otel"
	"github.com/saapai/jarvis-sub001/core/config"
	"github.com/saapai/jarvis-sub001/core/db"
	"github.com/saapai/jarvis-sub001/internal/http/middleware"
	httprouter "github.com/saapai/jarvis-sub001/internal/http/router"
	"github.com/saapai/jarvis-sub001/internal/search"
	"github.com/saapai/jarvis-sub001/internal/service"
	"github.com/saapai/jarvis-sub001/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
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

	slog.InfoContext(ctx, "jarvis starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
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

	classifierLLM, err := llm.New(llm.Config{
		APIKey:  cfg.ClassifierLLM.APIKey,
		BaseURL: cfg.ClassifierLLM.BaseURL,
		Model:   cfg.ClassifierLLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to build classifier model client", "error", err)
		os.Exit(1)
	}

	personalityLLM, err := llm.New(llm.Config{
		APIKey:  cfg.PersonalityLLM.APIKey,
		BaseURL: cfg.PersonalityLLM.BaseURL,
		Model:   cfg.PersonalityLLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to build personality model client", "error", err)
		os.Exit(1)
	}

	embedder, err := llm.NewEmbedder(llm.EmbedderConfig{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to build embedding client", "error", err)
		os.Exit(1)
	}

	cache, err := buildVectorCache(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build embedding cache", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Pool())

	services := service.New(cfg, service.Deps{
		Stores:         stores,
		Tx:             service.NewTxRunner(database),
		ClassifierLLM:  classifierLLM,
		PersonalityLLM: personalityLLM,
		Embedder:       search.NewCachedEmbedder(embedder, cache),
		Sender:         service.NewHTTPSender(cfg.Sender),
	})

	retentionCtx, stopRetention := context.WithCancel(ctx)
	defer stopRetention()
	go services.Retention.Start(retentionCtx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// Order matters: OTel creates span, Recovery catches panics, Logger
	// logs with trace context.
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	httprouter.SetupRoutes(router, services, cfg)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
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
	stopRetention()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// buildVectorCache prefers redis; without a configured URL the embedding
// cache is an in-process LRU, which is fine for a single replica.
func buildVectorCache(ctx context.Context, cfg config.Config) (search.VectorCache, error) {
	if cfg.Redis.URL == "" {
		return search.NewMemoryCache(1024)
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected")
	return search.NewRedisCache(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL), nil
}

const banner = `
     ██╗ █████╗ ██████╗ ██╗   ██╗██╗███████╗
     ██║██╔══██╗██╔══██╗██║   ██║██║██╔════╝
     ██║███████║██████╔╝██║   ██║██║███████╗
██   ██║██╔══██║██╔══██╗╚██╗ ██╔╝██║╚════██║
╚█████╔╝██║  ██║██║  ██║ ╚████╔╝ ██║███████║
 ╚════╝ ╚═╝  ╚═╝╚═╝  ╚═╝  ╚═══╝  ╚═╝╚══════╝
`
