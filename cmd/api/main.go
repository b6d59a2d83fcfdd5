package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/ticket-board/internal/adapters/primary/http"
	mw "github.com/lorrc/ticket-board/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticket-board/internal/adapters/primary/websocket"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/memory"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/postgres"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/redis"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/remote"
	"github.com/lorrc/ticket-board/internal/auth"
	"github.com/lorrc/ticket-board/internal/config"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/services"
	"github.com/lorrc/ticket-board/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	defaults, err := cfg.Board.ViewOptions()
	if err != nil {
		return err
	}
	locale, err := cfg.Board.Language()
	if err != nil {
		return err
	}

	// 3. Initialize Snapshot Store
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Initialize Real-time Components & Core Service
	hub := websocket.NewHub(logger)
	source := remote.NewClient(cfg.Remote.URL, cfg.Remote.Timeout, logger)
	boardService := services.NewBoardService(source, store, hub, services.BoardServiceConfig{
		Defaults: defaults,
		Orderer:  domain.NewOrderer(locale),
	}, logger)
	hub.AttachViewer(boardService)
	go hub.Run(ctx)

	// The board serves the last stored snapshot when the first fetch fails.
	if _, err := boardService.Refresh(ctx); err != nil {
		logger.Warn("initial snapshot fetch failed", "error", err)
	}
	go boardService.RunRefreshLoop(ctx, cfg.Remote.RefreshInterval)

	// 5. Initialize Rate Limiters
	var generalRateLimiter, refreshRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer generalRateLimiter.Stop()

		refreshConfig := mw.RefreshRateLimiterConfig()
		refreshConfig.RequestsPerSecond = cfg.RateLimit.RefreshRPS
		refreshConfig.BurstSize = cfg.RateLimit.RefreshBurst
		refreshRateLimiter = mw.NewRateLimiter(refreshConfig)
		defer refreshRateLimiter.Stop()
	}

	var refreshGuards []func(http.Handler) http.Handler
	if refreshRateLimiter != nil {
		refreshGuards = append(refreshGuards, refreshRateLimiter.Middleware)
	}
	if cfg.RefreshProtected() {
		tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)
		refreshGuards = append(refreshGuards, mw.JWTMiddleware(tokenManager, auth.ScopeRefresh))
	} else {
		logger.Warn("JWT_SECRET is not set, board refresh is open to anyone")
	}

	// 6. Handlers (Primary Adapters)
	errorHandler := httpAdapter.NewErrorHandler(logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, boardService, httpAdapter.WebSocketConfig{
		AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		IsDevelopment:   cfg.IsDevelopment(),
	}, errorHandler, logger)
	boardHandler := httpAdapter.NewBoardHandler(boardService, refreshGuards, wsHandler, errorHandler, logger)
	pageHandler := httpAdapter.NewPageHandler(boardService, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(store, boardService, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders: []string{mw.RequestIDHeader, httpAdapter.RevisionHeader},
		MaxAge:         cfg.CORS.MaxAge,
	}))

	// Apply general rate limiting if enabled
	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	healthHandler.RegisterRoutes(r)

	pageHandler.RegisterRoutes(r)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/board", boardHandler.RegisterRoutes)
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// openStore builds the configured snapshot store and its cleanup.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.SnapshotStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(cfg.Database.URL); err != nil {
				return nil, nil, err
			}
			logger.Info("database migrations applied")
		}

		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse database URL: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database ping: %w", err)
		}
		logger.Info("database connection established")
		return postgres.NewSnapshotRepository(pool), pool.Close, nil

	case config.StoreRedis:
		opts := redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
			TTL:      cfg.Redis.TTL,
		}
		client := redis.NewClient(ctx, opts, logger)
		closeClient := func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}
		return redis.NewSnapshotStore(client, opts, logger), closeClient, nil

	default:
		logger.Info("using in-memory snapshot store")
		return memory.NewSnapshotStore(), func() {}, nil
	}
}
