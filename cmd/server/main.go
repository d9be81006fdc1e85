package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"updoot/internal/app"
	"updoot/internal/config"
	"updoot/internal/logging"
	"updoot/internal/metrics"
	"updoot/internal/postgres"
	"updoot/internal/redis"
	"updoot/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func runGracefulShutdown(cfg *config.Config, srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	ctx := context.Background()
	pool := setupDB(ctx, cfg)
	defer pool.Close()

	// Rate limiting is optional; without Redis every vote is admitted.
	var rdb *goredis.Client
	var limiter app.RateLimiter
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		rdb = client
		defer func() { _ = rdb.Close() }()
		limiter = redis.NewVoteRateLimiter(rdb, clock, cfg.VoteRateLimitCapacity, cfg.VoteRateLimitPerMin)
	}

	registry := metrics.NewRegistry()
	voteMetrics := metrics.NewVoteMetrics(registry)
	feedMetrics := metrics.NewFeedMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	postRepo := postgres.NewPostRepo(pool)
	voteRepo := postgres.NewVoteRepo(pool, cfg.VoteLockTimeout)

	appSvc := app.NewService(
		postRepo, voteRepo, limiter, clock,
		cfg.VoteRetryAttempts, cfg.VoteRetryBackoff,
		voteMetrics, feedMetrics,
	)

	srv := server.NewServer(cfg, appSvc, pool, rdb, registry, httpMetrics)
	done := runGracefulShutdown(cfg, srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
