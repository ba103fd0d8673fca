package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/segni49/plugpost/internal/cache"
	"github.com/segni49/plugpost/internal/config"
	"github.com/segni49/plugpost/internal/engine"
	"github.com/segni49/plugpost/internal/handler"
	"github.com/segni49/plugpost/internal/repository"
	"github.com/segni49/plugpost/internal/router"
	"github.com/segni49/plugpost/internal/service"
	"github.com/segni49/plugpost/seeds"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "plugpost-recommender").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse database config")
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("database not ready")
	}
	logger.Info().Msg("connected to PostgreSQL")

	// ------------ Migrations ---------------
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := runMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate down")
		}
		logger.Info().Msg("migrations dropped")
		return
	}
	if err := runMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate up")
	}

	// ------------ Seed Data ---------------
	if err := checkSeed(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed")
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// ------------ Wiring ---------------
	repo := repository.New(pool, cfg.Scoring)
	contents := cache.NewContentCache(redisClient, repo, cfg.CacheTTL)
	batches := cache.NewCooldownCache(redisClient, repo, cfg.Scoring.CooldownWindow)
	if err := contents.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, caches fall through to postgres")
	}
	eng := engine.New(repo, contents, batches, repo, cfg.Scoring, logger)
	svc := service.New(eng, repo, cfg.Scoring.EnrichConcurrency, logger)
	h := handler.NewHandler(svc)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.Setup(h),
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logger.Info().Int("attempt", i+1).Msg("waiting for database")
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return fmt.Errorf("check posts count: %w", err)
	}
	if count > 0 {
		logger.Info().Int("posts", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool)
}
