package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/server"
	"github.com/jonathan/job-assistant/internal/server/ratelimit"
)

var (
	servePort       int
	serveRedisLimit bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the user, job application, assistant step and document endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides HTTP_PORT)")
	serveCmd.Flags().BoolVar(&serveRedisLimit, "redis-rate-limit", true, "Share rate limits through Redis when it is reachable")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if servePort != 0 {
		settings.HTTPPort = servePort
	}

	passwords, err := config.NewPasswordConfig(os.LookupEnv)
	if err != nil {
		return fmt.Errorf("failed to load password config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, settings.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	limiter := newLimiter(ctx, settings, logger)

	srv, err := server.New(server.Config{
		Store:     database,
		Settings:  settings,
		Passwords: passwords,
		Limiter:   limiter,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// loadSettings reads the configuration and builds the process logger on stderr.
func loadSettings(cmd *cobra.Command) (*config.Settings, *slog.Logger, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := settings.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)
	return settings, logger, nil
}

// newLimiter returns a Redis-backed limiter when Redis answers a ping, and an in-process
// limiter otherwise.
func newLimiter(ctx context.Context, settings *config.Settings, logger *slog.Logger) ratelimit.Allower {
	limits := ratelimit.LoadConfig(os.LookupEnv)
	if !serveRedisLimit || !limits.Enabled {
		return ratelimit.NewLimiter(limits)
	}

	client, err := newRedisClient(settings)
	if err != nil {
		logger.Warn("invalid redis configuration, using in-memory rate limits", "error", err)
		return ratelimit.NewLimiter(limits)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-memory rate limits", "error", err)
		_ = client.Close()
		return ratelimit.NewLimiter(limits)
	}

	logger.Info("using redis rate limits", "addr", client.Options().Addr)
	return ratelimit.NewRedisLimiter(client, limits, settings.AppName, logger)
}

func newRedisClient(settings *config.Settings) (*redis.Client, error) {
	opts, err := redis.ParseURL(settings.RedisURL)
	if err != nil {
		return nil, err
	}
	if settings.RedisPassword != "" {
		opts.Password = settings.RedisPassword
	}
	if settings.RedisDB != 0 {
		opts.DB = settings.RedisDB
	}
	return redis.NewClient(opts), nil
}
