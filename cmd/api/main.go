package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/event-locator/internal/application/notification"
	"github.com/event-locator/internal/config"
	"github.com/event-locator/internal/infrastructure/dynamo"
	jwtinfra "github.com/event-locator/internal/infrastructure/jwt"
	redisinfra "github.com/event-locator/internal/infrastructure/redis"
	s3infra "github.com/event-locator/internal/infrastructure/s3"
	"github.com/event-locator/internal/pkg/logger"
	transporthttp "github.com/event-locator/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	var envFile string

	app := &cli.Command{
		Name:  "event-locator",
		Usage: "Event discovery REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "path to a .env file loaded before reading configuration",
				Value:       ".env",
				Destination: &envFile,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "port",
				Usage:   "HTTP listen port",
				Sources: cli.EnvVars("APP_PORT"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "no env file at %s, reading from environment\n", envFile)
			}
			cfg := config.Load()
			if v := c.String("log-level"); v != "" {
				cfg.LogLevel = v
			}
			if v := c.String("port"); v != "" {
				cfg.AppPort = v
			}
			if err := logger.Setup(cfg.LogLevel, cfg.AppEnv); err != nil {
				return fmt.Errorf("setup logger: %w", err)
			}
			return run(ctx, cfg)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("event-locator exited")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redisinfra.NewClient(cfg)
	defer redisClient.Close()
	if err := redisinfra.Ping(ctx, redisClient); err != nil {
		return err
	}

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	notifications := notification.NewService(notification.ServiceDeps{
		KV:  redisinfra.NewKV(redisClient),
		TTL: cfg.NotificationTTL,
		Cap: cfg.NotificationCap,
	})

	deps := &transporthttp.Deps{
		UserRepo:      dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		EventRepo:     dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events),
		CategoryRepo:  dynamo.NewCategoryRepo(dynamoClient, cfg.DynamoTables.Categories),
		FavoriteRepo:  dynamo.NewFavoriteRepo(dynamoClient, cfg.DynamoTables.Favorites),
		RatingRepo:    dynamo.NewRatingRepo(dynamoClient, cfg.DynamoTables.Ratings),
		S3Store:       s3infra.NewStore(s3infra.NewClient(awsCfg, cfg), cfg.S3BucketName),
		JWTProvider:   jwtProvider,
		Notifications: notifications,
		HealthChecks: map[string]func(context.Context) error{
			"redis": func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) },
		},
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
