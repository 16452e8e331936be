package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/bookhive/bookhive-api/internal/api"
	"github.com/bookhive/bookhive-api/internal/api/handler"
	"github.com/bookhive/bookhive-api/internal/core/ports"
	"github.com/bookhive/bookhive-api/internal/core/service"
	"github.com/bookhive/bookhive-api/internal/infrastructure/db/mongo"
	"github.com/bookhive/bookhive-api/internal/infrastructure/db/postgres"
	redisdb "github.com/bookhive/bookhive-api/internal/infrastructure/db/redis"
	"github.com/bookhive/bookhive-api/internal/infrastructure/security"
	"github.com/bookhive/bookhive-api/internal/pkg/config"
	"github.com/bookhive/bookhive-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWith(cmd.Context(), envconfig.OsLookuper())
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "bookhive",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	err = connectWithRetry(ctx, log, "redis", connectAttempts, connectBackoff, func(ctx context.Context) error {
		var err error
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		return err
	})
	if err != nil {
		return oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
	}
	defer rdb.Close()

	checks := map[string]handler.Pinger{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	users, closeStore, err := openUserStore(ctx, log, cfg, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	codec := security.NewJWTCodec(cfg.Auth.SecretKey, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(
		users,
		redisdb.NewSessionStore(rdb),
		hasher,
		codec,
		codec.TTL(),
		logger.Component("auth"),
	)

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		ReadyChecks: checks,
		PasswordPolicy: handler.PasswordPolicy{
			MinLength: cfg.Auth.PasswordMinLength,
			MaxLength: cfg.Auth.PasswordMaxLength,
		},
		Logger: logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("user_store", cfg.Store).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// openUserStore connects the configured user directory and registers its
// readiness check.
func openUserStore(ctx context.Context, log zerolog.Logger, cfg *config.Config, checks map[string]handler.Pinger) (ports.UserRepository, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		var pool *pgxpool.Pool
		err := connectWithRetry(ctx, log, "postgres", connectAttempts, connectBackoff, func(ctx context.Context) error {
			var err error
			pool, err = postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
			return err
		})
		if err != nil {
			return nil, nil, oops.Code("DB_CONNECT_FAILED").With("store", cfg.Store).Wrap(err)
		}
		checks["postgres"] = pool.Ping
		return postgres.NewUserRepository(pool), pool.Close, nil

	default:
		var (
			client *mongodrv.Client
			db     *mongodrv.Database
		)
		err := connectWithRetry(ctx, log, "mongodb", connectAttempts, connectBackoff, func(ctx context.Context) error {
			var err error
			client, db, err = mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
			return err
		})
		if err != nil {
			return nil, nil, oops.Code("DB_CONNECT_FAILED").With("store", cfg.Store).Wrap(err)
		}

		repo := mongo.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, oops.Code("DB_INDEX_FAILED").Wrap(err)
		}

		checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	}
}
