// Command api serves the Voyage charter API.
//
//	@title						Voyage API
//	@version					1.0
//	@description				Yacht charter back end: auth, yachts, customers, charters and users.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
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

	"github.com/rs/zerolog"

	"github.com/tsmart/voyage-api/internal/api"
	"github.com/tsmart/voyage-api/internal/api/handler"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/internal/infrastructure/datastore/memory"
	mongostore "github.com/tsmart/voyage-api/internal/infrastructure/datastore/mongo"
	"github.com/tsmart/voyage-api/internal/infrastructure/datastore/rest"
	"github.com/tsmart/voyage-api/internal/infrastructure/redis"
	"github.com/tsmart/voyage-api/internal/infrastructure/repository"
	"github.com/tsmart/voyage-api/internal/pkg/config"
	"github.com/tsmart/voyage-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "voyage-api:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogFormat == "pretty",
		Service: "voyage-api",
	})

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	deps := api.Deps{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		Users:     repository.NewUserRepository(store),
		Readiness: []handler.Dependency{{Name: cfg.DataStore.Driver, Pinger: store}},
	}

	if cfg.RateLimit.Backend == config.RateLimitRedis {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		limiter := redis.NewRateLimitStore(rdb)
		deps.RateLimitStore = limiter
		deps.Readiness = append(deps.Readiness, handler.Dependency{Name: "redis", Pinger: limiter})
	}

	e := api.NewRouter(deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("datastore", cfg.DataStore.Driver).
			Str("rate_limit", cfg.RateLimit.Backend).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// openStore connects the configured DATASTORE_DRIVER. The returned func
// releases its connections.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.DataStore, func(), error) {
	switch cfg.DataStore.Driver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.DataStore.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.NewStore(db, cfg.DataStore.Timeout, log)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.DriverMemory:
		log.Warn().Msg("using the in-memory data store; data is lost on restart")
		return memory.New(), func() {}, nil

	default:
		return rest.New(rest.Config{
			URL:            cfg.Supabase.URL,
			AnonKey:        cfg.Supabase.AnonKey,
			ServiceRoleKey: cfg.Supabase.ServiceRoleKey,
			Timeout:        cfg.DataStore.Timeout,
		}, log), func() {}, nil
	}
}
