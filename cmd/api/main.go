// Command api serves the social graph REST API.
//
// @title        Social Graph API
// @version      1.0
// @description  Users, thoughts, reactions and friends kept consistent across documents.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/socialgraph/social-api/internal/api"
	"github.com/socialgraph/social-api/internal/api/handler"
	"github.com/socialgraph/social-api/internal/api/metrics"
	"github.com/socialgraph/social-api/internal/core/ports"
	"github.com/socialgraph/social-api/internal/core/service"
	"github.com/socialgraph/social-api/internal/infrastructure/db/memory"
	mongodb "github.com/socialgraph/social-api/internal/infrastructure/db/mongo"
	redisdb "github.com/socialgraph/social-api/internal/infrastructure/db/redis"
	"github.com/socialgraph/social-api/internal/pkg/config"
	"github.com/socialgraph/social-api/internal/pkg/validation"
	"github.com/socialgraph/social-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.ServiceName,
	})

	if err := run(ctx, cfg); err != nil {
		l := logger.Get()
		l.Fatal().Err(err).Msg("server stopped")
	}
}

type stores struct {
	users    ports.UserRepository
	thoughts ports.ThoughtRepository
	checks   map[string]handler.Pinger
	close    func(ctx context.Context)
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	mode, err := service.ParseFriendshipMode(cfg.FriendshipMode)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}

	var idempotency service.IdempotencyStore
	var rdb *goredis.Client
	if cfg.Idempotency.Enabled {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:    cfg.Redis.Addr,
			DB:      cfg.Redis.DB,
			Timeout: cfg.Redis.Timeout,
		})
		if err != nil {
			st.close(context.Background())
			return err
		}
		idempotency = redisdb.NewIdempotencyStore(rdb, cfg.Idempotency.TTL)
		st.checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisdb.Ping(ctx, rdb)
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	v := validation.New()
	rec := metrics.Recorder{}
	e := api.NewRouter(api.Dependencies{
		Users:     service.NewUserService(st.users, st.thoughts, v, rec, log),
		Friends:   service.NewFriendService(st.users, mode, rec, log),
		Thoughts:  service.NewThoughtService(st.users, st.thoughts, idempotency, v, rec, log),
		Validator: v,
		Logger:    log,
		Checks:    st.checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Str("friendship_mode", string(mode)).
			Msg("server listening")
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
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}
	st.close(shutdownCtx)
	log.Info().Msg("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return &stores{
			users:    memory.NewUserRepository(),
			thoughts: memory.NewThoughtRepository(),
			checks:   map[string]handler.Pinger{},
			close:    func(context.Context) {},
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, err
	}
	closeFn := func(ctx context.Context) {
		if err := client.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}

	users := mongodb.NewUserRepository(db)
	thoughts := mongodb.NewThoughtRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, thoughts); err != nil {
		closeFn(context.Background())
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	return &stores{
		users:    users,
		thoughts: thoughts,
		checks: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error {
				return mongodb.Ping(ctx, db)
			}),
		},
		close: closeFn,
	}, nil
}
