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

	"github.com/kidguard/parental-api/internal/api"
	"github.com/kidguard/parental-api/internal/api/handler"
	"github.com/kidguard/parental-api/internal/core/ports"
	"github.com/kidguard/parental-api/internal/core/service"
	firestoredb "github.com/kidguard/parental-api/internal/infrastructure/db/firestore"
	"github.com/kidguard/parental-api/internal/infrastructure/db/memory"
	mongodb "github.com/kidguard/parental-api/internal/infrastructure/db/mongo"
	"github.com/kidguard/parental-api/internal/infrastructure/db/redis"
	"github.com/kidguard/parental-api/internal/infrastructure/db/repository"
	"github.com/kidguard/parental-api/internal/pkg/config"
	"github.com/kidguard/parental-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "parental-api",
	})
	log.Info().Str("env", cfg.Env).Str("store", cfg.Store.Backend).Msg("app: starting")

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store: connect failed")
	}

	health := map[string]handler.Pinger{"store": store}

	var throttle service.LoginThrottle
	var limiter *redis.LoginThrottle
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis: connect failed")
		}
		limiter = redis.NewLoginThrottle(client, cfg.Redis.LoginMaxAttempts, cfg.Redis.LoginWindow)
		throttle = limiter
		health["redis"] = limiter
	} else {
		log.Warn().Msg("redis: REDIS_ADDR not set, login throttling disabled")
	}

	users := repository.NewUserRepository(store)
	searches := repository.NewSearchRepository(store)

	creds := service.NewCredentialService(service.CredentialConfig{
		Secret:     cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.AccessTokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	access := service.NewAccessService(users, creds)

	e := api.NewRouter(api.Options{
		Auth:             service.NewAuthService(users, creds, throttle, logger.Component("auth")),
		Children:         service.NewChildService(users, searches, creds, access, logger.Component("children")),
		Searches:         service.NewSearchService(searches, users, access, time.Now, logger.Component("searches")),
		Access:           access,
		Health:           health,
		Logger:           logger.Component("http"),
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		EnableMetrics:    cfg.HTTP.EnableMetrics,
		EnableSwagger:    cfg.HTTP.EnableSwagger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", srv.Addr).Msg("http: listening")

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info().Msg("app: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("http: server failed")
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("http: graceful shutdown failed")
		exitCode = 1
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store: close failed")
		exitCode = 1
	}
	if limiter != nil {
		if err := limiter.Close(); err != nil {
			log.Error().Err(err).Msg("redis: close failed")
			exitCode = 1
		}
	}

	if exitCode == 0 {
		log.Info().Msg("app: stopped")
		return
	}
	os.Exit(exitCode)
}

// openStore connects the DocumentStore selected by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config) (ports.DocumentStore, error) {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		store, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil
	case config.BackendFirestore:
		store, err := firestoredb.Connect(ctx, firestoredb.Config{
			ProjectID:       cfg.Firestore.ProjectID,
			CredentialsPath: cfg.Firestore.CredentialsPath,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendMemory:
		l := logger.Component("store")
		l.Warn().Msg("memory store selected, data is lost on restart")
		return memory.New(memory.WithUnique(ports.CollectionUsers, "username")), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
