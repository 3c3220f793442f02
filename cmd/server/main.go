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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ludovico/transcriber-backend/internal/api"
	"github.com/ludovico/transcriber-backend/internal/config"
	"github.com/ludovico/transcriber-backend/internal/events"
	"github.com/ludovico/transcriber-backend/internal/observability"
	"github.com/ludovico/transcriber-backend/internal/observability/logging"
	"github.com/ludovico/transcriber-backend/internal/queue"
	"github.com/ludovico/transcriber-backend/internal/store"
	"github.com/ludovico/transcriber-backend/internal/transcript"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	ctx := context.Background()

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize document store")
	}
	defer st.Close()

	repo := transcript.NewRepository(st, cfg.Store.PurgeBatchSize)

	publisher := events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Principal: cfg.Kafka.Principal,
	})
	defer publisher.Close()

	queueClient := queue.NewClient(queue.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer queueClient.Close()

	handler := api.NewHandler(repo, queueClient, publisher)
	router := api.NewRouter(handler)

	obs := observability.NewServer(":" + cfg.Service.MetricsPort)
	obs.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Transcriber API server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}
	_ = obs.Shutdown(shutdownCtx)
}

func newStore(ctx context.Context, cfg *config.Configuration) (store.Store, error) {
	switch cfg.Store.Provider {
	case "memory":
		log.Warn().Msg("Using in-memory document store; data will not survive restarts")
		return store.Instrument(store.NewMemory()), nil
	case "firestore":
		if cfg.Store.ProjectID == "" {
			return nil, fmt.Errorf("FIRESTORE_PROJECT_ID required for firestore store")
		}
		fs, err := store.NewFirestore(ctx, cfg.Store.ProjectID)
		if err != nil {
			return nil, err
		}
		return store.Instrument(fs), nil
	default:
		return nil, fmt.Errorf("unknown store provider %q", cfg.Store.Provider)
	}
}
