package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ludovico/transcriber-backend/internal/config"
	"github.com/ludovico/transcriber-backend/internal/events"
	"github.com/ludovico/transcriber-backend/internal/observability"
	"github.com/ludovico/transcriber-backend/internal/observability/logging"
	"github.com/ludovico/transcriber-backend/internal/pipeline"
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

	recognizer, err := newRecognizer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize speech recognizer")
	}

	pipe := pipeline.New(repo, recognizer, publisher)
	worker := queue.NewTranscribeWorker(pipe)

	obs := observability.NewServer(":" + cfg.Service.MetricsPort)
	obs.Start()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Each run is one long transcription; keep concurrency low.
			Concurrency: 4,
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(queue.TypeTranscriptTranscribe, asynq.HandlerFunc(worker.ProcessTask))

	log.Info().Str("sttProvider", cfg.Speech.Provider).Msg("Transcription worker started")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("Worker stopped")
	}
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

func newRecognizer(ctx context.Context, cfg *config.Configuration) (pipeline.Recognizer, error) {
	switch cfg.Speech.Provider {
	case "mock":
		return pipeline.NewMockRecognizer(), nil
	case "google":
		return pipeline.NewGoogleRecognizer(ctx, pipeline.GoogleConfig{
			LanguageCode:  cfg.Speech.LanguageCode,
			SampleRateHz:  cfg.Speech.SampleRateHz,
			AudioEncoding: cfg.Speech.AudioEncoding,
		})
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.Speech.Provider)
	}
}
