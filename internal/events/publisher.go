// Package events publishes transcript lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/ludovico/transcriber-backend/internal/observability/metrics"
)

// Event kinds carried on the lifecycle topic.
const (
	KindProgressChanged   = "transcript.progress"
	KindParagraphAppended = "transcript.paragraph"
	KindTranscriptDeleted = "transcript.deleted"
)

// Event is one lifecycle notification. Keyed by transcript id so a
// consumer sees one transcript's events in order.
type Event struct {
	EventType    string `json:"eventType"`
	TranscriptID string `json:"transcriptId"`
	Timestamp    int64  `json:"timestamp"`
	Progress     string `json:"progress,omitempty"`
	Percent      *int   `json:"percent,omitempty"`
	ParagraphID  string `json:"paragraphId,omitempty"`
}

// Publisher publishes lifecycle events to a single Kafka topic, or logs
// them when Kafka is disabled.
type Publisher struct {
	writer    *kafka.Writer
	principal string
	topic     string
	enabled   bool
	metrics   *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	Principal string
	Enabled   bool
}

// New creates a lifecycle event publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{enabled: false, metrics: m}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal: cfg.Principal,
			topic:     cfg.Topic,
			enabled:   false,
			metrics:   m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes.
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writer:    writer,
		principal: cfg.Principal,
		topic:     cfg.Topic,
		enabled:   true,
		metrics:   m,
	}
}

// Publish sends one event, keyed by its transcript id. When Kafka is
// disabled the event is only logged.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()
	if event.Timestamp == 0 {
		event.Timestamp = start.UnixMilli()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", p.topic).
		Str("key", event.TranscriptID).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || p.writer == nil {
		p.metrics.RecordKafkaPublish(p.topic, event.EventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(event.TranscriptID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(event.EventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("key", event.TranscriptID).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(p.topic, event.EventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(p.topic, event.EventType, nil, time.Since(start).Seconds())
	return nil
}

// PublishProgress publishes a progress transition.
func (p *Publisher) PublishProgress(ctx context.Context, transcriptID, progress string, percent *int) error {
	return p.Publish(ctx, Event{
		EventType:    KindProgressChanged,
		TranscriptID: transcriptID,
		Progress:     progress,
		Percent:      percent,
	})
}

// PublishParagraph publishes a paragraph append.
func (p *Publisher) PublishParagraph(ctx context.Context, transcriptID, paragraphID string, percent int) error {
	return p.Publish(ctx, Event{
		EventType:    KindParagraphAppended,
		TranscriptID: transcriptID,
		ParagraphID:  paragraphID,
		Percent:      &percent,
	})
}

// PublishDeleted publishes a transcript deletion.
func (p *Publisher) PublishDeleted(ctx context.Context, transcriptID string) error {
	return p.Publish(ctx, Event{
		EventType:    KindTranscriptDeleted,
		TranscriptID: transcriptID,
	})
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Kafka writer")
		return err
	}
	return nil
}
