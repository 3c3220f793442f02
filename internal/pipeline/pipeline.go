package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ludovico/transcriber-backend/internal/events"
	"github.com/ludovico/transcriber-backend/internal/observability/logging"
	"github.com/ludovico/transcriber-backend/internal/observability/metrics"
	"github.com/ludovico/transcriber-backend/internal/transcript"
)

// Pipeline runs one transcription job end to end: it drives the
// recognizer and mirrors every phase into the transcript document.
type Pipeline struct {
	repo    *transcript.Repository
	rec     Recognizer
	pub     *events.Publisher
	metrics *metrics.Metrics
}

// New creates a Pipeline.
func New(repo *transcript.Repository, rec Recognizer, pub *events.Publisher) *Pipeline {
	return &Pipeline{
		repo:    repo,
		rec:     rec,
		pub:     pub,
		metrics: metrics.DefaultMetrics,
	}
}

// Run processes the transcript with the given id: Analysing →
// Transcribing (one atomic paragraph+percent append per utterance) →
// Saving → Done. Any failure marks the transcript failed and returns
// the original error to the caller.
func (p *Pipeline) Run(ctx context.Context, id, audioURI string) error {
	start := time.Now()
	p.metrics.PipelineRuns.Inc()

	log := logging.WithTranscript("pipeline", id)
	log.Info().Str("audioUri", audioURI).Msg("Pipeline run starting")

	if err := p.setProgress(ctx, id, transcript.Analysing); err != nil {
		return p.fail(ctx, id, "analyse", err)
	}

	res, err := p.rec.Recognize(ctx, audioURI)
	if err != nil {
		return p.fail(ctx, id, "recognize", err)
	}

	if err := p.repo.SetDuration(ctx, id, res.Duration); err != nil {
		return p.fail(ctx, id, "analyse", err)
	}
	if err := p.repo.SetPlaybackGsURL(ctx, id, audioURI); err != nil {
		return p.fail(ctx, id, "analyse", err)
	}

	if err := p.setProgress(ctx, id, transcript.Transcribing); err != nil {
		return p.fail(ctx, id, "transcribe", err)
	}

	for _, u := range res.Utterances {
		percent := completionPercent(u.End, res.Duration)
		paragraphID, err := p.repo.AddParagraph(ctx, id, transcript.Paragraph{
			StartTime:  u.Start,
			EndTime:    u.End,
			Text:       u.Text,
			Confidence: u.Confidence,
		}, percent)
		if err != nil {
			return p.fail(ctx, id, "transcribe", err)
		}
		p.metrics.ParagraphsAppended.Inc()
		_ = p.pub.PublishParagraph(ctx, id, paragraphID, percent)
	}

	if err := p.setProgress(ctx, id, transcript.Saving); err != nil {
		return p.fail(ctx, id, "save", err)
	}
	if err := p.setProgress(ctx, id, transcript.Done); err != nil {
		return p.fail(ctx, id, "save", err)
	}

	p.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Int("paragraphs", len(res.Utterances)).
		Float64("audioDuration", res.Duration).
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline run complete")
	return nil
}

// setProgress transitions the transcript and publishes the event.
func (p *Pipeline) setProgress(ctx context.Context, id string, state transcript.Progress) error {
	if err := p.repo.SetProgress(ctx, id, state); err != nil {
		return err
	}
	var percent *int
	if state == transcript.Analysing || state == transcript.Saving {
		zero := 0
		percent = &zero
	}
	_ = p.pub.PublishProgress(ctx, id, state.String(), percent)
	return nil
}

// fail records the error atomically with the Error transition and hands
// the original error back to the caller. A failed mark is logged but
// does not mask the root cause.
func (p *Pipeline) fail(ctx context.Context, id, stage string, cause error) error {
	p.metrics.PipelineFailed.WithLabelValues(stage).Inc()

	if err := p.repo.MarkFailed(ctx, id, stage, cause); err != nil {
		logger := logging.WithTranscript("pipeline", id)
		logger.Error().Err(err).Str("stage", stage).
			Msg("Failed to mark transcript failed")
	} else {
		_ = p.pub.PublishProgress(ctx, id, transcript.Error.String(), nil)
	}
	return fmt.Errorf("pipeline %s stage %s: %w", id, stage, cause)
}

// completionPercent maps an audio offset onto 0-100.
func completionPercent(offset, duration float64) int {
	if duration <= 0 {
		return 0
	}
	percent := int(offset / duration * 100)
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}
