package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ludovico/transcriber-backend/internal/observability/logging"
	"github.com/ludovico/transcriber-backend/internal/pipeline"
)

// TranscribeWorker processes transcript:transcribe tasks by running the
// transcription pipeline.
type TranscribeWorker struct {
	pipeline *pipeline.Pipeline
}

// NewTranscribeWorker creates a worker around the pipeline.
func NewTranscribeWorker(p *pipeline.Pipeline) *TranscribeWorker {
	return &TranscribeWorker{pipeline: p}
}

// ProcessTask implements asynq.Handler. A failed pipeline run surfaces
// to asynq, which applies the task's retry policy; note a retried run
// redoes completed work, there is no resumption checkpoint.
func (w *TranscribeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TranscribePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	log := logging.WithTranscript("worker", payload.TranscriptID)
	log.Info().Str("task", t.Type()).Msg("Processing transcribe task")

	return w.pipeline.Run(ctx, payload.TranscriptID, payload.AudioGsURL)
}
