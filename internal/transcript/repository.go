package transcript

import (
	"context"
	"fmt"

	"github.com/ludovico/transcriber-backend/internal/observability/logging"
	"github.com/ludovico/transcriber-backend/internal/store"
)

const (
	transcriptsCollection = "transcripts"

	// DefaultPurgeBatchSize is how many paragraphs are removed per
	// deletion batch when deleting a whole transcript.
	DefaultPurgeBatchSize = 10
)

// Repository exposes the transcript lifecycle operations over the
// document store. Every mutation is a merge write or an atomic batch;
// the repository never caches store state.
type Repository struct {
	store      store.Store
	purgeBatch int
}

// NewRepository creates a Repository. purgeBatchSize <= 0 falls back to
// DefaultPurgeBatchSize.
func NewRepository(s store.Store, purgeBatchSize int) *Repository {
	if purgeBatchSize <= 0 {
		purgeBatchSize = DefaultPurgeBatchSize
	}
	return &Repository{store: s, purgeBatch: purgeBatchSize}
}

func transcriptPath(id string) string {
	return transcriptsCollection + "/" + id
}

func paragraphsPath(id string) string {
	return transcriptPath(id) + "/paragraphs"
}

// Create inserts a new transcript document in the Queued state and
// returns its id. Fails if the generated id already exists.
func (r *Repository) Create(ctx context.Context, sourceGsURL string) (string, error) {
	id := r.store.NewID()
	fields := map[string]any{
		"status": map[string]any{
			"progress": Queued.String(),
		},
	}
	if sourceGsURL != "" {
		fields["metadata"] = map[string]any{"sourceGsUrl": sourceGsURL}
	}
	ops := []store.Op{{Kind: store.OpCreate, Path: transcriptPath(id), Fields: fields}}
	if err := r.store.BatchWrite(ctx, ops); err != nil {
		return "", fmt.Errorf("create transcript: %w", err)
	}
	return id, nil
}

// SetProgress merge-writes status.progress. Entering Analysing or Saving
// re-arms status.percent at zero; entering Done removes the percent
// field entirely (a finished transcript reports no percent). All other
// fields of the document are left untouched.
func (r *Repository) SetProgress(ctx context.Context, id string, p Progress) error {
	status := map[string]any{"progress": p.String()}
	switch {
	case p.resetsPercent():
		status["percent"] = 0
	case p == Done:
		status["percent"] = store.Delete
	}

	log := logging.WithTranscript("transcript", id)
	log.Debug().Str("progress", p.String()).Msg("Setting transcript progress")

	return r.store.Write(ctx, transcriptPath(id), map[string]any{"status": status})
}

// SetPercent merge-writes status.percent without touching progress.
func (r *Repository) SetPercent(ctx context.Context, id string, percent int) error {
	return r.store.Write(ctx, transcriptPath(id), map[string]any{
		"status": map[string]any{"percent": percent},
	})
}

// SetDuration merge-writes metadata.audioDuration in seconds.
func (r *Repository) SetDuration(ctx context.Context, id string, seconds float64) error {
	return r.store.Write(ctx, transcriptPath(id), map[string]any{
		"metadata": map[string]any{"audioDuration": seconds},
	})
}

// SetPlaybackGsURL merge-writes the storage locator of processed audio.
func (r *Repository) SetPlaybackGsURL(ctx context.Context, id, url string) error {
	return r.store.Write(ctx, transcriptPath(id), map[string]any{
		"playbackGsUrl": url,
	})
}

// RecordError captures err as data under status.error. It does not
// transition progress; callers wanting the Error state atomically with
// the record should use MarkFailed.
func (r *Repository) RecordError(ctx context.Context, id, op string, err error) error {
	rec := NewErrorRecord(op, err)
	return r.store.Write(ctx, transcriptPath(id), map[string]any{
		"status": map[string]any{"error": rec.Fields()},
	})
}

// MarkFailed records the error and transitions progress to Error in one
// merge write, so a reader never sees the record without the state or
// the reverse.
func (r *Repository) MarkFailed(ctx context.Context, id, op string, cause error) error {
	rec := NewErrorRecord(op, cause)

	log := logging.WithTranscript("transcript", id)
	log.Warn().Err(cause).Str("op", op).Msg("Marking transcript failed")

	return r.store.Write(ctx, transcriptPath(id), map[string]any{
		"status": map[string]any{
			"progress": Error.String(),
			"error":    rec.Fields(),
		},
	})
}

// AddParagraph appends one paragraph and advances status.percent as one
// atomic batch: either the paragraph exists and the percent reflects it,
// or neither write happened.
func (r *Repository) AddParagraph(ctx context.Context, id string, p Paragraph, percent int) (string, error) {
	paragraphID := r.store.NewID()
	ops := []store.Op{
		{
			Kind:   store.OpCreate,
			Path:   paragraphsPath(id) + "/" + paragraphID,
			Fields: p.fields(),
		},
		{
			Kind:   store.OpSet,
			Path:   transcriptPath(id),
			Fields: map[string]any{"status": map[string]any{"percent": percent}},
		},
	}
	if err := r.store.BatchWrite(ctx, ops); err != nil {
		return "", fmt.Errorf("add paragraph to %s: %w", id, err)
	}
	return paragraphID, nil
}

// GetProgress reads status.progress for id.
func (r *Repository) GetProgress(ctx context.Context, id string) (Progress, error) {
	fields, err := r.store.Read(ctx, transcriptPath(id))
	if err != nil {
		return Queued, err
	}
	status, _ := fields["status"].(map[string]any)
	p, err := ParseProgress(asString(status["progress"]))
	if err != nil {
		return Queued, fmt.Errorf("transcript %s: %w", id, err)
	}
	return p, nil
}

// GetTranscript reads the full record for id.
func (r *Repository) GetTranscript(ctx context.Context, id string) (*Transcript, error) {
	fields, err := r.store.Read(ctx, transcriptPath(id))
	if err != nil {
		return nil, err
	}
	return transcriptFromDoc(id, fields), nil
}

// GetTranscripts returns every transcript keyed by id. Full collection
// scan with no pagination; intended for small collections and admin use.
func (r *Repository) GetTranscripts(ctx context.Context) (map[string]*Transcript, error) {
	docs, err := r.store.QueryOrdered(ctx, transcriptsCollection, store.DocumentID, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Transcript, len(docs))
	for _, doc := range docs {
		out[doc.ID] = transcriptFromDoc(doc.ID, doc.Fields)
	}
	return out, nil
}

// GetParagraphs returns the transcript's paragraphs ordered by ascending
// startTime, id-tie-broken.
func (r *Repository) GetParagraphs(ctx context.Context, id string) ([]Paragraph, error) {
	docs, err := r.store.QueryOrdered(ctx, paragraphsPath(id), "startTime", 0)
	if err != nil {
		return nil, err
	}
	out := make([]Paragraph, 0, len(docs))
	for _, doc := range docs {
		out = append(out, paragraphFromDoc(doc))
	}
	return out, nil
}

// Delete purges the paragraphs subtree in batches, then deletes the root
// document. The two steps are sequential, not atomic: a crash in between
// leaves a paragraph-less root behind, never orphaned paragraphs.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := store.DeleteCollection(ctx, r.store, paragraphsPath(id), r.purgeBatch); err != nil {
		return fmt.Errorf("delete transcript %s: %w", id, err)
	}
	ops := []store.Op{{Kind: store.OpDelete, Path: transcriptPath(id)}}
	if err := r.store.BatchWrite(ctx, ops); err != nil {
		return fmt.Errorf("delete transcript %s: %w", id, err)
	}

	log := logging.WithTranscript("transcript", id)
	log.Info().Msg("Transcript deleted")
	return nil
}
