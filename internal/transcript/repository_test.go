package transcript

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ludovico/transcriber-backend/internal/store"
)

func newTestRepo() (*Repository, *store.Memory) {
	mem := store.NewMemory()
	return NewRepository(mem, DefaultPurgeBatchSize), mem
}

func createQueued(t *testing.T, repo *Repository) string {
	t.Helper()
	id, err := repo.Create(context.Background(), "gs://bucket/audio.wav")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return id
}

func TestRepository_Create_InitialState(t *testing.T) {
	repo, _ := newTestRepo()
	id := createQueued(t, repo)

	tr, err := repo.GetTranscript(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Progress != Queued {
		t.Errorf("expected Queued, got %v", tr.Progress)
	}
	if tr.Percent != nil {
		t.Errorf("expected no percent on a fresh transcript, got %d", *tr.Percent)
	}
	if tr.SourceGsURL != "gs://bucket/audio.wav" {
		t.Errorf("unexpected source url: %s", tr.SourceGsURL)
	}
}

func TestRepository_SetProgress_AnalysingResetsPercent(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.SetPercent(ctx, id, 70); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetProgress(ctx, id, Analysing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, err := repo.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Progress != Analysing {
		t.Errorf("expected Analysing, got %v", tr.Progress)
	}
	if tr.Percent == nil || *tr.Percent != 0 {
		t.Errorf("expected percent reset to 0, got %v", tr.Percent)
	}
}

func TestRepository_SetProgress_TranscribingLeavesPercentAlone(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.SetPercent(ctx, id, 35); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetProgress(ctx, id, Transcribing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, err := repo.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Percent == nil || *tr.Percent != 35 {
		t.Errorf("expected percent untouched at 35, got %v", tr.Percent)
	}
}

func TestRepository_SetProgress_DoneRemovesPercentField(t *testing.T) {
	repo, mem := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.SetPercent(ctx, id, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetProgress(ctx, id, Done); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Inspect the raw document: the field must be gone, not zero or null.
	fields, err := mem.Read(ctx, "transcripts/"+id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status := fields["status"].(map[string]any)
	if status["progress"] != "DONE" {
		t.Errorf("expected progress DONE, got %v", status["progress"])
	}
	if _, present := status["percent"]; present {
		t.Error("expected percent field removed on Done")
	}
}

func TestRepository_SetProgress_PreservesMetadata(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.SetDuration(ctx, id, 33.4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetProgress(ctx, id, Saving); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, err := repo.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.AudioDuration != 33.4 {
		t.Errorf("expected duration preserved, got %v", tr.AudioDuration)
	}
}

func TestRepository_SetPercent_Idempotent(t *testing.T) {
	repo, mem := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.SetPercent(ctx, id, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := mem.Read(ctx, "transcripts/"+id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.SetPercent(ctx, id, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := mem.Read(ctx, "transcripts/"+id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("expected identical state after repeated SetPercent:\n%v\n%v", first, second)
	}
}

func TestRepository_SetDurationAndPlaybackGsURL(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.SetDuration(ctx, id, 120.75); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetPlaybackGsURL(ctx, id, "gs://bucket/processed.flac"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, err := repo.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.AudioDuration != 120.75 {
		t.Errorf("expected duration 120.75, got %v", tr.AudioDuration)
	}
	if tr.PlaybackGsURL != "gs://bucket/processed.flac" {
		t.Errorf("unexpected playback url: %s", tr.PlaybackGsURL)
	}
}

func TestRepository_RecordError_DoesNotTransitionProgress(t *testing.T) {
	repo, mem := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.SetProgress(ctx, id, Transcribing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.RecordError(ctx, id, "", errors.New("provider timeout")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, err := repo.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Progress != Transcribing {
		t.Errorf("expected progress untouched, got %v", tr.Progress)
	}
	if tr.Error == nil || tr.Error.Message != "provider timeout" {
		t.Errorf("expected error record, got %v", tr.Error)
	}

	// Empty op must yield no op key at all in the stored record.
	fields, err := mem.Read(ctx, "transcripts/"+id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := fields["status"].(map[string]any)["error"].(map[string]any)
	if _, present := stored["op"]; present {
		t.Error("expected empty op to be stripped from stored record")
	}
}

func TestRepository_MarkFailed_AtomicRecordAndTransition(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.MarkFailed(ctx, id, "recognize", errors.New("quota exceeded")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, err := repo.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Progress != Error {
		t.Errorf("expected Error state, got %v", tr.Progress)
	}
	if tr.Error == nil || tr.Error.Op != "recognize" {
		t.Errorf("expected error record with op, got %v", tr.Error)
	}
}

func TestRepository_AddParagraph_SetsPercentAtomically(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	pid, err := repo.AddParagraph(ctx, id, Paragraph{
		StartTime: 0, EndTime: 4.5, Text: "hello world", Confidence: 0.9,
	}, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pid == "" {
		t.Fatal("expected paragraph id")
	}

	tr, err := repo.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Percent == nil || *tr.Percent != 42 {
		t.Errorf("expected percent 42, got %v", tr.Percent)
	}

	paragraphs, err := repo.GetParagraphs(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paragraphs) != 1 || paragraphs[0].Text != "hello world" {
		t.Errorf("unexpected paragraphs: %v", paragraphs)
	}
}

// failingBatchStore rejects every batch, standing in for a store-side
// commit failure.
type failingBatchStore struct {
	store.Store
}

func (s *failingBatchStore) BatchWrite(ctx context.Context, ops []store.Op) error {
	return fmt.Errorf("injected: %w", store.ErrBatchFailed)
}

func TestRepository_AddParagraph_FailedBatchAppliesNothing(t *testing.T) {
	mem := store.NewMemory()
	repo := NewRepository(mem, DefaultPurgeBatchSize)
	ctx := context.Background()

	// Seed the transcript directly; Create goes through BatchWrite too.
	if err := mem.Write(ctx, "transcripts/t1", map[string]any{
		"status": map[string]any{"progress": "TRANSCRIBING", "percent": 10},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failing := NewRepository(&failingBatchStore{Store: mem}, DefaultPurgeBatchSize)
	_, err := failing.AddParagraph(ctx, "t1", Paragraph{Text: "lost"}, 90)
	if !errors.Is(err, store.ErrBatchFailed) {
		t.Fatalf("expected ErrBatchFailed, got %v", err)
	}

	tr, err := repo.GetTranscript(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Percent == nil || *tr.Percent != 10 {
		t.Errorf("expected percent unchanged at 10, got %v", tr.Percent)
	}
	paragraphs, err := repo.GetParagraphs(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paragraphs) != 0 {
		t.Errorf("expected no paragraphs, got %d", len(paragraphs))
	}
}

func TestRepository_GetParagraphs_OrderedByStartTime(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	// Insert out of order.
	for _, p := range []Paragraph{
		{StartTime: 8.1, EndTime: 10, Text: "third"},
		{StartTime: 0.5, EndTime: 3, Text: "first"},
		{StartTime: 3.2, EndTime: 8, Text: "second"},
	} {
		if _, err := repo.AddParagraph(ctx, id, p, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	paragraphs, err := repo.GetParagraphs(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(paragraphs) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d", len(want), len(paragraphs))
	}
	for i, text := range want {
		if paragraphs[i].Text != text {
			t.Errorf("position %d: expected %q, got %q", i, text, paragraphs[i].Text)
		}
	}
}

func TestRepository_GetProgress(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	if err := repo.SetProgress(ctx, id, Saving); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := repo.GetProgress(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != Saving {
		t.Errorf("expected Saving, got %v", p)
	}

	if _, err := repo.GetProgress(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_GetTranscripts(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	a := createQueued(t, repo)
	b := createQueued(t, repo)

	all, err := repo.GetTranscripts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 transcripts, got %d", len(all))
	}
	if all[a] == nil || all[b] == nil {
		t.Errorf("expected both ids present, got %v", all)
	}
}

func TestRepository_Delete_RemovesSubtreeAndRoot(t *testing.T) {
	repo, mem := newTestRepo()
	ctx := context.Background()
	id := createQueued(t, repo)

	for i := 0; i < 25; i++ {
		p := Paragraph{StartTime: float64(i), EndTime: float64(i) + 1, Text: fmt.Sprintf("p%d", i)}
		if _, err := repo.AddParagraph(ctx, id, p, i*4); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.GetTranscript(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected root document gone, got %v", err)
	}
	remaining, err := mem.QueryOrdered(ctx, "transcripts/"+id+"/paragraphs", store.DocumentID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected paragraphs subtree empty, got %d docs", len(remaining))
	}
}
