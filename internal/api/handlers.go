// Package api exposes the transcript operations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ludovico/transcriber-backend/internal/events"
	"github.com/ludovico/transcriber-backend/internal/export"
	"github.com/ludovico/transcriber-backend/internal/observability/metrics"
	"github.com/ludovico/transcriber-backend/internal/queue"
	"github.com/ludovico/transcriber-backend/internal/store"
	"github.com/ludovico/transcriber-backend/internal/transcript"
)

// Enqueuer schedules background transcription work.
type Enqueuer interface {
	EnqueueTranscribe(payload queue.TranscribePayload) error
}

// Handler serves the transcript endpoints.
type Handler struct {
	repo    *transcript.Repository
	queue   Enqueuer
	pub     *events.Publisher
	metrics *metrics.Metrics
}

// NewHandler creates a Handler.
func NewHandler(repo *transcript.Repository, q Enqueuer, pub *events.Publisher) *Handler {
	return &Handler{
		repo:    repo,
		queue:   q,
		pub:     pub,
		metrics: metrics.DefaultMetrics,
	}
}

type createRequest struct {
	AudioGsURL string `json:"audioGsUrl"`
}

// Create inserts a queued transcript document and schedules its
// transcription.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.AudioGsURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audioGsUrl required"})
		return
	}

	id, err := h.repo.Create(r.Context(), req.AudioGsURL)
	if err != nil {
		writeJSON(w, storeStatus(err), map[string]string{"error": err.Error()})
		return
	}
	h.metrics.TranscriptsCreated.Inc()

	if err := h.queue.EnqueueTranscribe(queue.TranscribePayload{
		TranscriptID: id,
		AudioGsURL:   req.AudioGsURL,
	}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":       id,
		"progress": transcript.Queued.String(),
	})
}

// List returns every transcript. Full collection scan, admin use only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	transcripts, err := h.repo.GetTranscripts(r.Context())
	if err != nil {
		writeJSON(w, storeStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transcripts": transcripts,
		"count":       len(transcripts),
	})
}

// Get returns the full record of one transcript.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.repo.GetTranscript(r.Context(), id)
	if err != nil {
		writeJSON(w, storeStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Export renders the transcript's paragraphs as plain text or SRT.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if _, err := h.repo.GetTranscript(r.Context(), id); err != nil {
		writeJSON(w, storeStatus(err), map[string]string{"error": err.Error()})
		return
	}
	paragraphs, err := h.repo.GetParagraphs(r.Context(), id)
	if err != nil {
		writeJSON(w, storeStatus(err), map[string]string{"error": err.Error()})
		return
	}

	h.metrics.ExportsTotal.WithLabelValues(string(format)).Inc()
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.Render(format, paragraphs)))
}

// Delete removes the transcript's paragraphs subtree and its root
// document, then reports 204.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.repo.GetTranscript(r.Context(), id); err != nil {
		writeJSON(w, storeStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeJSON(w, storeStatus(err), map[string]string{"error": err.Error()})
		return
	}

	h.metrics.TranscriptsDeleted.Inc()
	_ = h.pub.PublishDeleted(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// storeStatus maps the store error taxonomy onto HTTP status codes.
func storeStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
