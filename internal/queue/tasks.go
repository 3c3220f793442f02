// Package queue defines the background tasks that react to transcript
// creation, and the asynq plumbing to enqueue and process them.
package queue

// TypeTranscriptTranscribe runs the transcription pipeline for a newly
// created transcript.
const TypeTranscriptTranscribe = "transcript:transcribe"

// TranscribePayload identifies the transcript and its source audio.
type TranscribePayload struct {
	TranscriptID string `json:"transcript_id"`
	AudioGsURL   string `json:"audio_gs_url"`
}
