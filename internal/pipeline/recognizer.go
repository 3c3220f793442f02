// Package pipeline drives the speech-to-text provider and mirrors its
// progress into the transcript document.
package pipeline

import "context"

// Utterance is one recognized segment with its audio offsets in seconds.
type Utterance struct {
	Start      float64
	End        float64
	Text       string
	Confidence float64
}

// Result is the full output of a recognition run.
type Result struct {
	// Duration of the recognized audio in seconds.
	Duration   float64
	Utterances []Utterance
}

// Recognizer is the interface for speech-to-text providers (Google,
// mock, ...). Recognize blocks until the provider has processed the
// whole recording at audioURI.
type Recognizer interface {
	Recognize(ctx context.Context, audioURI string) (*Result, error)
}
