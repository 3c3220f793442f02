// Package transcript implements the transcript lifecycle: progress
// states, paragraph appends and whole-transcript deletion, all expressed
// as merge writes and atomic batches against the document store.
package transcript

import "fmt"

// Progress represents the phase of a transcription job.
type Progress int

const (
	// Queued - job created, nothing started yet.
	Queued Progress = iota
	// Analysing - audio is being inspected (duration, format).
	Analysing
	// Transcribing - paragraphs are being appended.
	Transcribing
	// Saving - results are being finalized.
	Saving
	// Done - terminal state for normal completion.
	Done
	// Error - terminal state for automatic processing; reachable from
	// any other state.
	Error
)

// String returns the string representation stored in status.progress.
func (p Progress) String() string {
	switch p {
	case Queued:
		return "QUEUED"
	case Analysing:
		return "ANALYSING"
	case Transcribing:
		return "TRANSCRIBING"
	case Saving:
		return "SAVING"
	case Done:
		return "DONE"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(p))
	}
}

// Terminal returns true if no further automatic transitions occur.
func (p Progress) Terminal() bool {
	return p == Done || p == Error
}

// resetsPercent reports whether entering this state re-arms the percent
// counter at zero for the new phase.
func (p Progress) resetsPercent() bool {
	return p == Analysing || p == Saving
}

// ParseProgress maps a stored progress string back onto the enum.
func ParseProgress(s string) (Progress, error) {
	switch s {
	case "QUEUED":
		return Queued, nil
	case "ANALYSING":
		return Analysing, nil
	case "TRANSCRIBING":
		return Transcribing, nil
	case "SAVING":
		return Saving, nil
	case "DONE":
		return Done, nil
	case "ERROR":
		return Error, nil
	default:
		return Queued, fmt.Errorf("unknown progress state %q", s)
	}
}
