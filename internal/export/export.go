// Package export renders a transcript's ordered paragraphs into
// downloadable text formats.
package export

import (
	"fmt"
	"strings"

	"github.com/ludovico/transcriber-backend/internal/transcript"
)

// Format identifies a supported export rendering.
type Format string

const (
	FormatText Format = "txt"
	FormatSRT  Format = "srt"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSRT:
		return "application/x-subrip"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat maps a query parameter onto a Format. Empty input means
// plain text.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "txt", "text":
		return FormatText, nil
	case "srt":
		return FormatSRT, nil
	default:
		return FormatText, fmt.Errorf("unsupported export format %q", s)
	}
}

// Render produces the export body for the given format. Paragraphs are
// expected in startTime order, as returned by the repository.
func Render(f Format, paragraphs []transcript.Paragraph) string {
	if f == FormatSRT {
		return SRT(paragraphs)
	}
	return Text(paragraphs)
}

// Text joins paragraph text with blank lines.
func Text(paragraphs []transcript.Paragraph) string {
	var b strings.Builder
	for i, p := range paragraphs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	if len(paragraphs) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// SRT renders numbered SubRip cues from paragraph time ranges.
func SRT(paragraphs []transcript.Paragraph) string {
	var b strings.Builder
	for i, p := range paragraphs {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, srtTimestamp(p.StartTime), srtTimestamp(p.EndTime), p.Text)
	}
	return b.String()
}

// srtTimestamp formats seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3600000
	m := millis % 3600000 / 60000
	s := millis % 60000 / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
