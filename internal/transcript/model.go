package transcript

import "github.com/ludovico/transcriber-backend/internal/store"

// Transcript is the root record of one transcription job.
type Transcript struct {
	ID            string       `json:"id"`
	Progress      Progress     `json:"-"`
	ProgressLabel string       `json:"progress"`
	Percent       *int         `json:"percent,omitempty"`
	Error         *ErrorRecord `json:"error,omitempty"`
	AudioDuration float64      `json:"audioDuration,omitempty"`
	SourceGsURL   string       `json:"sourceGsUrl,omitempty"`
	PlaybackGsURL string       `json:"playbackGsUrl,omitempty"`
}

// Paragraph is one immutable recognized-speech segment. Paragraphs are
// append-only and ordered by StartTime.
type Paragraph struct {
	ID         string  `json:"id"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

func (p Paragraph) fields() map[string]any {
	return map[string]any{
		"startTime":  p.StartTime,
		"endTime":    p.EndTime,
		"text":       p.Text,
		"confidence": p.Confidence,
	}
}

func paragraphFromDoc(doc store.Document) Paragraph {
	return Paragraph{
		ID:         doc.ID,
		StartTime:  asFloat(doc.Fields["startTime"]),
		EndTime:    asFloat(doc.Fields["endTime"]),
		Text:       asString(doc.Fields["text"]),
		Confidence: asFloat(doc.Fields["confidence"]),
	}
}

func transcriptFromDoc(id string, fields map[string]any) *Transcript {
	t := &Transcript{ID: id}

	if status, ok := fields["status"].(map[string]any); ok {
		if p, err := ParseProgress(asString(status["progress"])); err == nil {
			t.Progress = p
		}
		if raw, present := status["percent"]; present {
			percent := int(asFloat(raw))
			t.Percent = &percent
		}
		if rec, ok := status["error"].(map[string]any); ok {
			t.Error = errorRecordFromFields(rec)
		}
	}
	if meta, ok := fields["metadata"].(map[string]any); ok {
		t.AudioDuration = asFloat(meta["audioDuration"])
		t.SourceGsURL = asString(meta["sourceGsUrl"])
	}
	t.PlaybackGsURL = asString(fields["playbackGsUrl"])
	t.ProgressLabel = t.Progress.String()
	return t
}

// asFloat tolerates the integer widenings the store performs on read.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
