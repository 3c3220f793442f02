package pipeline

import "context"

// MockRecognizer implements Recognizer with canned utterances, for local
// development and tests.
type MockRecognizer struct {
	Result *Result
	Err    error
}

// NewMockRecognizer returns a recognizer producing a short fixed script.
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{
		Result: &Result{
			Duration: 12.5,
			Utterances: []Utterance{
				{Start: 0, End: 4.2, Text: "This is a mock transcription.", Confidence: 0.95},
				{Start: 4.2, End: 8.7, Text: "It stands in for the speech provider.", Confidence: 0.93},
				{Start: 8.7, End: 12.5, Text: "Three paragraphs, fixed offsets.", Confidence: 0.97},
			},
		},
	}
}

func (m *MockRecognizer) Recognize(ctx context.Context, audioURI string) (*Result, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
