package events

import (
	"context"
	"testing"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"nil brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.enabled {
				t.Error("expected publisher to be disabled")
			}
			if p.writer != nil {
				t.Error("expected nil writer when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := &Config{
		Enabled:   false,
		Brokers:   []string{"localhost:9092"},
		Topic:     "transcripts.lifecycle",
		Principal: "test-principal",
	}

	p := New(cfg)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topic != "transcripts.lifecycle" {
		t.Errorf("expected topic 'transcripts.lifecycle', got %s", p.topic)
	}
}

func TestPublisher_Publish_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	err := p.Publish(context.Background(), Event{
		EventType:    KindProgressChanged,
		TranscriptID: "t1",
		Progress:     "ANALYSING",
	})
	if err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_Publish_FillsTimestamp(t *testing.T) {
	p := New(&Config{Enabled: false})

	// Timestamp zero on input; Publish stamps it before marshaling.
	// Disabled mode still exercises the marshal path.
	if err := p.Publish(context.Background(), Event{
		EventType:    KindParagraphAppended,
		TranscriptID: "t1",
		ParagraphID:  "p1",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPublisher_ConvenienceHelpers_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})
	ctx := context.Background()

	percent := 40
	if err := p.PublishProgress(ctx, "t1", "TRANSCRIBING", &percent); err != nil {
		t.Errorf("PublishProgress: %v", err)
	}
	if err := p.PublishParagraph(ctx, "t1", "p1", 55); err != nil {
		t.Errorf("PublishParagraph: %v", err)
	}
	if err := p.PublishDeleted(ctx, "t1"); err != nil {
		t.Errorf("PublishDeleted: %v", err)
	}
}

func TestPublisher_Close_NoWriter(t *testing.T) {
	p := New(&Config{Enabled: false})

	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing disabled publisher, got %v", err)
	}
}
