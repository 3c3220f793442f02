package pipeline

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/protobuf/types/known/durationpb"
)

// GoogleConfig holds recognition settings for Cloud Speech-to-Text.
type GoogleConfig struct {
	LanguageCode  string
	SampleRateHz  int
	AudioEncoding string
}

// DefaultGoogleConfig returns the default recognition settings.
func DefaultGoogleConfig() GoogleConfig {
	return GoogleConfig{
		LanguageCode:  "en-US",
		SampleRateHz:  16000,
		AudioEncoding: "LINEAR16",
	}
}

// GoogleRecognizer implements Recognizer using Cloud Speech-to-Text
// long-running recognition on a GCS URI.
// Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
type GoogleRecognizer struct {
	client *speech.Client
	cfg    GoogleConfig
}

// NewGoogleRecognizer creates a Google recognizer.
func NewGoogleRecognizer(ctx context.Context, cfg GoogleConfig) (*GoogleRecognizer, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &GoogleRecognizer{client: c, cfg: cfg}, nil
}

// Recognize runs long-running recognition and waits for the result.
// Word time offsets are requested so utterances carry audio positions.
func (g *GoogleRecognizer) Recognize(ctx context.Context, audioURI string) (*Result, error) {
	op, err := g.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   parseAudioEncoding(g.cfg.AudioEncoding),
			SampleRateHertz:            int32(g.cfg.SampleRateHz),
			LanguageCode:               g.cfg.LanguageCode,
			EnableWordTimeOffsets:      true,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: audioURI},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("long running recognize %s: %w", audioURI, err)
	}

	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("long running recognize %s: %w", audioURI, err)
	}

	res := &Result{}
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		end := seconds(r.ResultEndTime)

		start := res.Duration
		if len(alt.Words) > 0 {
			start = seconds(alt.Words[0].StartTime)
		}

		res.Utterances = append(res.Utterances, Utterance{
			Start:      start,
			End:        end,
			Text:       alt.Transcript,
			Confidence: float64(alt.Confidence),
		})
		if end > res.Duration {
			res.Duration = end
		}
	}
	return res, nil
}

// Close releases the speech client.
func (g *GoogleRecognizer) Close() error {
	return g.client.Close()
}

func seconds(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return d.AsDuration().Seconds()
}

// parseAudioEncoding maps a config string onto the proto enum, falling
// back to LINEAR16 for unknown values.
func parseAudioEncoding(s string) speechpb.RecognitionConfig_AudioEncoding {
	switch s {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC
	case "AMR":
		return speechpb.RecognitionConfig_AMR
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
