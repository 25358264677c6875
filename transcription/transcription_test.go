package transcription_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/provider"
	"github.com/kbukum/audioscribe/transcription"
)

type stubModel struct {
	calls int
}

func (s *stubModel) Name() string                       { return "stub" }
func (s *stubModel) IsAvailable(_ context.Context) bool { return true }
func (s *stubModel) Transcribe(_ context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	s.calls++
	if req.AudioPath == "" {
		return nil, errors.AudioNotFound("", nil)
	}
	return &transcription.TranscriptionResponse{Text: "salut", Language: req.Language}, nil
}

type stubLoader struct{}

func (stubLoader) Name() string                       { return "stub" }
func (stubLoader) IsAvailable(_ context.Context) bool { return true }
func (stubLoader) Load(_ context.Context, tier string) (transcription.Provider, error) {
	return &stubModel{}, transcription.CheckTier(tier)
}

func TestValidTier(t *testing.T) {
	for _, tier := range []string{"tiny", "base.en", "medium", "large-v3", "turbo"} {
		if !transcription.ValidTier(tier) {
			t.Errorf("expected %q to be valid", tier)
		}
	}
	for _, tier := range []string{"", "huge", "medium.fr"} {
		if transcription.ValidTier(tier) {
			t.Errorf("expected %q to be invalid", tier)
		}
	}
	if err := transcription.CheckTier("huge"); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := transcription.NewRegistry()
	reg.RegisterFactory("stub", func(map[string]any) (transcription.Loader, error) { return stubLoader{}, nil })

	l, err := reg.Create("stub", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Load(context.Background(), transcription.DefaultTier); err != nil {
		t.Fatalf("default tier should load: %v", err)
	}
	if _, err := reg.Create("vosk", nil); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for unknown backend, got %v", err)
	}
}

func TestWrapAppliesMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	inner := &stubModel{}
	p := transcription.Wrap(inner,
		provider.WithLogging[transcription.TranscriptionRequest, *transcription.TranscriptionResponse](log),
	)
	if p.Name() != "stub" {
		t.Errorf("expected name to pass through, got %q", p.Name())
	}

	resp, err := p.Transcribe(context.Background(), transcription.TranscriptionRequest{AudioPath: "a.wav", Language: "fr"})
	if err != nil || resp.Text != "salut" {
		t.Fatalf("unexpected result %+v, %v", resp, err)
	}
	if _, err := p.Transcribe(context.Background(), transcription.TranscriptionRequest{}); !errors.HasCode(err, errors.ErrCodeAudioNotFound) {
		t.Fatalf("expected error to pass through, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 calls, got %d", inner.calls)
	}
	if !strings.Contains(buf.String(), "backend call failed") {
		t.Errorf("expected failure to be logged, got %q", buf.String())
	}
}

func TestWrapWithoutMiddleware(t *testing.T) {
	inner := &stubModel{}
	if transcription.Wrap(inner) != transcription.Provider(inner) {
		t.Error("expected Wrap with no middleware to return the provider itself")
	}
}
