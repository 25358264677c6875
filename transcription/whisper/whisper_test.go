package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/transcription"
)

func sidecar(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("model") != "small" || r.FormValue("language") != "fr" {
			http.Error(w, "unexpected form", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(whisperResponse{
			Text:     " bonjour tout le monde",
			Language: "fr",
			Segments: []whisperSegment{{Text: " bonjour tout le monde", Start: 0, End: 3.5}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func audioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFactoryDecodesConfig(t *testing.T) {
	l, err := Factory(logger.Nop())(map[string]any{"url": "http://whisper:9000", "timeout": "30s"})
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	wl := l.(*Loader)
	if wl.cfg.URL != "http://whisper:9000" || wl.cfg.Timeout.Seconds() != 30 {
		t.Errorf("unexpected config %+v", wl.cfg)
	}

	if _, err := Factory(logger.Nop())(map[string]any{"url": "not a url"}); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for bad url, got %v", err)
	}
}

func TestLoadAndTranscribe(t *testing.T) {
	srv := sidecar(t, true)
	l, err := NewLoader(Config{URL: srv.URL}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsAvailable(context.Background()) {
		t.Fatal("expected sidecar to be available")
	}

	model, err := l.Load(context.Background(), "small")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	resp, err := model.Transcribe(context.Background(), transcription.TranscriptionRequest{
		AudioPath: audioFile(t),
		Language:  "fr",
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if resp.Text != " bonjour tout le monde" || resp.Language != "fr" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Duration != 3.5 {
		t.Errorf("expected duration from last segment, got %v", resp.Duration)
	}
}

func TestLoadUnhealthySidecar(t *testing.T) {
	srv := sidecar(t, false)
	l, err := NewLoader(Config{URL: srv.URL}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Load(context.Background(), "medium"); !errors.HasCode(err, errors.ErrCodeModelLoadFailed) {
		t.Fatalf("expected MODEL_LOAD_FAILED, got %v", err)
	}
}

func TestLoadUnknownTier(t *testing.T) {
	l, err := NewLoader(Config{}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Load(context.Background(), "gigantic"); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	srv := sidecar(t, true)
	l, _ := NewLoader(Config{URL: srv.URL}, logger.Nop())
	model, err := l.Load(context.Background(), "small")
	if err != nil {
		t.Fatal(err)
	}
	_, err = model.Transcribe(context.Background(), transcription.TranscriptionRequest{AudioPath: "/nope.wav", Language: "fr"})
	if !errors.HasCode(err, errors.ErrCodeAudioNotFound) {
		t.Fatalf("expected AUDIO_NOT_FOUND, got %v", err)
	}
}
