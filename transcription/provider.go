package transcription

import (
	"context"

	"github.com/kbukum/audioscribe/provider"
)

// Provider is a loaded model that turns audio into text.
type Provider interface {
	provider.Provider

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
}

// Loader loads a model tier. Load fails with MODEL_LOAD_FAILED when the
// tier cannot be made ready.
type Loader interface {
	provider.Provider

	Load(ctx context.Context, tier string) (Provider, error)
}
