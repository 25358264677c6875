package provider

import "context"

// Provider is a named backend (whisper, openai, pyannote, ...).
type Provider interface {
	Name() string
	// IsAvailable probes the backend. It should be cheap and must not load
	// a model.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a backend from the config block stored under its name.
type Factory[T Provider] func(cfg map[string]any) (T, error)
