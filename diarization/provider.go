package diarization

import (
	"context"

	"github.com/kbukum/audioscribe/provider"
)

// Provider is the interface that diarization backends must implement.
type Provider interface {
	provider.Provider

	// Diarize returns speaker segments and the total duration of the audio.
	Diarize(ctx context.Context, req DiarizationRequest) (*DiarizationResponse, error)
}

// NewRegistry creates a registry of diarization backends keyed by name.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// Wrap applies middlewares to p. The first middleware is outermost.
func Wrap(p Provider, mws ...provider.Middleware[DiarizationRequest, *DiarizationResponse]) Provider {
	if len(mws) == 0 {
		return p
	}
	rr := provider.Chain(mws...)(provider.NewFunc(p.Name(), p.Diarize, p.IsAvailable))
	return &wrapped{rr: rr}
}

type wrapped struct {
	rr provider.RequestResponse[DiarizationRequest, *DiarizationResponse]
}

func (w *wrapped) Name() string                         { return w.rr.Name() }
func (w *wrapped) IsAvailable(ctx context.Context) bool { return w.rr.IsAvailable(ctx) }

func (w *wrapped) Diarize(ctx context.Context, req DiarizationRequest) (*DiarizationResponse, error) {
	return w.rr.Execute(ctx, req)
}
