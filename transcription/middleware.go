package transcription

import (
	"context"

	"github.com/kbukum/audioscribe/provider"
)

// AsRequestResponse exposes a Provider as a provider.RequestResponse so
// the generic middlewares can wrap it.
func AsRequestResponse(p Provider) provider.RequestResponse[TranscriptionRequest, *TranscriptionResponse] {
	return provider.NewFunc(p.Name(), p.Transcribe, p.IsAvailable)
}

// Wrap applies middlewares to p. The first middleware is outermost.
func Wrap(p Provider, mws ...provider.Middleware[TranscriptionRequest, *TranscriptionResponse]) Provider {
	if len(mws) == 0 {
		return p
	}
	return &wrapped{rr: provider.Chain(mws...)(AsRequestResponse(p))}
}

type wrapped struct {
	rr provider.RequestResponse[TranscriptionRequest, *TranscriptionResponse]
}

func (w *wrapped) Name() string                         { return w.rr.Name() }
func (w *wrapped) IsAvailable(ctx context.Context) bool { return w.rr.IsAvailable(ctx) }

func (w *wrapped) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	return w.rr.Execute(ctx, req)
}
