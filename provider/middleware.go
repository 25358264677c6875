package provider

import "context"

// Middleware decorates a backend call.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain applies mws so that mws[0] sees the call first.
func Chain[I, O any](mws ...Middleware[I, O]) Middleware[I, O] {
	return func(rr RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(mws) - 1; i >= 0; i-- {
			rr = mws[i](rr)
		}
		return rr
	}
}

// passthrough forwards Name and IsAvailable to the wrapped backend.
type passthrough[I, O any] struct {
	inner RequestResponse[I, O]
}

func (p passthrough[I, O]) Name() string { return p.inner.Name() }

func (p passthrough[I, O]) IsAvailable(ctx context.Context) bool { return p.inner.IsAvailable(ctx) }
