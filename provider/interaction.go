package provider

import "context"

// RequestResponse represents a provider that takes one input and returns one output.
// Sidecar HTTP calls, vendor API calls and subprocess runs all fit this shape.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Func adapts a plain function into a RequestResponse provider.
type Func[I, O any] struct {
	name      string
	fn        func(ctx context.Context, input I) (O, error)
	available func(ctx context.Context) bool
}

// NewFunc creates a RequestResponse provider from fn. A nil available
// function reports the provider as always available.
func NewFunc[I, O any](name string, fn func(ctx context.Context, input I) (O, error), available func(ctx context.Context) bool) *Func[I, O] {
	return &Func[I, O]{name: name, fn: fn, available: available}
}

func (f *Func[I, O]) Name() string { return f.name }

func (f *Func[I, O]) IsAvailable(ctx context.Context) bool {
	if f.available == nil {
		return true
	}
	return f.available(ctx)
}

func (f *Func[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return f.fn(ctx, input)
}
