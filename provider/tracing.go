package provider

import (
	"context"

	"github.com/kbukum/audioscribe/observability"
)

// WithTracing opens a "<service>.<backend>" span around every call.
func WithTracing[I, O any](service string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &traced[I, O]{passthrough: passthrough[I, O]{inner}, service: service}
	}
}

type traced[I, O any] struct {
	passthrough[I, O]
	service string
}

func (t *traced[I, O]) Execute(ctx context.Context, input I) (O, error) {
	backend := t.inner.Name()
	ctx, span := observability.StartSpan(ctx, t.service+"."+backend)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.service)
	observability.SetSpanAttribute(ctx, observability.AttrBackend, backend)

	out, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return out, err
}
