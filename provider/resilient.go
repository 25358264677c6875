package provider

import (
	"context"

	"github.com/kbukum/audioscribe/resilience"
)

// ResilienceConfig holds the retry policy applied to backend calls. A nil
// or single-attempt Retry leaves calls untouched.
type ResilienceConfig struct {
	Retry *resilience.RetryConfig
}

func (c ResilienceConfig) IsEmpty() bool {
	return c.Retry == nil || !c.Retry.Enabled()
}

// WithResilience retries p according to cfg.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &retried[I, O]{passthrough: passthrough[I, O]{p}, retry: *cfg.Retry}
}

// Resilient is WithResilience as a Middleware.
func Resilient[I, O any](cfg ResilienceConfig) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return WithResilience(inner, cfg)
	}
}

type retried[I, O any] struct {
	passthrough[I, O]
	retry resilience.RetryConfig
}

func (r *retried[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return resilience.Retry(ctx, r.retry, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}
