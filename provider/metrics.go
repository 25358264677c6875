package provider

import (
	"context"
	"time"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/observability"
)

// WithMetrics records an "execute" operation per call and counts failures
// by error code.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metered[I, O]{passthrough: passthrough[I, O]{inner}, metrics: metrics}
	}
}

type metered[I, O any] struct {
	passthrough[I, O]
	metrics *observability.Metrics
}

func (m *metered[I, O]) Execute(ctx context.Context, input I) (O, error) {
	name := m.inner.Name()
	start := time.Now()
	out, err := m.inner.Execute(ctx, input)
	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
		m.metrics.RecordError(ctx, string(errors.CodeOf(err)), name)
	}
	m.metrics.RecordOperation(ctx, name, "execute", status, time.Since(start))
	return out, err
}
