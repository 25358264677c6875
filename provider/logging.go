package provider

import (
	"context"
	"time"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
)

// WithLogging logs every call at debug level, and failures at error level
// with their code.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &logged[I, O]{passthrough: passthrough[I, O]{inner}, log: log}
	}
}

type logged[I, O any] struct {
	passthrough[I, O]
	log *logger.Logger
}

func (l *logged[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	out, err := l.inner.Execute(ctx, input)
	fields := logger.MergeWithDuration(logger.Fields(logger.FieldBackend, l.inner.Name()), time.Since(start))
	if err == nil {
		l.log.Debug("backend call ok", fields)
		return out, nil
	}
	fields = logger.MergeWithError(fields, err)
	fields[logger.FieldCode] = string(errors.CodeOf(err))
	l.log.Error("backend call failed", fields)
	return out, err
}
