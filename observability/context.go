package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OperationContext tracks one audio file through a run: its span and the
// per-file metrics recorded when it ends.
type OperationContext struct {
	ServiceName   string
	OperationName string
	RunID         string
	File          string
	StartTime     time.Time
	Metrics       *Metrics // optional
}

func NewOperationContext(serviceName, operationName, runID, file string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		ServiceName:   serviceName,
		OperationName: operationName,
		RunID:         runID,
		File:          file,
		StartTime:     time.Now(),
		Metrics:       metrics,
	}
}

// StartSpanForOperation opens spanName tagged with the run and the file.
func (oc *OperationContext) StartSpanForOperation(ctx context.Context, spanName string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrServiceName, oc.ServiceName),
		attribute.String(AttrOperationName, oc.OperationName),
		attribute.String(AttrRunID, oc.RunID),
	}
	if oc.File != "" {
		attrs = append(attrs, attribute.String(AttrFile, oc.File))
	}
	return StartSpan(ctx, spanName, trace.WithAttributes(attrs...))
}

// EndOperation closes span with status and err, then records the file.
func (oc *OperationContext) EndOperation(ctx context.Context, span trace.Span, status string, err error) {
	elapsed := oc.Duration()
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, elapsed.Milliseconds()),
	)
	span.End()

	if oc.Metrics != nil {
		oc.Metrics.RecordFile(ctx, oc.ServiceName, status, elapsed)
	}
}

func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}
