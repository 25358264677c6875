package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/kbukum/audioscribe/logger"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP
// every cfg.Interval. Shut it down on exit so the last file metrics are
// flushed.
func InitMeter(ctx context.Context, cfg Config, res *resource.Resource, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.OrGet(log, "observability").Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics are the instruments shared by the batch driver and the backend
// middleware.
type Metrics struct {
	fileTotal         metric.Int64Counter
	fileDuration      metric.Float64Histogram
	markerTotal       metric.Int64Counter
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewMetrics registers the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		if c, err = meter.Int64Counter(name, metric.WithDescription(desc)); err != nil {
			err = fmt.Errorf("creating %s counter: %w", name, err)
		}
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		if err != nil {
			return nil
		}
		var h metric.Float64Histogram
		if h, err = meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s")); err != nil {
			err = fmt.Errorf("creating %s histogram: %w", name, err)
		}
		return h
	}

	m.fileTotal = counter("audioscribe.files.total", "Audio files processed, by outcome")
	m.fileDuration = histogram("audioscribe.file.duration", "Wall time spent on one audio file")
	m.markerTotal = counter("audioscribe.markers.total", "Speaker-change markers inserted into transcripts")
	m.operationTotal = counter("audioscribe.backend.calls", "Backend calls, by backend and outcome")
	m.operationDuration = histogram("audioscribe.backend.duration", "Duration of backend calls")
	m.errorTotal = counter("audioscribe.errors.total", "Errors by code and component")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordFile records one processed audio file.
func (m *Metrics) RecordFile(ctx context.Context, service, status string, duration time.Duration) {
	m.fileTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("status", status),
	))
	m.fileDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
	))
}

// RecordMarkers adds n inserted speaker-change markers.
func (m *Metrics) RecordMarkers(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	m.markerTotal.Add(ctx, int64(n))
}

// RecordOperation records a backend call.
func (m *Metrics) RecordOperation(ctx context.Context, backend, operation, status string, duration time.Duration) {
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
