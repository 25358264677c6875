package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/audioscribe/logger"
)

// Config is the observability section of the application config.
type Config struct {
	// Enabled turns on OTLP export of traces and metrics.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure disables TLS for the exporter.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Environment is reported as a resource attribute.
	Environment string `yaml:"environment" mapstructure:"environment"`
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,max=1"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills unset fields with development defaults.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// ShutdownFunc flushes and stops the exporters.
type ShutdownFunc func(ctx context.Context) error

// Setup initializes tracer and meter providers when cfg.Enabled is set.
// The returned ShutdownFunc is always non-nil.
func Setup(ctx context.Context, cfg Config, serviceName, serviceVersion string, log *logger.Logger) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}
	cfg.ApplyDefaults()

	res, err := newResource(serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		return noop, fmt.Errorf("creating resource: %w", err)
	}
	tp, err := InitTracer(ctx, cfg, res, log)
	if err != nil {
		return noop, err
	}
	mp, err := InitMeter(ctx, cfg, res, log)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return noop, err
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
