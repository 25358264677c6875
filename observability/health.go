package observability

import (
	"context"
	"time"
)

// HealthStatus represents the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual backend.
type Health struct {
	Name    string            `json:"name" yaml:"name"`
	Status  HealthStatus      `json:"status" yaml:"status"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// ServiceHealth describes the overall health of the tool and its backends.
type ServiceHealth struct {
	Service    string       `json:"service" yaml:"service"`
	Status     HealthStatus `json:"status" yaml:"status"`
	Version    string       `json:"version,omitempty" yaml:"version,omitempty"`
	Components []Health     `json:"components,omitempty" yaml:"components,omitempty"`
}

// Probe is anything that can report whether it is ready, such as a
// transcription or diarization backend.
type Probe interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component health result and degrades overall status if needed.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// Check probes p and returns its health. role labels what the backend is
// used for ("transcription", "diarization").
func Check(ctx context.Context, role string, p Probe) Health {
	start := time.Now()
	h := Health{
		Name:    role + "/" + p.Name(),
		Status:  HealthStatusUp,
		Details: map[string]string{},
	}
	if !p.IsAvailable(ctx) {
		h.Status = HealthStatusDown
		h.Message = "backend not reachable"
	}
	h.Details["latency"] = time.Since(start).Round(time.Millisecond).String()
	return h
}
