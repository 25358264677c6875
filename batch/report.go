package batch

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/storage"
	"github.com/kbukum/audioscribe/version"
)

// Status is the outcome of one source.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one source.
type Result struct {
	Source   string        `yaml:"source"`
	Output   string        `yaml:"output,omitempty"`
	Status   Status        `yaml:"status"`
	Reason   string        `yaml:"reason,omitempty"`
	Err      error         `yaml:"-"`
	Error    string        `yaml:"error,omitempty"`
	Code     string        `yaml:"code,omitempty"`
	Duration time.Duration `yaml:"duration"`
	Markers  int           `yaml:"markers"`
}

func (r *Result) fail(err error) {
	r.Status = StatusFailed
	r.Err = err
	r.Error = err.Error()
	r.Code = string(errors.CodeOf(err))
}

func (r *Result) skip(reason string) {
	r.Status = StatusSkipped
	r.Reason = reason
}

// Counts tallies results by status.
type Counts struct {
	OK      int `yaml:"ok"`
	Failed  int `yaml:"failed"`
	Skipped int `yaml:"skipped"`
}

// Report summarizes one run.
type Report struct {
	RunID      string       `yaml:"run_id"`
	Version    version.Info `yaml:"version"`
	Input      string       `yaml:"input"`
	Backend    string       `yaml:"backend"`
	Tier       string       `yaml:"tier"`
	Language   string       `yaml:"language"`
	Diarized   bool         `yaml:"diarized"`
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at"`
	Counts     Counts       `yaml:"counts"`
	Results    []Result     `yaml:"results"`
}

// HasFailures reports whether any source failed.
func (r *Report) HasFailures() bool {
	return r.Counts.Failed > 0
}

func (r *Report) finish(now time.Time) {
	r.FinishedAt = now
	r.Counts = Counts{}
	for _, res := range r.Results {
		switch res.Status {
		case StatusOK:
			r.Counts.OK++
		case StatusFailed:
			r.Counts.Failed++
		case StatusSkipped:
			r.Counts.Skipped++
		}
	}
}

// YAML encodes the report.
func (r *Report) YAML() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// WriteReport stores the YAML report at path in s.
func WriteReport(ctx context.Context, s storage.Storage, path string, r *Report) error {
	data, err := r.YAML()
	if err != nil {
		return errors.OutputFailed(path, err)
	}
	return storage.WriteText(ctx, s, path, string(data))
}
