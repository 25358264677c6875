package main

import (
	"fmt"

	"github.com/kbukum/audioscribe/batch"
	"github.com/kbukum/audioscribe/config"
	"github.com/kbukum/audioscribe/diarization/pyannote"
	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/observability"
	"github.com/kbukum/audioscribe/resilience"
	"github.com/kbukum/audioscribe/storage"
	"github.com/kbukum/audioscribe/transcription"
	"github.com/kbukum/audioscribe/transcription/whisper"
	"github.com/kbukum/audioscribe/util"
	"github.com/kbukum/audioscribe/validation"
)

const serviceName = "audioscribe"

// AppConfig is the full configuration of the audioscribe command.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Transcription TranscriptionConfig    `yaml:"transcription" mapstructure:"transcription"`
	Diarization   DiarizationConfig      `yaml:"diarization" mapstructure:"diarization"`
	Output        storage.Config         `yaml:"output" mapstructure:"output" validate:"-"`
	Batch         BatchConfig            `yaml:"batch" mapstructure:"batch"`
	Retry         resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`

	// Set from positional arguments, not from config.
	Input string `yaml:"-" mapstructure:"-"`
	Check bool   `yaml:"-" mapstructure:"-"`
}

// TranscriptionConfig selects the speech backend. Any other key in the
// section is a backend-specific block, e.g. transcription.whisper.url.
type TranscriptionConfig struct {
	Backend  string         `yaml:"backend" mapstructure:"backend"`
	Tier     string         `yaml:"tier" mapstructure:"tier"`
	Language string         `yaml:"language" mapstructure:"language"`
	Backends map[string]any `yaml:",inline" mapstructure:",remain"`
}

// DiarizationConfig controls speaker-change markers.
type DiarizationConfig struct {
	Enabled         bool           `yaml:"enabled" mapstructure:"enabled"`
	Backend         string         `yaml:"backend" mapstructure:"backend"`
	NumSpeakers     int            `yaml:"num_speakers" mapstructure:"num_speakers" validate:"min=0"`
	MinSpeakers     int            `yaml:"min_speakers" mapstructure:"min_speakers" validate:"min=0"`
	MaxSpeakers     int            `yaml:"max_speakers" mapstructure:"max_speakers" validate:"min=0"`
	CompensateDrift bool           `yaml:"compensate_drift" mapstructure:"compensate_drift"`
	MarkersOwnLine  bool           `yaml:"markers_own_line" mapstructure:"markers_own_line"`
	Backends        map[string]any `yaml:",inline" mapstructure:",remain"`
}

// BatchConfig holds run policy.
type BatchConfig struct {
	FailFast     bool   `yaml:"fail_fast" mapstructure:"fail_fast"`
	SkipExisting bool   `yaml:"skip_existing" mapstructure:"skip_existing"`
	Report       string `yaml:"report" mapstructure:"report"`
}

// ApplyDefaults fills unset values.
func (c *AppConfig) ApplyDefaults() {
	c.Name = util.Coalesce(c.Name, serviceName)
	c.ServiceConfig.ApplyDefaults()

	c.Transcription.Backend = util.Coalesce(c.Transcription.Backend, whisper.ProviderName)
	c.Transcription.Tier = util.Coalesce(c.Transcription.Tier, transcription.DefaultTier)
	c.Transcription.Language = util.Coalesce(c.Transcription.Language, transcription.DefaultLanguage)
	c.Diarization.Backend = util.Coalesce(c.Diarization.Backend, pyannote.ProviderName)

	if c.Output.Provider != "" || c.Output.BasePath != "" {
		c.Output.ApplyDefaults()
	}

	retry := resilience.DefaultRetryConfig()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = retry.MaxAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = retry.InitialBackoff
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = retry.MaxBackoff
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = retry.BackoffFactor
	}
	c.Retry.RetryIf = retry.RetryIf

	c.Observability.ApplyDefaults()
}

// Validate checks the configuration.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return errors.Validation(err.Error())
	}
	v := validation.New().
		Custom(c.Check || c.Input != "", "input", "is required").
		OneOf("transcription.backend", c.Transcription.Backend, transcriptionBackends).
		OneOf("diarization.backend", c.Diarization.Backend, diarizationBackends)
	if err := v.Validate(); err != nil {
		return err
	}
	if err := transcription.CheckTier(c.Transcription.Tier); err != nil {
		return err
	}
	if c.hasOutput() {
		if err := c.Output.Validate(); err != nil {
			return err
		}
	}
	return validation.Validate(c)
}

func (c *AppConfig) hasOutput() bool {
	return c.Output.Provider != ""
}

// batchConfig flattens the sections the driver needs.
func (c *AppConfig) batchConfig() batch.Config {
	return batch.Config{
		Tier:            c.Transcription.Tier,
		Language:        c.Transcription.Language,
		Diarize:         c.Diarization.Enabled,
		NumSpeakers:     c.Diarization.NumSpeakers,
		MinSpeakers:     c.Diarization.MinSpeakers,
		MaxSpeakers:     c.Diarization.MaxSpeakers,
		CompensateDrift: c.Diarization.CompensateDrift,
		MarkersOwnLine:  c.Diarization.MarkersOwnLine,
		FailFast:        c.Batch.FailFast,
		SkipExisting:    c.Batch.SkipExisting,
	}
}

// backendOptions returns the block for name from a section's extra keys.
func backendOptions(section string, blocks map[string]any, name string) (map[string]any, error) {
	raw, ok := blocks[name]
	if !ok || raw == nil {
		return nil, nil
	}
	opts, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.InvalidInput(section+"."+name, fmt.Sprintf("expected a mapping, got %T", raw))
	}
	return opts, nil
}
