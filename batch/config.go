package batch

import (
	"github.com/kbukum/audioscribe/transcription"
	"github.com/kbukum/audioscribe/validation"
)

// Config controls one batch run.
type Config struct {
	Tier     string `mapstructure:"tier"`
	Language string `mapstructure:"language"`

	// Diarize inserts speaker-change markers. Requires a diarizer.
	Diarize     bool `mapstructure:"diarize"`
	NumSpeakers int  `mapstructure:"num_speakers" validate:"min=0"`
	MinSpeakers int  `mapstructure:"min_speakers" validate:"min=0"`
	MaxSpeakers int  `mapstructure:"max_speakers" validate:"min=0"`

	CompensateDrift bool `mapstructure:"compensate_drift"`
	MarkersOwnLine  bool `mapstructure:"markers_own_line"`

	// FailFast stops at the first failed source.
	FailFast bool `mapstructure:"fail_fast"`
	// SkipExisting leaves sources whose output already exists untouched.
	SkipExisting bool `mapstructure:"skip_existing"`
}

// ApplyDefaults fills the model tier and language.
func (c *Config) ApplyDefaults() {
	if c.Tier == "" {
		c.Tier = transcription.DefaultTier
	}
	if c.Language == "" {
		c.Language = transcription.DefaultLanguage
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := transcription.CheckTier(c.Tier); err != nil {
		return err
	}
	if err := validation.New().
		Required("transcription.language", c.Language).
		Custom(c.MaxSpeakers == 0 || c.MinSpeakers <= c.MaxSpeakers,
			"diarization.min_speakers", "must not exceed max_speakers").
		Validate(); err != nil {
		return err
	}
	return validation.Validate(c)
}
