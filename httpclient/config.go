package httpclient

import (
	"time"

	"github.com/kbukum/audioscribe/validation"
)

const defaultTimeout = 120 * time.Second

// Config configures the HTTP client.
type Config struct {
	// Name identifies the remote service in errors and logs.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout bounds a whole request including the upload. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are applied to every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// BearerToken, when set, is sent as an Authorization header.
	BearerToken string `yaml:"bearer_token" mapstructure:"bearer_token"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = "sidecar"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
