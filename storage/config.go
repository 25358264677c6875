package storage

import "github.com/kbukum/audioscribe/validation"

// Provider constants for supported storage backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider = ProviderLocal
	DefaultRegion   = "us-east-1"
)

// Config holds output storage configuration.
type Config struct {
	// Provider selects the storage backend: "local" or "s3".
	Provider string `yaml:"provider" mapstructure:"provider" validate:"oneof=local s3"`

	// BasePath is the output directory for local storage.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`

	// Bucket is the S3 bucket name.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`

	// Prefix is prepended to every S3 object key.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`

	// Region is the AWS region for S3.
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// AccessKey and SecretKey are static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Provider == ProviderS3 && c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	switch c.Provider {
	case ProviderLocal:
		v.Required("output.base_path", c.BasePath)
	case ProviderS3:
		v.Required("output.bucket", c.Bucket)
		v.Required("output.region", c.Region)
		v.Custom((c.AccessKey == "") == (c.SecretKey == ""), "output.secret_key", "access_key and secret_key must be set together")
	}
	return v.Validate()
}

// IsRemote reports whether outputs leave the local machine.
func (c *Config) IsRemote() bool {
	return c.Provider != ProviderLocal
}
