// Package openai implements transcription with the OpenAI audio API.
package openai

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/provider"
	"github.com/kbukum/audioscribe/transcription"
	"github.com/kbukum/audioscribe/util"
)

const (
	// ProviderName is the registered name for the OpenAI backend.
	ProviderName = "openai"

	// DefaultModel is the only hosted whisper model, used for every tier.
	DefaultModel = "whisper-1"

	defaultTimeout = 10 * time.Minute
)

// Config holds configuration for the OpenAI backend.
type Config struct {
	// APIKey falls back to OPENAI_API_KEY when empty.
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Organization string        `yaml:"organization" mapstructure:"organization"`
	Model        string        `yaml:"model" mapstructure:"model"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Loader checks credentials and builds the API client.
type Loader struct {
	cfg Config
	log *logger.Logger
}

// NewLoader creates an OpenAI loader.
func NewLoader(cfg Config, log *logger.Logger) *Loader {
	cfg.ApplyDefaults()
	return &Loader{cfg: cfg, log: logger.OrGet(log, ProviderName)}
}

// Factory returns a provider.Factory building Loaders from a config map.
func Factory(log *logger.Logger) provider.Factory[transcription.Loader] {
	return func(cfg map[string]any) (transcription.Loader, error) {
		var oc Config
		if err := provider.DecodeConfig(cfg, &oc); err != nil {
			return nil, err
		}
		return NewLoader(oc, log), nil
	}
}

// Name returns the provider name.
func (l *Loader) Name() string { return ProviderName }

// IsAvailable reports whether an API key is configured.
func (l *Loader) IsAvailable(_ context.Context) bool { return l.cfg.APIKey != "" }

// Load builds the client. The hosted API has a single whisper model, so
// the tier only selects the model when no override is configured.
func (l *Loader) Load(_ context.Context, tier string) (transcription.Provider, error) {
	if err := transcription.CheckTier(tier); err != nil {
		return nil, err
	}
	if l.cfg.APIKey == "" {
		return nil, errors.ModelLoadFailed(ProviderName, tier,
			stderrors.New("no API key: set transcription.openai.api_key or OPENAI_API_KEY"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(l.cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: l.cfg.Timeout}),
		// retries are owned by the resilience middleware
		option.WithMaxRetries(0),
	}
	if l.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(l.cfg.BaseURL))
	}
	if l.cfg.Organization != "" {
		opts = append(opts, option.WithOrganization(l.cfg.Organization))
	}

	l.log.Info("openai transcription ready", logger.Fields(
		logger.FieldTier, tier,
		"model", l.cfg.Model,
		"api_key", util.MaskSecret(l.cfg.APIKey, 3),
	))
	return &Provider{client: oai.NewClient(opts...), model: l.cfg.Model}, nil
}

// Provider transcribes through the OpenAI API.
type Provider struct {
	client oai.Client
	model  string
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable always reports true once loaded.
func (p *Provider) IsAvailable(_ context.Context) bool { return true }

// Transcribe uploads the audio file and returns the text.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, errors.AudioNotFound(req.AudioPath, err)
	}
	defer f.Close()

	params := oai.AudioTranscriptionNewParams{
		Model: oai.AudioModel(p.model),
		File:  f,
	}
	if req.Language != "" {
		params.Language = oai.String(req.Language)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return &transcription.TranscriptionResponse{Text: resp.Text, Language: req.Language}, nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if stderrors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return errors.Timeout(ProviderName).WithCause(err)
	}

	appErr := errors.ExternalServiceError(ProviderName, err)
	var apiErr *oai.Error
	if stderrors.As(err, &apiErr) {
		appErr.WithDetail("status", apiErr.StatusCode)
		appErr.Retryable = apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return appErr
}

var (
	_ transcription.Loader   = (*Loader)(nil)
	_ transcription.Provider = (*Provider)(nil)
)
