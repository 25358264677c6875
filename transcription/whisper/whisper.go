// Package whisper implements transcription against a faster-whisper HTTP
// sidecar exposing POST /transcribe and GET /health.
package whisper

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/httpclient"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/provider"
	"github.com/kbukum/audioscribe/transcription"
)

const (
	// ProviderName is the registered name for the Whisper sidecar backend.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultTimeout = 10 * time.Minute
)

// Config holds configuration for the Whisper sidecar.
type Config struct {
	URL         string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Device      string        `yaml:"device" mapstructure:"device"`
	ComputeType string        `yaml:"compute_type" mapstructure:"compute_type"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Loader probes the sidecar and hands out a Provider bound to a model tier.
type Loader struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// NewLoader creates a Whisper loader.
func NewLoader(cfg Config, log *logger.Logger) (*Loader, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Loader{cfg: cfg, client: client, log: logger.OrGet(log, ProviderName)}, nil
}

// Factory returns a provider.Factory building Loaders from a config map.
func Factory(log *logger.Logger) provider.Factory[transcription.Loader] {
	return func(cfg map[string]any) (transcription.Loader, error) {
		var wc Config
		if err := provider.DecodeConfig(cfg, &wc); err != nil {
			return nil, err
		}
		return NewLoader(wc, log)
	}
}

// Name returns the provider name.
func (l *Loader) Name() string { return ProviderName }

// IsAvailable checks if the sidecar answers its health endpoint.
func (l *Loader) IsAvailable(ctx context.Context) bool {
	return l.client.Healthy(ctx, "/health")
}

// Load verifies the sidecar is up. The sidecar loads the tier lazily on
// the first request and keeps it resident.
func (l *Loader) Load(ctx context.Context, tier string) (transcription.Provider, error) {
	if err := transcription.CheckTier(tier); err != nil {
		return nil, err
	}
	if _, err := l.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"}); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ModelLoadFailed(ProviderName, tier, err).WithDetail("url", l.cfg.URL)
	}
	l.log.Info("whisper sidecar ready", logger.Fields(logger.FieldTier, tier, "url", l.cfg.URL))
	return &Provider{cfg: l.cfg, client: l.client, model: tier}, nil
}

// Provider transcribes through the sidecar with a fixed model tier.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	model  string
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the sidecar answers its health endpoint.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Healthy(ctx, "/health")
}

// Model returns the tier this provider was loaded with.
func (p *Provider) Model() string { return p.model }

// Transcribe uploads the audio file and returns the sidecar's transcript.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	fields := map[string]string{"model": p.model}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if p.cfg.Device != "" {
		fields["device"] = p.cfg.Device
	}
	if p.cfg.ComputeType != "" {
		fields["compute_type"] = p.cfg.ComputeType
	}

	var result whisperResponse
	err := p.client.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files:  []httpclient.FileField{{FieldName: "audio", Path: req.AudioPath}},
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return toTranscriptionResponse(&result), nil
}

// --- sidecar wire types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toTranscriptionResponse(resp *whisperResponse) *transcription.TranscriptionResponse {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}

	duration := resp.Duration
	if duration == 0 && len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	return &transcription.TranscriptionResponse{
		Text:     resp.Text,
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}

var (
	_ transcription.Loader   = (*Loader)(nil)
	_ transcription.Provider = (*Provider)(nil)
)
