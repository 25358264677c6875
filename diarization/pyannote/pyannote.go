// Package pyannote implements diarization against a pyannote.audio HTTP
// sidecar exposing POST /diarize and GET /health.
package pyannote

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/httpclient"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/provider"
)

const (
	// ProviderName is the registered name for the Pyannote provider.
	ProviderName = "pyannote"

	defaultURL     = "http://localhost:8388"
	defaultTimeout = 15 * time.Minute
)

// Config holds configuration for the Pyannote diarization provider.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// HFToken is forwarded as a bearer token for gated pipelines.
	HFToken     string `yaml:"hf_token" mapstructure:"hf_token"`
	NumSpeakers int    `yaml:"num_speakers" mapstructure:"num_speakers" validate:"min=0"`
	MinSpeakers int    `yaml:"min_speakers" mapstructure:"min_speakers" validate:"min=0"`
	MaxSpeakers int    `yaml:"max_speakers" mapstructure:"max_speakers" validate:"min=0"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider implements diarization.Provider using the Pyannote HTTP sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// NewProvider creates a new Pyannote diarization provider.
func NewProvider(cfg Config, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		Name:        ProviderName,
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		BearerToken: cfg.HFToken,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client, log: logger.OrGet(log, ProviderName)}, nil
}

// Factory returns a provider.Factory that creates Pyannote providers
// from a generic config map.
func Factory(log *logger.Logger) provider.Factory[diarization.Provider] {
	return func(cfg map[string]any) (diarization.Provider, error) {
		var pc Config
		if err := provider.DecodeConfig(cfg, &pc); err != nil {
			return nil, err
		}
		return NewProvider(pc, log)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Pyannote sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Healthy(ctx, "/health")
}

// Diarize sends audio to the Pyannote sidecar and returns diarization results.
// Speaker counts on the request override the configured ones.
func (p *Provider) Diarize(ctx context.Context, req diarization.DiarizationRequest) (*diarization.DiarizationResponse, error) {
	fields := map[string]string{}
	setCount(fields, "num_speakers", req.NumSpeakers, p.cfg.NumSpeakers)
	setCount(fields, "min_speakers", req.MinSpeakers, p.cfg.MinSpeakers)
	setCount(fields, "max_speakers", req.MaxSpeakers, p.cfg.MaxSpeakers)

	var result pyannoteResponse
	err := p.client.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/diarize",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files:  []httpclient.FileField{{FieldName: "audio", Path: req.AudioPath}},
		},
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.Error != "" {
		appErr := errors.ExternalServiceError(ProviderName, stderrors.New(result.Error))
		appErr.Retryable = false
		return nil, appErr
	}

	resp := toDiarizationResponse(&result)
	p.log.Debug("diarization done", logger.Fields(
		logger.FieldFile, req.AudioPath,
		"segments", len(resp.Segments),
		"speakers", resp.NumSpeakers,
	))
	return resp, nil
}

func setCount(fields map[string]string, key string, values ...int) {
	for _, v := range values {
		if v > 0 {
			fields[key] = strconv.Itoa(v)
			return
		}
	}
}

// --- sidecar wire types ---

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Duration    float64           `json:"duration,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func toDiarizationResponse(resp *pyannoteResponse) *diarization.DiarizationResponse {
	segments := make([]diarization.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = diarization.Segment{
			Speaker: seg.SpeakerID,
			Start:   seg.StartTime,
			End:     seg.EndTime,
		}
	}

	duration := resp.Duration
	if duration <= 0 {
		duration = diarization.Coverage(segments)
	}
	numSpeakers := resp.NumSpeakers
	if numSpeakers == 0 {
		numSpeakers = len(diarization.Speakers(segments))
	}

	return &diarization.DiarizationResponse{
		Segments:    segments,
		NumSpeakers: numSpeakers,
		Duration:    duration,
	}
}

var _ diarization.Provider = (*Provider)(nil)
