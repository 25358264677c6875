// Package whispercli implements transcription by running the whisper
// command-line program as a subprocess.
package whispercli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/process"
	"github.com/kbukum/audioscribe/provider"
	"github.com/kbukum/audioscribe/transcription"
)

const (
	// ProviderName is the registered name for the CLI backend.
	ProviderName = "whispercli"

	defaultBinary = "whisper"
)

// Config holds configuration for the whisper CLI backend.
type Config struct {
	Binary      string        `yaml:"binary" mapstructure:"binary"`
	ModelDir    string        `yaml:"model_dir" mapstructure:"model_dir"`
	Device      string        `yaml:"device" mapstructure:"device"`
	ExtraArgs   []string      `yaml:"extra_args" mapstructure:"extra_args"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
}

// Loader resolves the whisper binary.
type Loader struct {
	cfg     Config
	adapter *process.Adapter
	log     *logger.Logger
}

// NewLoader creates a CLI loader.
func NewLoader(cfg Config, log *logger.Logger) *Loader {
	cfg.ApplyDefaults()
	return &Loader{
		cfg: cfg,
		adapter: process.NewAdapter(process.Config{
			Name:        ProviderName,
			Binary:      cfg.Binary,
			GracePeriod: cfg.GracePeriod,
			Timeout:     cfg.Timeout,
		}),
		log: logger.OrGet(log, ProviderName),
	}
}

// Factory returns a provider.Factory building Loaders from a config map.
func Factory(log *logger.Logger) provider.Factory[transcription.Loader] {
	return func(cfg map[string]any) (transcription.Loader, error) {
		var cc Config
		if err := provider.DecodeConfig(cfg, &cc); err != nil {
			return nil, err
		}
		return NewLoader(cc, log), nil
	}
}

// Name returns the provider name.
func (l *Loader) Name() string { return ProviderName }

// IsAvailable reports whether the binary is on PATH.
func (l *Loader) IsAvailable(ctx context.Context) bool { return l.adapter.IsAvailable(ctx) }

// Load checks the binary exists. The program loads the model weights on
// every invocation, so this is where a missing install is reported.
func (l *Loader) Load(ctx context.Context, tier string) (transcription.Provider, error) {
	if err := transcription.CheckTier(tier); err != nil {
		return nil, err
	}
	if !l.adapter.IsAvailable(ctx) {
		return nil, errors.ModelLoadFailed(ProviderName, tier,
			fmt.Errorf("%s: %w", l.cfg.Binary, exec.ErrNotFound))
	}
	l.log.Info("whisper cli ready", logger.Fields(logger.FieldTier, tier, "binary", l.cfg.Binary))
	return &Provider{cfg: l.cfg, adapter: l.adapter, model: tier, log: l.log}, nil
}

// Provider runs one whisper process per file.
type Provider struct {
	cfg     Config
	adapter *process.Adapter
	model   string
	log     *logger.Logger
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the binary is on PATH.
func (p *Provider) IsAvailable(ctx context.Context) bool { return p.adapter.IsAvailable(ctx) }

// Transcribe runs whisper with txt output into a scratch directory and
// reads the result back.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, errors.AudioNotFound(req.AudioPath, err)
	}

	outDir, err := os.MkdirTemp("", "audioscribe-whisper-")
	if err != nil {
		return nil, errors.Internal(err)
	}
	defer os.RemoveAll(outDir)

	result, err := p.adapter.Execute(ctx, process.Command{Args: p.args(req, outDir)})
	if err != nil {
		return nil, err
	}
	p.log.Debug("whisper finished", logger.MergeWithDuration(logger.Fields(logger.FieldFile, req.AudioPath), result.Duration))

	stem := strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))
	data, err := os.ReadFile(filepath.Join(outDir, stem+".txt"))
	if err != nil {
		appErr := errors.ExternalServiceError(ProviderName, fmt.Errorf("no transcript produced: %w", err))
		appErr.Retryable = false
		return nil, appErr.WithDetail("stderr", result.StderrTail(512))
	}

	return &transcription.TranscriptionResponse{Text: joinLines(string(data)), Language: req.Language}, nil
}

func (p *Provider) args(req transcription.TranscriptionRequest, outDir string) []string {
	args := []string{
		req.AudioPath,
		"--model", p.model,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--verbose", "False",
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	if p.cfg.ModelDir != "" {
		args = append(args, "--model_dir", p.cfg.ModelDir)
	}
	if p.cfg.Device != "" {
		args = append(args, "--device", p.cfg.Device)
	}
	return append(args, p.cfg.ExtraArgs...)
}

// joinLines flattens the one-segment-per-line txt output into a single
// space-separated transcript.
func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

var (
	_ transcription.Loader   = (*Loader)(nil)
	_ transcription.Provider = (*Provider)(nil)
)
