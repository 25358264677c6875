package process

import (
	"context"
	"errors"
	"os/exec"
	"time"

	apperrors "github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/provider"
)

var _ provider.RequestResponse[Command, *Result] = (*Adapter)(nil)

// Config configures a process adapter.
type Config struct {
	// Name identifies this adapter instance in logs and errors.
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	// Binary, when set, is resolved on PATH by IsAvailable.
	Binary string `yaml:"binary,omitempty" mapstructure:"binary"`
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout is the default execution timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Adapter wraps subprocess execution as a provider.RequestResponse.
type Adapter struct {
	config Config
}

// NewAdapter creates a new process adapter.
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{config: cfg}
}

// Run executes a command, applying adapter-level defaults. Failures are
// returned as EXTERNAL_SERVICE_ERROR carrying the tail of stderr; a
// canceled context is returned unwrapped.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && a.config.GracePeriod > 0 {
		cmd.GracePeriod = a.config.GracePeriod
	}
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	result, err := Run(ctx, cmd)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return result, apperrors.Timeout(a.Name()).WithCause(err)
	}
	appErr := apperrors.ExternalServiceError(a.Name(), err)
	if result != nil {
		appErr.WithDetail("exit_code", result.ExitCode)
		if tail := result.StderrTail(512); tail != "" {
			appErr.WithDetail("stderr", tail)
		}
	}
	return result, appErr
}

// Name returns the adapter name, falling back to the binary.
func (a *Adapter) Name() string {
	if a.config.Name != "" {
		return a.config.Name
	}
	return a.config.Binary
}

// IsAvailable reports whether the configured binary can be found on PATH.
// Adapters without a fixed binary are always available.
func (a *Adapter) IsAvailable(_ context.Context) bool {
	if a.config.Binary == "" {
		return true
	}
	_, err := exec.LookPath(a.config.Binary)
	return err == nil
}

// Execute runs a command (implements provider.RequestResponse[Command, *Result]).
func (a *Adapter) Execute(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		cmd.Binary = a.config.Binary
	}
	return a.Run(ctx, cmd)
}
