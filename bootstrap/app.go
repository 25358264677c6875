package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

// App is one command invocation: validated config, logger and the hooks
// around its task.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	grace   time.Duration
	signals []os.Signal
	onStart []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates cfg and builds the logger, which also
// becomes the global one. Validation failures come back as INVALID_INPUT.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidInput) || errors.HasCode(err, errors.ErrCodeMissingField) {
			return nil, err
		}
		return nil, errors.Validation(err.Error()).WithCause(err)
	}

	s := newSettings(opts)
	base := cfg.GetServiceConfig()
	log := s.log
	if log == nil {
		log = logger.New(&base.Logging, base.Name)
		logger.SetGlobalLogger(log)
	}
	return &App[C]{
		Name:    base.Name,
		Version: base.Version,
		Cfg:     cfg,
		Logger:  log,
		grace:   s.grace,
		signals: s.signals,
	}, nil
}

// OnStart hooks run before the task. The first failure skips the task.
func (a *App[C]) OnStart(hooks ...Hook) { a.onStart = append(a.onStart, hooks...) }

// OnStop hooks run after the task, last registered first, within the
// graceful timeout.
func (a *App[C]) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

// RunTask runs the start hooks, then task under a context canceled by the
// configured signals, then the stop hooks. A task error takes precedence
// over a stop hook error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()
	a.Logger.Debug("starting", logger.Fields("name", a.Name, "version", a.Version))

	err := runHooks(ctx, a.onStart)
	if err == nil {
		err = task(ctx)
	}
	if err != nil && stderrors.Is(ctx.Err(), context.Canceled) {
		a.Logger.Warn("interrupted")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()
	hooks := slices.Clone(a.onStop)
	slices.Reverse(hooks)
	if stopErr := runHooks(stopCtx, hooks); stopErr != nil {
		a.Logger.Error("shutdown hook failed", logger.MergeWithError(nil, stopErr))
		if err == nil {
			err = stopErr
		}
	}
	return err
}

func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
