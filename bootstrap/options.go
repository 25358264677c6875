package bootstrap

import (
	"os"
	"syscall"
	"time"

	"github.com/kbukum/audioscribe/config"
	"github.com/kbukum/audioscribe/logger"
)

// Config is satisfied by any struct embedding config.ServiceConfig; it may
// override ApplyDefaults and Validate.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

type settings struct {
	log     *logger.Logger
	grace   time.Duration
	signals []os.Signal
}

func newSettings(opts []Option) settings {
	s := settings{
		grace:   10 * time.Second,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

type Option func(*settings)

// WithLogger skips building a logger from the config.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout bounds the stop hooks. Defaults to 10s.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.grace = d }
}

// WithSignals replaces SIGINT and SIGTERM as the signals that cancel the
// task.
func WithSignals(sigs ...os.Signal) Option {
	return func(s *settings) { s.signals = sigs }
}
