package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

// Logger is a zerolog logger bound to a service name.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New builds a logger writing to cfg.Output.
func New(cfg *Config, service string) *Logger {
	w := io.Writer(os.Stderr)
	if strings.EqualFold(cfg.Output, "stdout") {
		w = os.Stdout
	}
	return NewWithWriter(cfg, service, w)
}

// NewWithWriter builds a logger writing to w. An unknown level falls back
// to info.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case "", FormatConsole, FormatPretty:
		zl = zerolog.New(consoleWriter(w, service, cfg.NoColor))
	default:
		zl = zerolog.New(w)
		if service != "" {
			zl = zl.With().Str("service", service).Logger()
		}
	}
	ctx := zl.Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return &Logger{zl: ctx.Logger(), service: service}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) with(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl, service: l.service}
}

// WithComponent tags every entry with component=name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.with(l.zl.With().Str(FieldComponent, name).Logger())
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.with(l.zl.With().Fields(fields).Logger())
}

func (l *Logger) WithError(err error) *Logger {
	return l.with(l.zl.With().Err(err).Logger())
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, f := range fields {
		e.Fields(f)
	}
	e.Msg(msg)
}

var global atomic.Pointer[Logger]

// SetGlobalLogger replaces the process-wide fallback logger. nil resets it.
func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the fallback logger, creating a console logger
// on first use.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	cfg := Config{}
	cfg.ApplyDefaults()
	l := New(&cfg, "")
	global.CompareAndSwap(nil, l)
	return global.Load()
}

// OrGet returns l, or the global logger when l is nil, tagged with
// component.
func OrGet(l *Logger, component string) *Logger {
	if l == nil {
		l = GetGlobalLogger()
	}
	return l.WithComponent(component)
}
