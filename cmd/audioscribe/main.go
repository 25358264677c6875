// Command audioscribe transcribes an audio file, or every audio file under
// a directory, into <stem>.txt transcripts, optionally marking speaker
// changes.
//
//	audioscribe [flags] <input> [output-folder]
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/audioscribe/batch"
	"github.com/kbukum/audioscribe/bootstrap"
	"github.com/kbukum/audioscribe/config"
	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/diarization/pyannote"
	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/observability"
	"github.com/kbukum/audioscribe/provider"
	"github.com/kbukum/audioscribe/storage"
	"github.com/kbukum/audioscribe/storage/local"
	_ "github.com/kbukum/audioscribe/storage/s3"
	"github.com/kbukum/audioscribe/transcription"
	"github.com/kbukum/audioscribe/transcription/awstranscribe"
	"github.com/kbukum/audioscribe/transcription/openai"
	"github.com/kbukum/audioscribe/transcription/whisper"
	"github.com/kbukum/audioscribe/transcription/whispercli"
	"github.com/kbukum/audioscribe/version"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

var (
	transcriptionBackends = []string{whisper.ProviderName, openai.ProviderName, whispercli.ProviderName, awstranscribe.ProviderName}
	diarizationBackends   = []string{pyannote.ProviderName}
)

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"model-size":    "transcription.tier",
	"language":      "transcription.language",
	"backend":       "transcription.backend",
	"diarize":       "diarization.enabled",
	"fail-fast":     "batch.fail_fast",
	"skip-existing": "batch.skip_existing",
	"report":        "batch.report",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] <input> [output-folder]\n\n", serviceName)
		fs.PrintDefaults()
	}

	fs.String("model-size", transcription.DefaultTier, "model tier (tiny, base, small, medium, large, ...)")
	fs.String("language", transcription.DefaultLanguage, "spoken language code")
	fs.String("backend", whisper.ProviderName, "transcription backend (whisper, openai, whispercli, awstranscribe)")
	fs.Bool("diarize", false, "insert speaker-change markers")
	fs.Bool("fail-fast", false, "stop at the first failed file")
	fs.Bool("skip-existing", false, "skip files whose transcript already exists")
	fs.String("report", "", "write a YAML run report to this file")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-format", "", "log format (console, json)")
	configFile := fs.String("config", "", "config file")
	envFile := fs.String("env-file", "", ".env file")
	showVersion := fs.Bool("version", false, "print version and exit")
	check := fs.Bool("check", false, "probe the configured backends and exit")

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.Get().String())
		return exitOK
	}
	if fs.NArg() > 2 || (fs.NArg() == 0 && !*check) {
		fs.Usage()
		return exitUsage
	}

	var cfg AppConfig
	opts := []config.LoaderOption{config.WithFlags(fs, flagKeys)}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return exitUsage
	}
	cfg.Check = *check
	cfg.Input = fs.Arg(0)
	if out := fs.Arg(1); out != "" {
		cfg.Output.Provider = storage.ProviderLocal
		cfg.Output.BasePath = out
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return exitUsage
	}

	var shutdownTelemetry observability.ShutdownFunc
	app.OnStart(func(ctx context.Context) error {
		fn, err := observability.Setup(ctx, cfg.Observability, serviceName, version.Get().Short(), app.Logger)
		shutdownTelemetry = fn
		return err
	})
	app.OnStop(func(ctx context.Context) error {
		if shutdownTelemetry == nil {
			return nil
		}
		return shutdownTelemetry(ctx)
	})

	code := exitOK
	err = app.RunTask(ctx, func(ctx context.Context) error {
		c, err := execute(ctx, app.Cfg, app.Logger, stdout)
		code = c
		return err
	})
	if err != nil {
		app.Logger.Error("audioscribe failed", logger.Fields(
			logger.FieldError, err.Error(),
			logger.FieldCode, string(errors.CodeOf(err)),
		))
		return exitFail
	}
	return code
}

// execute wires the backends and runs either the health check or a batch.
func execute(ctx context.Context, cfg *AppConfig, log *logger.Logger, stdout io.Writer) (int, error) {
	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return exitFail, errors.Internal(err)
	}

	loader, err := newLoader(cfg, log)
	if err != nil {
		return exitFail, err
	}
	var diarizer diarization.Provider
	if cfg.Diarization.Enabled || cfg.Check {
		diarizer, err = newDiarizer(cfg, log, metrics)
		if err != nil {
			return exitFail, err
		}
	}

	if cfg.Check {
		return check(ctx, loader, diarizer, cfg.Diarization.Enabled, stdout)
	}

	sink, err := newSink(cfg, log)
	if err != nil {
		return exitFail, err
	}

	opts := []batch.Option{
		batch.WithLogger(log),
		batch.WithMetrics(metrics),
		batch.WithServiceName(serviceName),
		batch.WithModelWrapper(func(p transcription.Provider) transcription.Provider {
			return transcription.Wrap(p, transcriptionMiddleware(cfg, log, metrics)...)
		}),
	}
	if cfg.Diarization.Enabled {
		opts = append(opts, batch.WithDiarizer(diarizer))
	}

	driver, err := batch.New(cfg.batchConfig(), loader, sink, opts...)
	if err != nil {
		return exitFail, err
	}

	report, runErr := driver.Run(ctx, cfg.Input)
	if cfg.Batch.Report != "" {
		if err := writeReport(ctx, cfg.Batch.Report, report); err != nil {
			log.Error("failed to write report", logger.MergeWithError(logger.Fields(logger.FieldOutput, cfg.Batch.Report), err))
			if runErr == nil {
				runErr = err
			}
		}
	}
	if runErr != nil {
		return exitFail, runErr
	}
	if report.HasFailures() {
		return exitFail, nil
	}
	return exitOK, nil
}

func newLoader(cfg *AppConfig, log *logger.Logger) (transcription.Loader, error) {
	reg := transcription.NewRegistry()
	reg.RegisterFactory(whisper.ProviderName, whisper.Factory(log))
	reg.RegisterFactory(openai.ProviderName, openai.Factory(log))
	reg.RegisterFactory(whispercli.ProviderName, whispercli.Factory(log))
	reg.RegisterFactory(awstranscribe.ProviderName, awstranscribe.Factory(log))

	name := cfg.Transcription.Backend
	opts, err := backendOptions("transcription", cfg.Transcription.Backends, name)
	if err != nil {
		return nil, err
	}
	return reg.Create(name, opts)
}

func newDiarizer(cfg *AppConfig, log *logger.Logger, metrics *observability.Metrics) (diarization.Provider, error) {
	reg := diarization.NewRegistry()
	reg.RegisterFactory(pyannote.ProviderName, pyannote.Factory(log))

	name := cfg.Diarization.Backend
	opts, err := backendOptions("diarization", cfg.Diarization.Backends, name)
	if err != nil {
		return nil, err
	}
	p, err := reg.Create(name, opts)
	if err != nil {
		return nil, err
	}
	return diarization.Wrap(p,
		provider.WithLogging[diarization.DiarizationRequest, *diarization.DiarizationResponse](log),
		provider.WithMetrics[diarization.DiarizationRequest, *diarization.DiarizationResponse](metrics),
		provider.WithTracing[diarization.DiarizationRequest, *diarization.DiarizationResponse](serviceName),
		provider.Resilient[diarization.DiarizationRequest, *diarization.DiarizationResponse](resilienceConfig(cfg, log)),
	), nil
}

func transcriptionMiddleware(cfg *AppConfig, log *logger.Logger, metrics *observability.Metrics) []provider.Middleware[transcription.TranscriptionRequest, *transcription.TranscriptionResponse] {
	return []provider.Middleware[transcription.TranscriptionRequest, *transcription.TranscriptionResponse]{
		provider.WithLogging[transcription.TranscriptionRequest, *transcription.TranscriptionResponse](log),
		provider.WithMetrics[transcription.TranscriptionRequest, *transcription.TranscriptionResponse](metrics),
		provider.WithTracing[transcription.TranscriptionRequest, *transcription.TranscriptionResponse](serviceName),
		provider.Resilient[transcription.TranscriptionRequest, *transcription.TranscriptionResponse](resilienceConfig(cfg, log)),
	}
}

func resilienceConfig(cfg *AppConfig, log *logger.Logger) provider.ResilienceConfig {
	retry := cfg.Retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn("retrying backend call", logger.MergeWithError(logger.Fields(
			"attempt", attempt,
			"backoff", wait.String(),
		), err))
	}
	return provider.ResilienceConfig{Retry: &retry}
}

func newSink(cfg *AppConfig, log *logger.Logger) (batch.Sink, error) {
	if !cfg.hasOutput() {
		return batch.SiblingSink{}, nil
	}
	s, err := storage.New(cfg.Output, log)
	if err != nil {
		return nil, err
	}
	return batch.NewStorageSink(s), nil
}

func writeReport(ctx context.Context, path string, report *batch.Report) error {
	dir, err := local.NewStorage(filepath.Dir(path))
	if err != nil {
		return errors.OutputFailed(path, err)
	}
	return batch.WriteReport(ctx, dir, filepath.Base(path), report)
}

// check probes the backends concurrently and prints their health as YAML.
func check(ctx context.Context, loader transcription.Loader, diarizer diarization.Provider, diarize bool, stdout io.Writer) (int, error) {
	health := observability.NewServiceHealth(serviceName, version.Get().Short())

	var th, dh observability.Health
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		th = observability.Check(gctx, "transcription", loader)
		return nil
	})
	if diarizer != nil {
		g.Go(func() error {
			dh = observability.Check(gctx, "diarization", diarizer)
			return nil
		})
	}
	_ = g.Wait()

	health.AddComponent(th)
	if diarizer != nil {
		if !diarize && dh.Status == observability.HealthStatusDown {
			dh.Status = observability.HealthStatusDegraded
			dh.Message = "backend not reachable (diarization disabled)"
		}
		health.AddComponent(dh)
	}

	out, err := yaml.Marshal(health)
	if err != nil {
		return exitFail, errors.Internal(err)
	}
	if _, err := stdout.Write(out); err != nil {
		return exitFail, errors.OutputFailed("stdout", err)
	}
	if health.Status == observability.HealthStatusDown {
		return exitFail, nil
	}
	return exitOK, nil
}
