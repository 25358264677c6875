package batch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/merge"
	"github.com/kbukum/audioscribe/observability"
	"github.com/kbukum/audioscribe/pipeline"
	"github.com/kbukum/audioscribe/transcription"
	"github.com/kbukum/audioscribe/version"
)

const (
	reasonOutputExists = "output exists"
	reasonNotProcessed = "run stopped before this file"
	reasonModelLoad    = "model failed to load"
)

// Driver runs batches with one loader, one sink and an optional diarizer.
type Driver struct {
	cfg      Config
	loader   transcription.Loader
	sink     Sink
	diarizer diarization.Provider
	wrap     func(transcription.Provider) transcription.Provider
	log      *logger.Logger
	metrics  *observability.Metrics
	service  string
	now      func() time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger injects the logger. Defaults to the "batch" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithDiarizer sets the provider used when Config.Diarize is on.
func WithDiarizer(p diarization.Provider) Option {
	return func(d *Driver) { d.diarizer = p }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithModelWrapper decorates the loaded model, typically with provider
// middleware.
func WithModelWrapper(fn func(transcription.Provider) transcription.Provider) Option {
	return func(d *Driver) { d.wrap = fn }
}

// WithServiceName sets the service name used on spans and metrics.
func WithServiceName(name string) Option {
	return func(d *Driver) { d.service = name }
}

// New creates a Driver.
func New(cfg Config, loader transcription.Loader, sink Sink, opts ...Option) (*Driver, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, errors.InvalidInput("transcription.backend", "no loader configured")
	}
	if sink == nil {
		return nil, errors.InvalidInput("output", "no sink configured")
	}

	d := &Driver{
		cfg:     cfg,
		loader:  loader,
		sink:    sink,
		service: "audioscribe",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if cfg.Diarize && d.diarizer == nil {
		return nil, errors.InvalidInput("diarization.backend", "diarization requested but no diarizer configured")
	}
	d.log = logger.OrGet(d.log, "batch")

	if d.metrics == nil {
		m, err := observability.NewMetrics(observability.Meter(d.service))
		if err != nil {
			return nil, errors.Internal(err)
		}
		d.metrics = m
	}
	return d, nil
}

type item struct {
	idx int
	src AudioSource
}

// Run transcribes everything under path. The returned report is never nil.
//
// Per-file failures are recorded in the report and do not produce an
// error unless FailFast is set. Resolution errors, a model load failure,
// cancellation and fail-fast stops are returned.
func (d *Driver) Run(ctx context.Context, path string) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Version:   version.Get(),
		Input:     path,
		Backend:   d.loader.Name(),
		Tier:      d.cfg.Tier,
		Language:  d.cfg.Language,
		Diarized:  d.cfg.Diarize,
		StartedAt: d.now(),
	}
	log := d.log.WithFields(logger.Fields(logger.FieldRunID, report.RunID))

	sources, err := Resolve(path, d.cfg.Language, log)
	if err != nil {
		report.finish(d.now())
		return report, err
	}
	log.Info("batch started", logger.Fields(
		"input", path,
		"sources", len(sources),
		logger.FieldBackend, report.Backend,
		logger.FieldTier, d.cfg.Tier,
		logger.FieldLanguage, d.cfg.Language,
	))

	report.Results = make([]Result, len(sources))
	pending := make([]bool, len(sources))
	items := make([]item, len(sources))
	remaining := 0
	for i, src := range sources {
		items[i] = item{idx: i, src: src}
		report.Results[i] = Result{Source: src.Path}
		if d.cfg.SkipExisting && d.outputExists(ctx, log, src) {
			report.Results[i].skip(reasonOutputExists)
			continue
		}
		report.Results[i].skip(reasonNotProcessed)
		pending[i] = true
		remaining++
	}

	if remaining == 0 {
		report.finish(d.now())
		log.Info("nothing to transcribe", logger.Fields("skipped", report.Counts.Skipped))
		return report, nil
	}

	model, err := d.loader.Load(ctx, d.cfg.Tier)
	if err != nil {
		for i := range report.Results {
			if pending[i] {
				report.Results[i].skip(reasonModelLoad)
			}
		}
		report.finish(d.now())
		log.Error("model load failed", logger.MergeWithError(logger.Fields(logger.FieldTier, d.cfg.Tier), err))
		return report, err
	}
	if d.wrap != nil {
		model = d.wrap(model)
	}

	done := 0
	p := pipeline.Tap(
		pipeline.Map(
			pipeline.Filter(pipeline.FromSlice(items), func(it item) bool { return pending[it.idx] }),
			func(ctx context.Context, it item) (item, error) {
				res := d.process(ctx, model, it.src, report.RunID, log)
				report.Results[it.idx] = res
				if res.Status != StatusFailed {
					return it, nil
				}
				if ctx.Err() != nil {
					return it, ctx.Err()
				}
				if d.cfg.FailFast {
					return it, res.Err
				}
				return it, nil
			},
		),
		func(_ context.Context, it item) error {
			done++
			log.Debug("progress", logger.Fields("done", done, "total", remaining))
			return nil
		},
	)
	runErr := pipeline.ForEach(ctx, p, func(context.Context, item) error { return nil })

	report.finish(d.now())
	fields := logger.Fields(
		"ok", report.Counts.OK,
		"failed", report.Counts.Failed,
		"skipped", report.Counts.Skipped,
	)
	fields = logger.MergeWithDuration(fields, report.FinishedAt.Sub(report.StartedAt))
	if runErr != nil {
		log.Error("batch stopped", logger.MergeWithError(fields, runErr))
		return report, runErr
	}
	log.Info("batch finished", fields)
	return report, nil
}

func (d *Driver) outputExists(ctx context.Context, log *logger.Logger, src AudioSource) bool {
	ok, err := d.sink.Exists(ctx, src)
	if err != nil {
		log.Warn("could not check existing output", logger.MergeWithError(logger.Fields(logger.FieldFile, src.Path), err))
		return false
	}
	return ok
}

func (d *Driver) process(ctx context.Context, model transcription.Provider, src AudioSource, runID string, log *logger.Logger) Result {
	oc := observability.NewOperationContext(d.service, "transcribe_file", runID, src.Path, d.metrics)
	ctx, span := oc.StartSpanForOperation(ctx, "batch.file")
	flog := log.WithFields(logger.Fields(logger.FieldFile, src.Path))

	res := Result{Source: src.Path}
	text, markers, err := d.transcribe(ctx, model, src, flog)
	if err == nil {
		res.Output, err = d.sink.Write(ctx, src, text)
	}
	res.Duration = oc.Duration()

	if err != nil {
		res.fail(err)
		d.metrics.RecordError(ctx, res.Code, "batch")
		oc.EndOperation(ctx, span, observability.StatusError, err)
		flog.Error("failed to process file", logger.MergeWithDuration(logger.Fields(
			logger.FieldError, res.Error,
			logger.FieldCode, res.Code,
		), res.Duration))
		return res
	}

	res.Status = StatusOK
	res.Markers = markers
	d.metrics.RecordMarkers(ctx, markers)
	oc.EndOperation(ctx, span, observability.StatusOK, nil)
	flog.Info("transcription saved", logger.MergeWithDuration(logger.Fields(
		logger.FieldOutput, res.Output,
		logger.FieldMarkers, markers,
	), res.Duration))
	return res
}

func (d *Driver) transcribe(ctx context.Context, model transcription.Provider, src AudioSource, log *logger.Logger) (string, int, error) {
	resp, err := model.Transcribe(ctx, transcription.TranscriptionRequest{
		AudioPath: src.Path,
		Language:  src.Language,
	})
	if err != nil {
		return "", 0, err
	}
	if !d.cfg.Diarize {
		return resp.Text, 0, nil
	}

	dr, err := d.diarizer.Diarize(ctx, diarization.DiarizationRequest{
		AudioPath:   src.Path,
		NumSpeakers: d.cfg.NumSpeakers,
		MinSpeakers: d.cfg.MinSpeakers,
		MaxSpeakers: d.cfg.MaxSpeakers,
	})
	if err != nil {
		return "", 0, err
	}

	if len(strings.Fields(resp.Text)) == 0 {
		log.Warn("empty transcript, no speaker markers inserted")
		return resp.Text, 0, nil
	}

	duration := dr.Duration
	if duration <= 0 {
		duration = diarization.Coverage(dr.Segments)
	}
	text, n := merge.Insert(resp.Text, dr.Segments, duration, merge.Options{
		CompensateDrift: d.cfg.CompensateDrift,
		OwnLine:         d.cfg.MarkersOwnLine,
	})
	log.Debug("speaker markers inserted", logger.Fields(
		logger.FieldMarkers, n,
		"segments", len(dr.Segments),
		"speakers", dr.NumSpeakers,
	))
	return text, n, nil
}
