// Package observability provides OpenTelemetry tracing and metrics for the
// transcription pipeline.
//
// Nothing is exported unless observability.enabled is set; the global otel
// providers stay no-op and every span and instrument call is free.
//
//	shutdown, err := observability.Setup(ctx, cfg, "audioscribe", version.GetShortVersion(), log)
//	defer shutdown(context.Background())
//
//	metrics, err := observability.NewMetrics(observability.Meter("audioscribe"))
//	op := observability.NewOperationContext("audioscribe", "transcribe_file", runID, path, metrics)
//	ctx, span := op.StartSpanForOperation(ctx, "batch.file")
//	defer op.EndOperation(ctx, span, observability.StatusOK, nil)
package observability
