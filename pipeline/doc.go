// Package pipeline provides lazy, pull-based sequential pipelines.
//
// No work happens until values are pulled via Drain or ForEach.
// Each stage pulls one value from the previous stage on demand, so at
// most one item is in flight at a time. Pulling stops at the first error
// or when the context is done.
//
//	src := pipeline.FromSlice(sources)
//	done := pipeline.Map(pipeline.Filter(src, pending), transcribe)
//	err := pipeline.ForEach(ctx, pipeline.Tap(done, logResult), record)
package pipeline
