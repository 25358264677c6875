// Package batch drives transcription over a file or a directory tree.
//
// A run resolves the input path to audio sources, loads the speech model
// once, then handles each source in turn: transcribe, optionally diarize
// and insert speaker-change markers, write <stem>.txt to a Sink. Every
// source yields a Result; the run yields a Report.
//
//	d, err := batch.New(cfg, loader, batch.NewStorageSink(out),
//		batch.WithLogger(log),
//		batch.WithDiarizer(diarizer),
//	)
//	report, err := d.Run(ctx, "recordings/")
package batch
