// Package resilience retries backend calls that fail with a retryable error.
//
// The defaults never retry: one attempt per call, the behavior of the
// original scripts. Raising retry.max_attempts enables exponential backoff
// for errors marked retryable (backend unavailable, timeouts, 5xx), while
// missing files and invalid input still fail on the first attempt.
//
//	text, err := resilience.Retry(ctx, cfg, func() (string, error) {
//	    return backend.Transcribe(ctx, path)
//	})
package resilience
