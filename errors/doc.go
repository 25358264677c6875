// Package errors provides the structured error type used across audioscribe.
// Every failure that crosses a package boundary carries a machine-readable
// code and a retryable flag so the batch driver can report it per file and
// the provider resilience chain can decide whether to try again.
package errors
