package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// AppError is the error type returned across package boundaries. Batch
// results and the run report carry its Code; the retry middleware reads
// Retryable.
type AppError struct {
	Code      ErrorCode      `json:"code" yaml:"code"`
	Message   string         `json:"message" yaml:"message"`
	Retryable bool           `json:"retryable" yaml:"retryable"`
	Details   map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Cause     error          `json:"-" yaml:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the wrapped error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into e.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New creates an AppError whose Retryable flag follows the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Retryable: IsRetryableCode(code)}
}

func newf(code ErrorCode, cause error, details map[string]any, format string, args ...any) *AppError {
	e := New(code, fmt.Sprintf(format, args...))
	e.Cause = cause
	if len(details) > 0 {
		e.Details = details
	}
	return e
}

func AudioNotFound(path string, cause error) *AppError {
	return newf(ErrCodeAudioNotFound, cause, map[string]any{"path": path},
		"audio file %s is missing or unreadable", path)
}

func UnsupportedPath(path string) *AppError {
	return newf(ErrCodeUnsupportedPath, nil, map[string]any{"path": path},
		"%s is neither a file nor a directory", path)
}

func ModelLoadFailed(backend, tier string, cause error) *AppError {
	return newf(ErrCodeModelLoadFailed, cause, map[string]any{"backend": backend, "tier": tier},
		"could not load %s model %q", backend, tier)
}

// ExternalServiceError wraps a failure reported by a backend. It is
// retryable until a caller that knows better clears the flag.
func ExternalServiceError(service string, cause error) *AppError {
	return newf(ErrCodeExternalService, cause, map[string]any{"service": service},
		"%s backend call failed", service)
}

func ServiceUnavailable(service string) *AppError {
	return newf(ErrCodeServiceUnavailable, nil, map[string]any{"service": service},
		"%s backend is unreachable", service)
}

func Timeout(operation string) *AppError {
	return newf(ErrCodeTimeout, nil, map[string]any{"operation": operation},
		"%s timed out", operation)
}

func OutputFailed(path string, cause error) *AppError {
	return newf(ErrCodeOutputFailed, cause, map[string]any{"path": path},
		"could not write %s", path)
}

// InvalidInput reports a bad flag or config value. field may be empty.
func InvalidInput(field, reason string) *AppError {
	var details map[string]any
	if field != "" {
		details = map[string]any{"field": field}
	}
	return newf(ErrCodeInvalidInput, nil, details, "invalid input: %s", reason)
}

// Validation reports one or more failed config checks.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

func MissingField(field string) *AppError {
	return newf(ErrCodeMissingField, nil, map[string]any{"field": field},
		"missing required field %s", field)
}

func Internal(cause error) *AppError {
	return newf(ErrCodeInternal, cause, nil, "unexpected internal error")
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// HasCode reports whether err carries an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// CodeOf returns err's code, INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
