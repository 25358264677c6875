package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors
const (
	// ErrCodeAudioNotFound indicates the audio file is missing or unreadable.
	ErrCodeAudioNotFound ErrorCode = "AUDIO_NOT_FOUND"
	// ErrCodeUnsupportedPath indicates the input path is neither a file nor a directory.
	ErrCodeUnsupportedPath ErrorCode = "UNSUPPORTED_PATH"
	// ErrCodeInvalidInput indicates invalid configuration or arguments.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Model and backend errors
const (
	// ErrCodeModelLoadFailed indicates the speech model could not be loaded.
	ErrCodeModelLoadFailed ErrorCode = "MODEL_LOAD_FAILED"
	// ErrCodeExternalService indicates an error from a model backend.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeServiceUnavailable indicates the backend is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the backend call timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Output errors
const (
	// ErrCodeOutputFailed indicates the transcript could not be written.
	ErrCodeOutputFailed ErrorCode = "OUTPUT_FAILED"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExternalService:    true,
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
