package logger

import "time"

// Field keys shared across the batch driver and the backends.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldError     = "error"
	FieldCode      = "code"
	FieldDuration  = "duration_ms"
	FieldFile      = "file"
	FieldOutput    = "output"
	FieldBackend   = "backend"
	FieldTier      = "tier"
	FieldLanguage  = "language"
	FieldMarkers   = "markers"
)

// Fields pairs up alternating keys and values. Non-string keys and a
// trailing key without a value are dropped.
//
//	log.Info("transcription saved", logger.Fields(logger.FieldOutput, path))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// MergeWithError sets the error field, allocating fields when nil.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields[FieldError] = err.Error()
	return fields
}

// MergeWithDuration sets duration_ms, allocating fields when nil.
func MergeWithDuration(fields map[string]interface{}, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
