// Package diarization defines the speaker diarization backend contract
// and helpers over the segments it returns.
//
// # Backends
//
//   - diarization/pyannote: pyannote.audio HTTP sidecar
package diarization
