// Package merge interleaves speaker-change markers into a flat transcript.
//
// Words are assumed to be spoken at a uniform rate over the diarized
// duration, so a segment midpoint m maps to word index
// floor(m / (duration / words)). The estimate is only as good as that
// assumption; nothing here checks it.
package merge

import (
	"fmt"
	"math"
	"strings"

	"github.com/kbukum/audioscribe/diarization"
)

// MarkerFormat is the token inserted at each speaker change.
const MarkerFormat = "[Speaker Change: Speaker %s]"

// Options controls marker placement.
type Options struct {
	// CompensateDrift shifts each target index by the number of markers
	// already inserted, so every marker lands before the word its time
	// maps to. Off by default: indices are computed on the original word
	// list and applied to the growing one, as earlier releases did.
	CompensateDrift bool

	// OwnLine puts each marker on a line of its own.
	OwnLine bool
}

// Marker formats the marker token for a speaker label.
func Marker(speaker string) string {
	return fmt.Sprintf(MarkerFormat, speaker)
}

// Insert returns transcript with a marker inserted for each segment, and
// the number of markers inserted. The transcript is returned unchanged
// when there are no segments, no words, or duration is not positive.
// Markers whose index falls at or past the end of the list are dropped.
//
// A segment whose midpoint is negative is dropped too, even when it lies
// less than one word before zero. Earlier releases truncated such a
// position to index 0 and put the marker first.
func Insert(transcript string, segments []diarization.Segment, duration float64, opts Options) (string, int) {
	if len(segments) == 0 || duration <= 0 {
		return transcript, 0
	}
	words := strings.Fields(transcript)
	if len(words) == 0 {
		return transcript, 0
	}

	secondsPerWord := duration / float64(len(words))
	inserted := 0
	for _, seg := range diarization.SortByMidpoint(segments) {
		// Checked against the grown list, less the shift when compensating.
		limit := len(words)
		if opts.CompensateDrift {
			limit -= inserted
		}
		index, ok := wordIndex(seg.Midpoint(), secondsPerWord, limit)
		if !ok {
			continue
		}
		if opts.CompensateDrift {
			index += inserted
		}
		words = insertAt(words, index, token(seg.Speaker, opts))
		inserted++
	}
	return strings.Join(words, " "), inserted
}

// wordIndex maps a midpoint to the word it falls in. The position is
// bounded while still a float so huge or NaN values never reach the int
// conversion.
func wordIndex(midpoint, secondsPerWord float64, limit int) (int, bool) {
	pos := midpoint / secondsPerWord
	if math.IsNaN(pos) || pos < 0 || pos >= float64(limit) {
		return 0, false
	}
	return int(pos), true
}

func token(speaker string, opts Options) string {
	if opts.OwnLine {
		return "\n" + Marker(speaker) + "\n"
	}
	return Marker(speaker)
}

func insertAt(words []string, i int, s string) []string {
	words = append(words, "")
	copy(words[i+1:], words[i:])
	words[i] = s
	return words
}
