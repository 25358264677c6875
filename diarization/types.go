package diarization

import "sort"

// DiarizationRequest holds parameters for a diarization call.
type DiarizationRequest struct {
	// AudioPath is the path to the audio file to diarize.
	AudioPath string `json:"audio_path"`
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int `json:"num_speakers,omitempty"`
	// MinSpeakers is the minimum expected number of speakers.
	MinSpeakers int `json:"min_speakers,omitempty"`
	// MaxSpeakers is the maximum expected number of speakers.
	MaxSpeakers int `json:"max_speakers,omitempty"`
}

// DiarizationResponse holds the result of a diarization call.
type DiarizationResponse struct {
	Segments    []Segment `json:"segments"`
	NumSpeakers int       `json:"num_speakers"`
	// Duration is the total duration in seconds. Backends that do not
	// report it get Coverage(Segments).
	Duration float64 `json:"duration"`
}

// Segment is a speaker-attributed time range in seconds.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Midpoint returns (Start+End)/2.
func (s Segment) Midpoint() float64 {
	return (s.Start + s.End) / 2
}

// SortByMidpoint returns a copy of segments stably sorted by midpoint.
func SortByMidpoint(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Midpoint() < out[j].Midpoint()
	})
	return out
}

// Coverage returns the total length of the union of all segment
// intervals. Overlapping speech is counted once and gaps are excluded.
func Coverage(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var total float64
	curStart, curEnd := sorted[0].Start, sorted[0].End
	for _, s := range sorted[1:] {
		if s.Start > curEnd {
			total += curEnd - curStart
			curStart, curEnd = s.Start, s.End
			continue
		}
		if s.End > curEnd {
			curEnd = s.End
		}
	}
	return total + (curEnd - curStart)
}

// Speakers returns the distinct speaker labels in first-seen order.
func Speakers(segments []Segment) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range segments {
		if !seen[s.Speaker] {
			seen[s.Speaker] = true
			out = append(out, s.Speaker)
		}
	}
	return out
}
