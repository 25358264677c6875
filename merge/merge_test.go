package merge

import (
	"math"
	"strings"
	"testing"

	"github.com/kbukum/audioscribe/diarization"
)

func seg(speaker string, start, end float64) diarization.Segment {
	return diarization.Segment{Speaker: speaker, Start: start, End: end}
}

func TestInsertExample(t *testing.T) {
	got, n := Insert("a b c d", []diarization.Segment{seg("A", 1.5, 2.5)}, 4, Options{})
	if got != "a b [Speaker Change: Speaker A] c d" {
		t.Errorf("unexpected output %q", got)
	}
	if n != 1 {
		t.Errorf("expected 1 marker, got %d", n)
	}
}

func TestInsertNoSegments(t *testing.T) {
	in := "  bonjour   le monde "
	got, n := Insert(in, nil, 10, Options{})
	if got != in || n != 0 {
		t.Errorf("expected transcript unchanged, got %q (%d)", got, n)
	}
}

func TestInsertNoWords(t *testing.T) {
	for _, in := range []string{"", "   \n\t"} {
		got, n := Insert(in, []diarization.Segment{seg("A", 0, 1)}, 4, Options{})
		if got != in || n != 0 {
			t.Errorf("expected %q unchanged, got %q", in, got)
		}
	}
}

func TestInsertNonPositiveDuration(t *testing.T) {
	for _, d := range []float64{0, -3} {
		got, n := Insert("a b", []diarization.Segment{seg("A", 0, 1)}, d, Options{})
		if got != "a b" || n != 0 {
			t.Errorf("duration %v: expected unchanged, got %q", d, got)
		}
	}
}

func TestInsertIndexIsFloor(t *testing.T) {
	// 10 words over 5s: 0.5 s/word, midpoint 1.9 -> floor(3.8) = 3
	words := "w0 w1 w2 w3 w4 w5 w6 w7 w8 w9"
	got, _ := Insert(words, []diarization.Segment{seg("X", 1.8, 2.0)}, 5, Options{})
	fields := strings.Fields(got)
	if strings.Join(fields[3:7], " ") != "[Speaker Change: Speaker X]" {
		t.Errorf("expected marker at word index 3, got %q", got)
	}
}

func TestInsertOutOfRangeDropped(t *testing.T) {
	// 4 words over 4s: midpoint 4.0 -> index 4 == len(words)
	got, n := Insert("a b c d", []diarization.Segment{seg("A", 3.5, 4.5), seg("B", 9, 11)}, 4, Options{})
	if got != "a b c d" || n != 0 {
		t.Errorf("expected out-of-range markers dropped, got %q (%d)", got, n)
	}
}

func TestInsertNegativeMidpointDropped(t *testing.T) {
	got, n := Insert("a b", []diarization.Segment{seg("A", -3, -1)}, 2, Options{})
	if got != "a b" || n != 0 {
		t.Errorf("expected negative midpoint dropped, got %q", got)
	}
}

func TestInsertSortsByMidpoint(t *testing.T) {
	segs := []diarization.Segment{seg("B", 2.5, 3.5), seg("A", 0.5, 1.5)}
	got, n := Insert("a b c d", segs, 4, Options{CompensateDrift: true})
	want := "a [Speaker Change: Speaker A] b c [Speaker Change: Speaker B] d"
	if got != want || n != 2 {
		t.Errorf("got %q (%d), want %q", got, n, want)
	}
}

func TestInsertIndexDrift(t *testing.T) {
	// midpoints 1 and 2 map to indices 1 and 2 of "a b c d"
	segs := []diarization.Segment{seg("A", 0.5, 1.5), seg("B", 1.5, 2.5)}

	drift, _ := Insert("a b c d", segs, 4, Options{})
	if drift != "a [Speaker Change: Speaker A] [Speaker Change: Speaker B] b c d" {
		t.Errorf("default mode should keep pre-insertion indices, got %q", drift)
	}

	fixed, _ := Insert("a b c d", segs, 4, Options{CompensateDrift: true})
	if fixed != "a [Speaker Change: Speaker A] b [Speaker Change: Speaker B] c d" {
		t.Errorf("compensated mode should follow the time mapping, got %q", fixed)
	}
}

func TestInsertBoundsUseCurrentLength(t *testing.T) {
	// "a b" over 2s; B at 2.0 maps to index 2 == original length
	segs := []diarization.Segment{seg("A", 0, 0), seg("B", 2, 2)}

	// without compensation the list has grown to 3, so index 2 is in range
	got, n := Insert("a b", segs, 2, Options{})
	if got != "[Speaker Change: Speaker A] a [Speaker Change: Speaker B] b" || n != 2 {
		t.Errorf("got %q (%d)", got, n)
	}

	// compensated, B shifts to 3 and falls off the end
	got, n = Insert("a b", segs, 2, Options{CompensateDrift: true})
	if got != "[Speaker Change: Speaker A] a b" || n != 1 {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestInsertOwnLine(t *testing.T) {
	got, _ := Insert("a b", []diarization.Segment{seg("S1", 1, 1)}, 2, Options{OwnLine: true})
	if got != "a \n[Speaker Change: Speaker S1]\n b" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestInsertExtremeMidpointsDropped(t *testing.T) {
	tests := []struct {
		name     string
		seg      diarization.Segment
		duration float64
	}{
		{"huge midpoint", seg("A", 1e300, 1e300), 4},
		{"infinite midpoint", seg("A", 0, math.Inf(1)), 4},
		{"NaN midpoint", seg("A", math.NaN(), 1), 4},
		{"tiny duration", seg("A", 1, 3), 1e-300},
		{"just below zero", seg("A", -0.5, 0.1), 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, n := Insert("a b c d", []diarization.Segment{tc.seg}, tc.duration, Options{})
			if got != "a b c d" || n != 0 {
				t.Errorf("expected marker dropped, got %q (%d)", got, n)
			}
		})
	}
}

func TestWordIndex(t *testing.T) {
	tests := []struct {
		mid, spw float64
		limit    int
		want     int
		ok       bool
	}{
		{1.9, 0.5, 10, 3, true},
		{0, 0.5, 10, 0, true},
		{4.99, 0.5, 10, 9, true},
		{5, 0.5, 10, 0, false},
		{-0.1, 0.5, 10, 0, false},
		{1e300, 1e-300, 10, 0, false},
		{math.NaN(), 0.5, 10, 0, false},
		{1, 0.5, 0, 0, false},
	}
	for _, tc := range tests {
		got, ok := wordIndex(tc.mid, tc.spw, tc.limit)
		if got != tc.want || ok != tc.ok {
			t.Errorf("wordIndex(%v, %v, %d) = (%d, %v), want (%d, %v)", tc.mid, tc.spw, tc.limit, got, ok, tc.want, tc.ok)
		}
	}
}
