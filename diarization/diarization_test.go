package diarization

import (
	"context"
	"math"
	"testing"

	"github.com/kbukum/audioscribe/provider"
)

func TestMidpoint(t *testing.T) {
	if got := (Segment{Start: 1, End: 3}).Midpoint(); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestSortByMidpointIsStable(t *testing.T) {
	in := []Segment{
		{Speaker: "B", Start: 4, End: 6},
		{Speaker: "A1", Start: 0, End: 2},
		{Speaker: "A2", Start: 0.5, End: 1.5},
		{Speaker: "C", Start: 1, End: 1},
	}
	got := SortByMidpoint(in)

	want := []string{"A1", "A2", "C", "B"}
	for i, w := range want {
		if got[i].Speaker != w {
			t.Fatalf("position %d: expected %s, got %s (%v)", i, w, got[i].Speaker, got)
		}
	}
	if in[0].Speaker != "B" {
		t.Error("input must not be reordered")
	}
}

func TestCoverage(t *testing.T) {
	tests := []struct {
		name string
		segs []Segment
		want float64
	}{
		{"empty", nil, 0},
		{"single", []Segment{{Start: 1, End: 4}}, 3},
		{"gap", []Segment{{Start: 0, End: 2}, {Start: 5, End: 6}}, 3},
		{"overlap", []Segment{{Start: 0, End: 3}, {Start: 2, End: 5}}, 5},
		{"contained", []Segment{{Start: 0, End: 10}, {Start: 2, End: 3}}, 10},
		{"unsorted", []Segment{{Start: 5, End: 7}, {Start: 0, End: 1}, {Start: 6, End: 8}}, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Coverage(tc.segs); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Coverage = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpeakers(t *testing.T) {
	got := Speakers([]Segment{{Speaker: "S1"}, {Speaker: "S0"}, {Speaker: "S1"}})
	if len(got) != 2 || got[0] != "S1" || got[1] != "S0" {
		t.Errorf("unexpected speakers %v", got)
	}
}

type countingDiarizer struct{ calls int }

func (c *countingDiarizer) Name() string                       { return "counting" }
func (c *countingDiarizer) IsAvailable(_ context.Context) bool { return true }
func (c *countingDiarizer) Diarize(_ context.Context, _ DiarizationRequest) (*DiarizationResponse, error) {
	c.calls++
	return &DiarizationResponse{Duration: 1}, nil
}

func TestRegistryAndWrap(t *testing.T) {
	inner := &countingDiarizer{}
	reg := NewRegistry()
	reg.RegisterFactory("counting", func(map[string]any) (Provider, error) { return inner, nil })

	p, err := reg.Create("counting", nil)
	if err != nil {
		t.Fatal(err)
	}
	if Wrap(p) != p {
		t.Error("Wrap without middleware should return p")
	}

	var seen int
	mw := func(next providerRR) providerRR {
		seen++
		return next
	}
	w := Wrap(p, mw)
	if _, err := w.Diarize(context.Background(), DiarizationRequest{}); err != nil {
		t.Fatal(err)
	}
	if seen != 1 || inner.calls != 1 || w.Name() != "counting" {
		t.Errorf("unexpected wrap behavior: seen=%d calls=%d name=%s", seen, inner.calls, w.Name())
	}
}

type providerRR = provider.RequestResponse[DiarizationRequest, *DiarizationResponse]
