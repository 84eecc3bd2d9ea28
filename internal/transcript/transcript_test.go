package transcript

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func lp(v float64) *float64 { return &v }

func sampleSegments() []Segment {
	return []Segment{
		{Start: 0, End: 5, Text: "a", AvgLogprob: lp(-0.1)},
		{Start: 5, End: 9, Text: "b", AvgLogprob: lp(-1.2)},
		{Start: 9, End: 14, Text: "c", AvgLogprob: lp(-0.4)},
	}
}

func TestBuildRejectsStartAfterEnd(t *testing.T) {
	_, err := Build([]Segment{{Start: 3, End: 3, Text: "x"}})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Index != 0 {
		t.Errorf("Index = %d, want 0", ve.Index)
	}
}

func TestBuildRejectsDecreasingStart(t *testing.T) {
	_, err := Build([]Segment{
		{Start: 5, End: 6},
		{Start: 2, End: 4},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Index != 1 {
		t.Errorf("Index = %d, want 1", ve.Index)
	}
}

func TestBuildOverlapTolerance(t *testing.T) {
	if _, err := Build([]Segment{{Start: 0, End: 5.005}, {Start: 5, End: 6}}); err != nil {
		t.Errorf("overlap within tolerance rejected: %v", err)
	}
	if _, err := Build([]Segment{{Start: 0, End: 5.5}, {Start: 5, End: 6}}); err == nil {
		t.Error("overlap beyond tolerance accepted")
	}
}

func TestBuildRejectsNegativeAndNaN(t *testing.T) {
	if _, err := Build([]Segment{{Start: -1, End: 2}}); err == nil {
		t.Error("negative start accepted")
	}
	if _, err := Build([]Segment{{Start: math.NaN(), End: 2}}); err == nil {
		t.Error("NaN start accepted")
	}
}

func TestBuildEmpty(t *testing.T) {
	idx, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil): %v", err)
	}
	if _, ok := idx.ActiveSegmentFor(0); ok {
		t.Error("empty index should have no active segment")
	}
}

func TestActiveSegmentFor(t *testing.T) {
	idx, err := Build(sampleSegments())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		t    float64
		want int
		ok   bool
	}{
		{0, 0, true},
		{4.99, 0, true},
		{5, 1, true},
		{8.5, 1, true},
		{9, 2, true},
		{13.99, 2, true},
		{14, 0, false},
		{20, 0, false},
		{-0.5, 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		got, ok := idx.ActiveSegmentFor(tt.t)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ActiveSegmentFor(%v) = %d,%v want %d,%v", tt.t, got, ok, tt.want, tt.ok)
		}
	}
}

func TestActiveSegmentForGaps(t *testing.T) {
	idx, err := Build([]Segment{
		{Start: 2, End: 4},
		{Start: 6, End: 8},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, ts := range []float64{0, 1.99, 4, 5, 8} {
		if i, ok := idx.ActiveSegmentFor(ts); ok {
			t.Errorf("ActiveSegmentFor(%v) = %d, want none", ts, i)
		}
	}
}

func TestActiveSegmentForMatchesLinearScan(t *testing.T) {
	tests := []struct {
		name string
		segs []Segment
	}{
		{"adjacent and gaps", []Segment{
			{Start: 0.5, End: 1.2},
			{Start: 1.2, End: 3},
			{Start: 3.4, End: 3.9},
			{Start: 3.9, End: 7.25},
		}},
		{"overlap within tolerance", []Segment{
			{Start: 0, End: 1.005},
			{Start: 1, End: 2},
			{Start: 1.995, End: 2.5},
			{Start: 3, End: 4},
		}},
	}
	for _, tt := range tests {
		idx, err := Build(tt.segs)
		if err != nil {
			t.Fatalf("%s: Build: %v", tt.name, err)
		}
		for step := 0; step <= 5000; step++ {
			ts := float64(step) / 1000
			want, wantOK := -1, false
			for i, s := range tt.segs {
				if s.Start <= ts && ts < s.End {
					want, wantOK = i, true
				}
			}
			got, ok := idx.ActiveSegmentFor(ts)
			if ok != wantOK || (ok && got != want) {
				t.Fatalf("%s: t=%.3f: got %d,%v want %d,%v", tt.name, ts, got, ok, want, wantOK)
			}
		}
	}
}

func TestBuildRejectsNestedSegment(t *testing.T) {
	_, err := Build([]Segment{
		{Start: 0, End: 10},
		{Start: 9.995, End: 9.999},
		{Start: 10, End: 12},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Index != 1 {
		t.Errorf("Index = %d, want 1", ve.Index)
	}
}

func TestActiveSegmentWithin(t *testing.T) {
	idx, err := Build([]Segment{
		{Start: 0, End: 5},
		{Start: 5, End: 14},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		t, duration float64
		want        int
		ok          bool
	}{
		{3, 12, 0, true},
		{12, 12, 1, true},
		{13, 12, 0, false},
		{13, 0, 1, true},
		{14, 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := idx.ActiveSegmentWithin(tt.t, tt.duration)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ActiveSegmentWithin(%v, %v) = %d,%v want %d,%v", tt.t, tt.duration, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIndexOwnsSegments(t *testing.T) {
	segs := sampleSegments()
	idx, err := Build(segs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	segs[0].Text = "mutated"
	if idx.Segment(0).Text != "a" {
		t.Error("index should not share the caller's slice")
	}
}

func TestDecodeTranscript(t *testing.T) {
	body := `{
		"filename": "call.mp3",
		"language": "en",
		"duration": 14,
		"processing_time": 3.5,
		"segments": [
			{"start": 0, "end": 5, "text": "a", "avg_logprob": -0.1},
			{"start": 5, "end": 9, "text": "b"}
		]
	}`
	var tr Transcript
	if err := json.Unmarshal([]byte(body), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(tr.Segments))
	}
	if tr.Segments[1].AvgLogprob != nil {
		t.Error("missing avg_logprob should decode as nil")
	}
	if tr.ProcessingTime == nil || *tr.ProcessingTime != 3.5 {
		t.Errorf("processing_time = %v", tr.ProcessingTime)
	}
}
