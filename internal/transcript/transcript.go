// Package transcript holds the transcript data model and the segment index
// used to map a playback time to the segment being spoken.
package transcript

import (
	"fmt"
	"math"
	"sort"
)

// OverlapTolerance is how far, in seconds, a segment may start before the
// previous one ends. Whisper output routinely has rounding overlaps of a few
// milliseconds.
const OverlapTolerance = 0.01

// Segment is a time-bounded span of transcript text.
type Segment struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	AvgLogprob *float64 `json:"avg_logprob,omitempty"`
}

// Transcript is the ordered collection of segments for one audio file.
type Transcript struct {
	Filename       string    `json:"filename,omitempty"`
	Language       string    `json:"language,omitempty"`
	Duration       float64   `json:"duration"`
	ProcessingTime *float64  `json:"processing_time,omitempty"`
	CreatedAt      string    `json:"created_at,omitempty"`
	Status         string    `json:"status,omitempty"`
	Segments       []Segment `json:"segments"`
}

// ValidationError reports the first segment that breaks ordering rules.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid segment %d: %s", e.Index, e.Reason)
}

// Index is an immutable, validated view over a segment list.
type Index struct {
	segments []Segment
}

// Build validates segments and returns an index over them.
// Segments are never reordered or dropped.
func Build(segments []Segment) (*Index, error) {
	for i, s := range segments {
		if math.IsNaN(s.Start) || math.IsNaN(s.End) {
			return nil, &ValidationError{Index: i, Reason: "time is NaN"}
		}
		if s.Start < 0 {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("start %.3f is negative", s.Start)}
		}
		if s.Start >= s.End {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("start %.3f is not before end %.3f", s.Start, s.End)}
		}
		if i == 0 {
			continue
		}
		prev := segments[i-1]
		if s.Start < prev.Start {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("start %.3f precedes previous start %.3f", s.Start, prev.Start)}
		}
		if prev.End-s.Start > OverlapTolerance {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("overlaps previous segment by %.3fs", prev.End-s.Start)}
		}
		if s.End < prev.End {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("end %.3f is inside previous segment ending %.3f", s.End, prev.End)}
		}
	}

	owned := make([]Segment, len(segments))
	copy(owned, segments)
	return &Index{segments: owned}, nil
}

// Len returns the number of segments.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.segments)
}

// Segment returns segment i.
func (x *Index) Segment(i int) Segment {
	return x.segments[i]
}

// Segments returns a copy of the indexed segments.
func (x *Index) Segments() []Segment {
	if x == nil {
		return nil
	}
	out := make([]Segment, len(x.segments))
	copy(out, x.segments)
	return out
}

// ActiveSegmentFor returns the segment with start <= t < end.
// A time equal to one segment's end belongs to the next segment.
func (x *Index) ActiveSegmentFor(t float64) (int, bool) {
	if x == nil || len(x.segments) == 0 || math.IsNaN(t) || t < 0 {
		return 0, false
	}
	// First segment starting after t; the candidate is the one before it.
	i := sort.Search(len(x.segments), func(i int) bool {
		return x.segments[i].Start > t
	}) - 1
	if i < 0 {
		return 0, false
	}
	if t < x.segments[i].End {
		return i, true
	}
	return 0, false
}

// ActiveSegmentWithin is ActiveSegmentFor limited to media of the given
// duration: times past the end have no segment. A non-positive duration
// means unknown and does not limit the lookup.
func (x *Index) ActiveSegmentWithin(t, duration float64) (int, bool) {
	if duration > 0 && t > duration {
		return 0, false
	}
	return x.ActiveSegmentFor(t)
}
