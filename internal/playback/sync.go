package playback

import (
	"github.com/jwulff/transcript-review/internal/transcript"
)

// EffectKind identifies a presentation change requested by Sync.
type EffectKind int

const (
	// Highlight marks Segment as playing and scrolls it into view.
	Highlight EffectKind = iota
	// ClearHighlight removes the playing marker without scrolling.
	ClearHighlight
)

// Effect is one presentation change.
type Effect struct {
	Kind    EffectKind
	Segment int
}

// Sync owns the "currently playing" segment slot.
type Sync struct {
	index       *transcript.Index
	highlighted int
	has         bool
}

// NewSync returns a Sync with nothing highlighted.
func NewSync(index *transcript.Index) *Sync {
	return &Sync{index: index}
}

// Highlighted returns the segment currently marked as playing.
func (s *Sync) Highlighted() (int, bool) {
	return s.highlighted, s.has
}

// Update recomputes the playing segment for currentTime. Effects are only
// returned when the slot changes, so repeated ticks at the same position are
// silent.
func (s *Sync) Update(currentTime float64) []Effect {
	idx, ok := s.index.ActiveSegmentFor(currentTime)
	switch {
	case ok && (!s.has || idx != s.highlighted):
		s.highlighted, s.has = idx, true
		return []Effect{{Kind: Highlight, Segment: idx}}
	case !ok && s.has:
		s.highlighted, s.has = 0, false
		return []Effect{{Kind: ClearHighlight}}
	}
	return nil
}

// Attach feeds the clock's time updates into Update and hands any effects to
// apply. The returned function detaches.
func (s *Sync) Attach(clock MediaClock, apply func([]Effect)) func() {
	return clock.Subscribe(Handlers{
		OnTimeUpdate: func(t float64) {
			if effects := s.Update(t); len(effects) > 0 {
				apply(effects)
			}
		},
	})
}

// SeekToSegment moves the clock to the start of seg and resumes playback.
// Highlighting follows from the clock's next time update.
func SeekToSegment(clock MediaClock, seg transcript.Segment) {
	clock.Seek(seg.Start)
	clock.Play()
}
