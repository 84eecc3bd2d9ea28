package app

import (
	"github.com/jwulff/transcript-review/internal/api"
	"github.com/jwulff/transcript-review/internal/confidence"
	"github.com/jwulff/transcript-review/internal/navigation"
	"github.com/jwulff/transcript-review/internal/playback"
	"github.com/jwulff/transcript-review/internal/transcript"
)

// player is the state of the transcript view for one file. The highlighted
// segment lives in sync; navigation and segment clicks only move the
// selection and seek the clock.
type player struct {
	file       api.AudioFile
	transcript *transcript.Transcript
	index      *transcript.Index
	segments   []transcript.Segment
	counts     map[confidence.Tier]int

	clock  *playback.Clock
	sync   *playback.Sync
	cursor *navigation.Cursor
	detach func()

	// selected is the segment a click (enter) would seek to.
	selected int
	// top is the first segment rendered in the transcript panel.
	top int

	scrollPending bool
	scrollTarget  int

	gen int
}

func newPlayer(file api.AudioFile, tr *transcript.Transcript, index *transcript.Index, clock *playback.Clock, gen int) *player {
	segments := index.Segments()
	p := &player{
		file:       file,
		transcript: tr,
		index:      index,
		segments:   segments,
		counts:     confidence.BucketCounts(segments),
		clock:      clock,
		sync:       playback.NewSync(index),
		cursor:     navigation.NewCursor(segments),
		gen:        gen,
	}
	p.detach = p.sync.Attach(clock, p.applySync)
	return p
}

// applySync handles effects from the playback-driven highlight.
func (p *player) applySync(effects []playback.Effect) {
	for _, e := range effects {
		if e.Kind == playback.Highlight {
			p.scrollTo(e.Segment)
		}
	}
}

// applyNavigation handles effects from the tier cursor: bring the segment
// into view and seek playback to it.
func (p *player) applyNavigation(effects []navigation.Effect) bool {
	moved := false
	for _, e := range effects {
		if e.Kind != navigation.ScrollTo || e.Segment < 0 || e.Segment >= len(p.segments) {
			continue
		}
		p.scrollTo(e.Segment)
		playback.SeekToSegment(p.clock, p.segments[e.Segment])
		moved = true
	}
	return moved
}

// clickSegment seeks to the selected segment and resumes playback.
func (p *player) clickSegment() bool {
	if p.selected < 0 || p.selected >= len(p.segments) {
		return false
	}
	playback.SeekToSegment(p.clock, p.segments[p.selected])
	return true
}

func (p *player) scrollTo(i int) {
	p.selected = i
	p.scrollTarget = i
	p.scrollPending = true
}

func (p *player) highlighted() (int, bool) {
	return p.sync.Highlighted()
}

func (p *player) close() {
	if p.detach != nil {
		p.detach()
		p.detach = nil
	}
	p.clock.Close()
}
