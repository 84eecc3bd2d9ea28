// Package navigation implements the confidence-tier cursor: a filter over the
// segments of one tier and a cyclic position within it.
package navigation

import (
	"github.com/jwulff/transcript-review/internal/confidence"
	"github.com/jwulff/transcript-review/internal/transcript"
)

// State is the cursor state. The zero value is Idle.
type State struct {
	Filtering bool
	Filter    confidence.Tier
	Indices   []int
	Position  int
}

// Active returns the segment index under the cursor while filtering.
func (s State) Active() (int, bool) {
	if !s.Filtering || len(s.Indices) == 0 {
		return 0, false
	}
	return s.Indices[s.Position], true
}

// EventKind identifies a user action on the cursor.
type EventKind int

const (
	SelectTier EventKind = iota
	Next
	Previous
	Clear
	Reset
)

// Event is one user action. Tier is only read for SelectTier.
type Event struct {
	Kind EventKind
	Tier confidence.Tier
}

// EffectKind identifies a side effect requested by a transition.
type EffectKind int

const (
	ScrollTo EffectKind = iota
)

// Effect asks the presentation layer to bring a segment into view.
type Effect struct {
	Kind    EffectKind
	Segment int
}

// Transition applies ev to s and returns the new state with any effects.
// segments is the loaded transcript. s is not modified.
func Transition(s State, ev Event, segments []transcript.Segment) (State, []Effect) {
	switch ev.Kind {
	case SelectTier:
		indices := confidence.IndicesForTier(segments, ev.Tier)
		if len(indices) == 0 {
			return s, nil
		}
		if s.Filtering && s.Filter == ev.Tier {
			next := State{
				Filtering: true,
				Filter:    ev.Tier,
				Indices:   indices,
				Position:  (s.Position + 1) % len(indices),
			}
			return next, scrollTo(next)
		}
		next := State{Filtering: true, Filter: ev.Tier, Indices: indices}
		return next, scrollTo(next)

	case Next:
		if !s.Filtering || len(s.Indices) == 0 {
			return s, nil
		}
		s.Position = (s.Position + 1) % len(s.Indices)
		return s, scrollTo(s)

	case Previous:
		if !s.Filtering || len(s.Indices) == 0 {
			return s, nil
		}
		n := len(s.Indices)
		s.Position = (s.Position - 1 + n) % n
		return s, scrollTo(s)

	case Clear, Reset:
		return State{}, nil
	}
	return s, nil
}

func scrollTo(s State) []Effect {
	i, ok := s.Active()
	if !ok {
		return nil
	}
	return []Effect{{Kind: ScrollTo, Segment: i}}
}

// Cursor binds a State to one transcript.
type Cursor struct {
	segments []transcript.Segment
	state    State
}

// NewCursor returns an Idle cursor over segments.
func NewCursor(segments []transcript.Segment) *Cursor {
	return &Cursor{segments: segments}
}

// State returns the current state.
func (c *Cursor) State() State { return c.state }

// Load swaps in a new transcript and resets to Idle.
func (c *Cursor) Load(segments []transcript.Segment) {
	c.segments = segments
	c.state, _ = Transition(c.state, Event{Kind: Reset}, segments)
}

func (c *Cursor) apply(ev Event) []Effect {
	var effects []Effect
	c.state, effects = Transition(c.state, ev, c.segments)
	return effects
}

func (c *Cursor) SelectTier(t confidence.Tier) []Effect {
	return c.apply(Event{Kind: SelectTier, Tier: t})
}

func (c *Cursor) Next() []Effect     { return c.apply(Event{Kind: Next}) }
func (c *Cursor) Previous() []Effect { return c.apply(Event{Kind: Previous}) }
func (c *Cursor) Clear() []Effect    { return c.apply(Event{Kind: Clear}) }
