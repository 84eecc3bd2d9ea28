package navigation

import (
	"testing"

	"github.com/jwulff/transcript-review/internal/confidence"
	"github.com/jwulff/transcript-review/internal/transcript"
)

func lp(v float64) *float64 { return &v }

func sampleSegments() []transcript.Segment {
	return []transcript.Segment{
		{Start: 0, End: 5, Text: "a", AvgLogprob: lp(-0.1)},
		{Start: 5, End: 9, Text: "b", AvgLogprob: lp(-1.2)},
		{Start: 9, End: 14, Text: "c", AvgLogprob: lp(-0.4)},
	}
}

// fairSegments has three Fair segments at indices 1, 2 and 4.
func fairSegments() []transcript.Segment {
	return []transcript.Segment{
		{Start: 0, End: 1, AvgLogprob: lp(-0.1)},
		{Start: 1, End: 2, AvgLogprob: lp(-0.7)},
		{Start: 2, End: 3, AvgLogprob: lp(-0.6)},
		{Start: 3, End: 4, AvgLogprob: lp(-0.3)},
		{Start: 4, End: 5, AvgLogprob: lp(-0.9)},
	}
}

func activeOf(t *testing.T, c *Cursor) int {
	t.Helper()
	i, ok := c.State().Active()
	if !ok {
		t.Fatal("cursor has no active segment")
	}
	return i
}

func TestSelectTierPoorCyclesSingleMatch(t *testing.T) {
	c := NewCursor(sampleSegments())

	effects := c.SelectTier(confidence.Poor)
	if got := activeOf(t, c); got != 1 {
		t.Errorf("active = %d, want 1", got)
	}
	if len(effects) != 1 || effects[0].Segment != 1 {
		t.Errorf("effects = %+v, want scroll to 1", effects)
	}

	effects = c.SelectTier(confidence.Poor)
	if got := activeOf(t, c); got != 1 {
		t.Errorf("after second click active = %d, want 1", got)
	}
	if c.State().Position != 0 {
		t.Errorf("position = %d, want 0", c.State().Position)
	}
	if len(effects) != 1 || effects[0].Segment != 1 {
		t.Errorf("second click effects = %+v, want scroll to 1", effects)
	}

	c.SelectTier(confidence.Good)
	if got := activeOf(t, c); got != 2 {
		t.Errorf("after Good active = %d, want 2", got)
	}
	if c.State().Position != 0 {
		t.Errorf("position = %d, want 0", c.State().Position)
	}
}

func TestSelectTierEmptyBucketIsNoop(t *testing.T) {
	c := NewCursor(sampleSegments())
	c.SelectTier(confidence.Good)
	before := c.State()

	effects := c.SelectTier(confidence.Fair)
	if effects != nil {
		t.Errorf("effects = %+v, want none", effects)
	}
	after := c.State()
	if after.Filter != before.Filter || after.Position != before.Position || !after.Filtering {
		t.Errorf("state changed on empty bucket: %+v -> %+v", before, after)
	}

	idle := NewCursor(sampleSegments())
	idle.SelectTier(confidence.Fair)
	if idle.State().Filtering {
		t.Error("idle cursor should stay idle on empty bucket")
	}
}

func TestRepeatedSelectAdvances(t *testing.T) {
	c := NewCursor(fairSegments())
	want := []int{1, 2, 4, 1}
	for i, w := range want {
		c.SelectTier(confidence.Fair)
		if got := activeOf(t, c); got != w {
			t.Errorf("click %d: active = %d, want %d", i+1, got, w)
		}
	}
}

func TestPreviousWrapsAfterFreshSelect(t *testing.T) {
	c := NewCursor(fairSegments())
	c.SelectTier(confidence.Fair)
	effects := c.Previous()

	if c.State().Position != 2 {
		t.Errorf("position = %d, want 2", c.State().Position)
	}
	if len(effects) != 1 || effects[0].Segment != 4 {
		t.Errorf("effects = %+v, want scroll to 4", effects)
	}
}

func TestNextCycles(t *testing.T) {
	c := NewCursor(fairSegments())
	c.SelectTier(confidence.Fair)
	c.Next()
	c.Next()
	if got := activeOf(t, c); got != 4 {
		t.Errorf("active = %d, want 4", got)
	}
	c.Next()
	if got := activeOf(t, c); got != 1 {
		t.Errorf("active after wrap = %d, want 1", got)
	}
}

func TestNextPreviousIdleNoop(t *testing.T) {
	c := NewCursor(fairSegments())
	if effects := c.Next(); effects != nil {
		t.Errorf("Next idle effects = %+v", effects)
	}
	if effects := c.Previous(); effects != nil {
		t.Errorf("Previous idle effects = %+v", effects)
	}
	if c.State().Filtering {
		t.Error("cursor should stay idle")
	}
}

func TestClearThenSelectStartsOver(t *testing.T) {
	c := NewCursor(fairSegments())
	c.SelectTier(confidence.Fair)
	c.Next()
	c.Clear()

	s := c.State()
	if s.Filtering || s.Indices != nil || s.Position != 0 {
		t.Errorf("state after clear = %+v, want idle", s)
	}

	c.SelectTier(confidence.Fair)
	if c.State().Position != 0 {
		t.Errorf("position = %d, want 0", c.State().Position)
	}
	if got := activeOf(t, c); got != 1 {
		t.Errorf("active = %d, want 1", got)
	}
}

func TestLoadResets(t *testing.T) {
	c := NewCursor(fairSegments())
	c.SelectTier(confidence.Fair)
	c.Load(sampleSegments())
	if c.State().Filtering {
		t.Error("loading a transcript should reset the cursor")
	}
	c.SelectTier(confidence.Poor)
	if got := activeOf(t, c); got != 1 {
		t.Errorf("active = %d, want 1", got)
	}
}

func TestTransitionIsPure(t *testing.T) {
	segs := fairSegments()
	s0, _ := Transition(State{}, Event{Kind: SelectTier, Tier: confidence.Fair}, segs)
	s1, _ := Transition(s0, Event{Kind: Next}, segs)
	if s0.Position != 0 {
		t.Errorf("original state mutated: position = %d", s0.Position)
	}
	if s1.Position != 1 {
		t.Errorf("next position = %d, want 1", s1.Position)
	}
}
