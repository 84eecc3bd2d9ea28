package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/jwulff/transcript-review/internal/transcript"
)

func lp(v float64) *float64 { return &v }

func sampleIndex(t *testing.T) *transcript.Index {
	t.Helper()
	idx, err := transcript.Build([]transcript.Segment{
		{Start: 0, End: 5, Text: "a", AvgLogprob: lp(-0.1)},
		{Start: 5, End: 9, Text: "b", AvgLogprob: lp(-1.2)},
		{Start: 9, End: 14, Text: "c", AvgLogprob: lp(-0.4)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

// fakeNow is a manually advanced wall clock.
type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }
func (f *fakeNow) advance(secs float64) { f.t = f.t.Add(time.Duration(secs * float64(time.Second))) }
func newFakeNow() *fakeNow { return &fakeNow{t: time.Unix(1700000000, 0)} }

type recordingSink struct {
	starts []float64
	stops  int
	err    error
}

func (s *recordingSink) Start(offset float64) error {
	s.starts = append(s.starts, offset)
	return s.err
}

func (s *recordingSink) Stop() error {
	s.stops++
	return nil
}

func TestSyncUpdateIdempotent(t *testing.T) {
	s := NewSync(sampleIndex(t))

	effects := s.Update(6)
	if len(effects) != 1 || effects[0].Kind != Highlight || effects[0].Segment != 1 {
		t.Fatalf("first update effects = %+v, want highlight 1", effects)
	}
	if effects := s.Update(6); effects != nil {
		t.Errorf("second update effects = %+v, want none", effects)
	}
	if i, ok := s.Highlighted(); !ok || i != 1 {
		t.Errorf("Highlighted = %d,%v want 1,true", i, ok)
	}
}

func TestSyncBoundaryBelongsToNext(t *testing.T) {
	s := NewSync(sampleIndex(t))
	s.Update(4.9)
	effects := s.Update(5)
	if len(effects) != 1 || effects[0].Segment != 1 {
		t.Errorf("effects at 5 = %+v, want highlight 1", effects)
	}
}

func TestSyncClearsPastEnd(t *testing.T) {
	s := NewSync(sampleIndex(t))
	s.Update(10)
	effects := s.Update(14)
	if len(effects) != 1 || effects[0].Kind != ClearHighlight {
		t.Fatalf("effects = %+v, want clear", effects)
	}
	if _, ok := s.Highlighted(); ok {
		t.Error("nothing should be highlighted past the end")
	}
	if effects := s.Update(20); effects != nil {
		t.Errorf("effects after clear = %+v, want none", effects)
	}
}

func TestSyncNothingBeforeFirstUpdate(t *testing.T) {
	s := NewSync(sampleIndex(t))
	if effects := s.Update(-1); effects != nil {
		t.Errorf("effects = %+v, want none", effects)
	}
}

func TestClockAdvancesWhilePlaying(t *testing.T) {
	fn := newFakeNow()
	c := NewClock(nil, fn.now)
	c.LoadMetadata(14)

	c.Play()
	fn.advance(2.5)
	if got := c.CurrentTime(); got != 2.5 {
		t.Errorf("CurrentTime = %v, want 2.5", got)
	}

	c.Pause()
	fn.advance(10)
	if got := c.CurrentTime(); got != 2.5 {
		t.Errorf("paused CurrentTime = %v, want 2.5", got)
	}
}

func TestClockPausesAtEnd(t *testing.T) {
	fn := newFakeNow()
	c := NewClock(nil, fn.now)
	c.LoadMetadata(14)

	paused := 0
	c.Subscribe(Handlers{OnPause: func() { paused++ }})

	c.Play()
	fn.advance(20)
	c.Tick()
	if c.Playing() {
		t.Error("clock should stop at end of media")
	}
	if c.CurrentTime() != 14 {
		t.Errorf("CurrentTime = %v, want 14", c.CurrentTime())
	}
	if paused != 1 {
		t.Errorf("pause events = %d, want 1", paused)
	}

	c.Play()
	if c.CurrentTime() != 0 {
		t.Errorf("play from end should restart, CurrentTime = %v", c.CurrentTime())
	}
}

func TestClockSeekClampsAndNotifies(t *testing.T) {
	fn := newFakeNow()
	c := NewClock(nil, fn.now)
	c.LoadMetadata(14)

	var times []float64
	unsubscribe := c.Subscribe(Handlers{OnTimeUpdate: func(t float64) { times = append(times, t) }})

	c.Seek(-3)
	c.Seek(99)
	if len(times) != 2 || times[0] != 0 || times[1] != 14 {
		t.Errorf("time updates = %v, want [0 14]", times)
	}

	unsubscribe()
	c.Seek(3)
	if len(times) != 2 {
		t.Errorf("unsubscribed handler still called: %v", times)
	}
}

func TestClockDrivesSink(t *testing.T) {
	fn := newFakeNow()
	sink := &recordingSink{}
	c := NewClock(sink, fn.now)
	c.LoadMetadata(14)

	c.Seek(4) // paused: no output
	if len(sink.starts) != 0 {
		t.Errorf("paused seek started sink: %v", sink.starts)
	}
	c.Play()
	c.Seek(9)
	c.Pause()

	if len(sink.starts) != 2 || sink.starts[0] != 4 || sink.starts[1] != 9 {
		t.Errorf("sink starts = %v, want [4 9]", sink.starts)
	}
	if sink.stops != 1 {
		t.Errorf("sink stops = %d, want 1", sink.stops)
	}
}

func TestClockRecordsSinkError(t *testing.T) {
	sink := &recordingSink{err: errors.New("no audio device")}
	c := NewClock(sink, nil)
	c.Play()
	if c.Err() == nil {
		t.Error("sink error should be recorded")
	}
	if !c.Playing() {
		t.Error("clock should keep time without sound")
	}
}

func TestAttachAndSeekToSegment(t *testing.T) {
	fn := newFakeNow()
	c := NewClock(nil, fn.now)
	c.LoadMetadata(14)
	idx := sampleIndex(t)
	s := NewSync(idx)

	var applied [][]Effect
	detach := s.Attach(c, func(e []Effect) { applied = append(applied, e) })

	SeekToSegment(c, idx.Segment(2))
	if !c.Playing() {
		t.Error("seek to segment should resume playback")
	}
	if len(applied) != 1 || applied[0][0].Segment != 2 {
		t.Fatalf("applied = %+v, want highlight 2", applied)
	}

	c.Tick() // same position, same segment
	if len(applied) != 1 {
		t.Errorf("repeat tick applied effects: %+v", applied)
	}

	fn.advance(6) // 15s, past the end
	c.Tick()
	if len(applied) != 2 || applied[1][0].Kind != ClearHighlight {
		t.Errorf("applied = %+v, want clear after end", applied)
	}

	detach()
	c.Seek(1)
	if len(applied) != 2 {
		t.Error("detached sync still receiving updates")
	}
}
