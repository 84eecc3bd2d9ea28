// Package playback keeps transcript highlighting in step with a media clock.
package playback

import (
	"time"
)

// Handlers receives clock events. Nil fields are skipped.
type Handlers struct {
	OnTimeUpdate     func(currentTime float64)
	OnLoadedMetadata func(duration float64)
	OnPlay           func()
	OnPause          func()
}

// MediaClock is the playback capability the transcript view drives.
type MediaClock interface {
	CurrentTime() float64
	Duration() float64
	Playing() bool
	Play()
	Pause()
	Seek(t float64)
	Subscribe(h Handlers) (unsubscribe func())
}

// Sink produces sound for a Clock. Start begins output at offset seconds,
// replacing any output already running.
type Sink interface {
	Start(offset float64) error
	Stop() error
}

// Clock is a MediaClock driven by wall time. It is not safe for concurrent
// use; the UI loop owns it and calls Tick on every playback tick.
type Clock struct {
	now      func() time.Time
	sink     Sink
	duration float64

	playing  bool
	position float64   // position at anchor
	anchor   time.Time // wall time position was recorded

	subs   map[int]Handlers
	nextID int

	sinkErr error
}

// NewClock returns a paused clock at 0. sink and now may be nil.
func NewClock(sink Sink, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{
		now:  now,
		sink: sink,
		subs: make(map[int]Handlers),
	}
}

// Subscribe registers h and returns a function that removes it.
func (c *Clock) Subscribe(h Handlers) func() {
	id := c.nextID
	c.nextID++
	c.subs[id] = h
	return func() { delete(c.subs, id) }
}

// LoadMetadata sets the media duration and notifies subscribers.
func (c *Clock) LoadMetadata(duration float64) {
	if duration < 0 {
		duration = 0
	}
	c.duration = duration
	for _, h := range c.subs {
		if h.OnLoadedMetadata != nil {
			h.OnLoadedMetadata(duration)
		}
	}
}

func (c *Clock) Duration() float64 { return c.duration }
func (c *Clock) Playing() bool     { return c.playing }

// CurrentTime returns the playback position clamped to [0, duration].
func (c *Clock) CurrentTime() float64 {
	t := c.position
	if c.playing {
		t += c.now().Sub(c.anchor).Seconds()
	}
	return c.clamp(t)
}

func (c *Clock) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if c.duration > 0 && t > c.duration {
		return c.duration
	}
	return t
}

// Play resumes playback. Playing from the end restarts at 0.
func (c *Clock) Play() {
	if c.playing {
		return
	}
	if c.duration > 0 && c.position >= c.duration {
		c.position = 0
	}
	c.playing = true
	c.anchor = c.now()
	c.startSink()
	c.emitPlay()
}

// Pause stops playback and freezes the position.
func (c *Clock) Pause() {
	if !c.playing {
		return
	}
	c.position = c.CurrentTime()
	c.playing = false
	c.stopSink()
	c.emitPause()
}

// Toggle flips between playing and paused.
func (c *Clock) Toggle() {
	if c.playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// Seek moves the position to t and reports the new time to subscribers.
func (c *Clock) Seek(t float64) {
	c.position = c.clamp(t)
	c.anchor = c.now()
	if c.playing {
		c.startSink()
	}
	c.emitTime(c.position)
}

// Tick reports the current time to subscribers, pausing at the end of media.
func (c *Clock) Tick() {
	t := c.CurrentTime()
	if c.playing && c.duration > 0 && t >= c.duration {
		c.position = c.duration
		c.playing = false
		c.stopSink()
		c.emitTime(t)
		c.emitPause()
		return
	}
	c.emitTime(t)
}

// Close stops any sound output.
func (c *Clock) Close() {
	if c.playing {
		c.position = c.CurrentTime()
		c.playing = false
	}
	c.stopSink()
}

// Err returns the last error reported by the sink, if any.
func (c *Clock) Err() error { return c.sinkErr }

func (c *Clock) startSink() {
	if c.sink == nil {
		return
	}
	if err := c.sink.Start(c.position); err != nil {
		c.sinkErr = err
	}
}

func (c *Clock) stopSink() {
	if c.sink == nil {
		return
	}
	if err := c.sink.Stop(); err != nil {
		c.sinkErr = err
	}
}

func (c *Clock) emitTime(t float64) {
	for _, h := range c.subs {
		if h.OnTimeUpdate != nil {
			h.OnTimeUpdate(t)
		}
	}
}

func (c *Clock) emitPlay() {
	for _, h := range c.subs {
		if h.OnPlay != nil {
			h.OnPlay()
		}
	}
}

func (c *Clock) emitPause() {
	for _, h := range c.subs {
		if h.OnPause != nil {
			h.OnPause()
		}
	}
}
