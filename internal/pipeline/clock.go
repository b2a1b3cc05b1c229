package pipeline

import (
	"sync"
	"time"
)

// Clock abstracts wall time so the real-time monitor and its decay timer can
// be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the subset of *time.Timer the monitor uses.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a Clock advanced explicitly by its owner. Replaying a
// recorded stream drives it from capture timestamps. Due timers run
// synchronously inside Advance and AdvanceTo.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManualClock creates a ManualClock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f, active: true}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.advanceLocked(c.now.Add(d))
}

// AdvanceTo moves the clock to t. Earlier times are ignored.
func (c *ManualClock) AdvanceTo(t time.Time) {
	c.mu.Lock()
	c.advanceLocked(t)
}

// advanceLocked expects c.mu held and releases it before running timers.
func (c *ManualClock) advanceLocked(t time.Time) {
	if t.After(c.now) {
		c.now = t
	}
	var due []func()
	for _, tm := range c.timers {
		if tm.active && !tm.at.After(c.now) {
			tm.active = false
			due = append(due, tm.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

type manualTimer struct {
	clock  *ManualClock
	at     time.Time
	f      func()
	active bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.active
	t.active = false
	return was
}

func (t *manualTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.active
	t.at = t.clock.now.Add(d)
	t.active = true
	return was
}
