package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// TimeSource supplies wall time to a Clock
type TimeSource interface {
	Now() time.Time
}

// SystemTime is the real monotonic clock
type SystemTime struct{}

func (SystemTime) Now() time.Time {
	return time.Now()
}

// ManualTime is a controllable time source for tests and replays
type ManualTime struct {
	mu  sync.RWMutex
	now time.Time
}

func NewManualTime(start time.Time) *ManualTime {
	return &ManualTime{now: start}
}

func (m *ManualTime) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the time forward by d
func (m *ManualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Clock is pausable simulation time in seconds since creation
// Blob timestamps are read from it, so a pause freezes every blob's elapsed time
type Clock struct {
	mu sync.RWMutex

	src   TimeSource
	start time.Time

	paused      atomic.Bool
	pauseStart  time.Time
	totalPaused time.Duration
}

// NewClock starts a clock at zero, a nil source uses SystemTime
func NewClock(src TimeSource) *Clock {
	if src == nil {
		src = SystemTime{}
	}
	return &Clock{src: src, start: src.Now()}
}

// Elapsed returns simulation time, frozen while paused
func (c *Clock) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.paused.Load() {
		return c.pauseStart.Sub(c.start) - c.totalPaused
	}
	return c.src.Now().Sub(c.start) - c.totalPaused
}

// Seconds returns Elapsed as the float timestamp blobs are stamped with
func (c *Clock) Seconds() float64 {
	return c.Elapsed().Seconds()
}

// Pause stops simulation time advancement
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused.CompareAndSwap(false, true) {
		c.pauseStart = c.src.Now()
	}
}

// Resume continues simulation time advancement
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused.CompareAndSwap(true, false) {
		c.totalPaused += c.src.Now().Sub(c.pauseStart)
		c.pauseStart = time.Time{}
	}
}

func (c *Clock) IsPaused() bool {
	return c.paused.Load()
}

// TotalPaused returns cumulative pause time including a pause in progress
func (c *Clock) TotalPaused() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.totalPaused
	if c.paused.Load() && !c.pauseStart.IsZero() {
		total += c.src.Now().Sub(c.pauseStart)
	}
	return total
}
