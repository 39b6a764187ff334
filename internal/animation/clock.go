package animation

import (
	"sync"
	"time"
)

// Clock supplies the current time and frame tickers to a Scheduler.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers frame ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (t systemTicker) C() <-chan time.Time { return t.t.C }
func (t systemTicker) Stop()               { t.t.Stop() }

// ManualClock is a Clock that only moves when told to. Its tickers never
// fire on their own; drive frames with Scheduler.Tick.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers int
}

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TickersCreated returns how many tickers have been requested so far.
func (c *ManualClock) TickersCreated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers
}

func (c *ManualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickers++
	return manualTicker{c: make(chan time.Time)}
}

type manualTicker struct {
	c chan time.Time
}

func (t manualTicker) C() <-chan time.Time { return t.c }
func (t manualTicker) Stop()               {}
