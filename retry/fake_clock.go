package retry

import (
	// Go Internal Packages
	"sync"
	"time"

	// External Packages
	"github.com/cenkalti/backoff/v4"
)

// FakeClock records requested waits and fires every timer at once. It is
// used by tests across packages.
type FakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *FakeClock) NewTimer() backoff.Timer {
	return &fakeTimer{clock: c, c: make(chan time.Time, 1)}
}

func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

type fakeTimer struct {
	clock *FakeClock
	c     chan time.Time
}

func (t *fakeTimer) Start(d time.Duration) {
	t.clock.mu.Lock()
	t.clock.sleeps = append(t.clock.sleeps, d)
	t.clock.mu.Unlock()
	t.c <- time.Now()
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time { return t.c }
