// Package timeutil provides a testable abstraction over the timers that drive
// playback and polling.
package timeutil

import (
	"sync"
	"time"
)

// Clock abstracts the time source so schedulers can run against a MockClock
// in tests.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
	NewTicker(d time.Duration) Ticker
}

// Timer is a one-shot timer. Reset re-arms it from the clock's current time.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// Ticker fires every period until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTimer(d time.Duration) Timer { return realTimer{time.NewTimer(d)} }

func (RealClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time        { return r.t.C }
func (r realTimer) Stop() bool                 { return r.t.Stop() }
func (r realTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time   { return r.t.C }
func (r realTicker) Stop()                 { r.t.Stop() }
func (r realTicker) Reset(d time.Duration) { r.t.Reset(d) }

// MockClock only moves when Advance is called; timers and tickers created
// from it fire from inside Advance.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*waiter
}

// NewMockClock returns a MockClock reading t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and fires every timer or ticker that
// came due. A ticker fires at most once per Advance.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	waiters := append([]*waiter(nil), c.waiters...)
	c.mu.Unlock()

	for _, w := range waiters {
		w.fire(now)
	}
}

func (c *MockClock) add(d, period time.Duration) *waiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &waiter{
		clock:  c,
		ch:     make(chan time.Time, 1),
		due:    c.now.Add(d),
		period: period,
		armed:  true,
	}
	c.waiters = append(c.waiters, w)
	return w
}

func (c *MockClock) NewTimer(d time.Duration) Timer {
	return &MockTimer{c.add(d, 0)}
}

func (c *MockClock) NewTicker(d time.Duration) Ticker {
	return &MockTicker{c.add(d, d)}
}

// waiter is the shared state of mock timers and tickers. A zero period
// makes it one-shot.
type waiter struct {
	clock  *MockClock
	mu     sync.Mutex
	ch     chan time.Time
	due    time.Time
	period time.Duration
	armed  bool
}

func (w *waiter) fire(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed || now.Before(w.due) {
		return
	}
	select {
	case w.ch <- now:
	default:
	}
	if w.period > 0 {
		w.due = now.Add(w.period)
	} else {
		w.armed = false
	}
}

// drain discards a fired but unread value, as Stop and Reset do on a
// time.Timer. Callers hold w.mu.
func (w *waiter) drain() {
	select {
	case <-w.ch:
	default:
	}
}

// rearm schedules the next firing d after the clock's current time and
// reports whether the waiter was still pending.
func (w *waiter) rearm(d time.Duration, period time.Duration) bool {
	now := w.clock.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drain()
	was := w.armed
	w.armed = true
	w.due = now.Add(d)
	w.period = period
	return was
}

func (w *waiter) disarm() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drain()
	was := w.armed
	w.armed = false
	return was
}

// MockTimer is the Timer returned by MockClock.
type MockTimer struct{ w *waiter }

func (t *MockTimer) C() <-chan time.Time        { return t.w.ch }
func (t *MockTimer) Stop() bool                 { return t.w.disarm() }
func (t *MockTimer) Reset(d time.Duration) bool { return t.w.rearm(d, 0) }

// Deadline returns when the timer is next due.
func (t *MockTimer) Deadline() time.Time {
	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	return t.w.due
}

// MockTicker is the Ticker returned by MockClock.
type MockTicker struct{ w *waiter }

func (t *MockTicker) C() <-chan time.Time   { return t.w.ch }
func (t *MockTicker) Stop()                 { t.w.disarm() }
func (t *MockTicker) Reset(d time.Duration) { t.w.rearm(d, d) }
