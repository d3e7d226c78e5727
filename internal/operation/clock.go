package operation

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer (false if it already fired or was stopped).
	Stop() bool
}

// Clock schedules callbacks. Implementations run f on their own goroutine
// (SystemClock) or on the goroutine that advances them (ManualClock).
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the wall-clock implementation backed by time.AfterFunc.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a Clock whose time only moves when Advance is called.
//
// Due callbacks run synchronously inside Advance, in deadline order (ties in
// scheduling order), without the clock's lock held. A callback may schedule
// further timers; those fire within the same Advance if they fall due.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	seq      uint64
	f        func()
	stopped  bool
	fired    bool
}

// NewManualClock creates a ManualClock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &manualTimer{
		clock:    c,
		deadline: c.now.Add(d),
		seq:      c.seq,
		f:        f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by d, firing every timer that falls due.
//
// Advance must not be called while holding a lock that a callback acquires.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		t := c.popDue(target)
		if t == nil {
			return
		}
		t.f()
	}
}

// popDue removes and returns the earliest timer due at or before target,
// moving the clock to its deadline. With nothing due it moves the clock to
// target and returns nil.
func (c *ManualClock) popDue(target time.Time) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.timers) == 0 {
		if target.After(c.now) {
			c.now = target
		}
		return nil
	}

	sort.SliceStable(c.timers, func(i, j int) bool {
		a, b := c.timers[i], c.timers[j]
		if a.deadline.Equal(b.deadline) {
			return a.seq < b.seq
		}
		return a.deadline.Before(b.deadline)
	})

	next := c.timers[0]
	if next.deadline.After(target) {
		if target.After(c.now) {
			c.now = target
		}
		return nil
	}

	c.timers = c.timers[1:]
	next.fired = true
	if next.deadline.After(c.now) {
		c.now = next.deadline
	}
	return next
}

// Stop removes the timer from its clock.
func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			break
		}
	}
	return true
}

// Serialized returns a Clock whose callbacks are run through exec instead of
// being called directly. The session controller passes a function that takes
// its lock, runs the callback and publishes any resulting events.
func Serialized(inner Clock, exec func(f func())) Clock {
	return serializedClock{inner: inner, exec: exec}
}

type serializedClock struct {
	inner Clock
	exec  func(f func())
}

func (s serializedClock) Now() time.Time { return s.inner.Now() }

func (s serializedClock) AfterFunc(d time.Duration, f func()) Timer {
	return s.inner.AfterFunc(d, func() { s.exec(f) })
}
