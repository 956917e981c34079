// Package clock provides an injectable time source.
// Scoring and streak code never calls time.Now() directly, so every rule
// can be replayed at a chosen instant in tests.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock returns the system time.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.T
}

// FuncClock wraps a function as a Clock.
type FuncClock func() time.Time

// Now calls the wrapped function.
func (f FuncClock) Now() time.Time {
	return f()
}

// ManualClock is a settable clock for tests that walk through several days.
type ManualClock struct {
	mu sync.Mutex
	t  time.Time
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// NewReal returns a Clock backed by the system time.
func NewReal() Clock {
	return RealClock{}
}

// NewFixed returns a Clock that always returns t.
func NewFixed(t time.Time) Clock {
	return FixedClock{T: t}
}

// NewFunc returns a Clock backed by f.
func NewFunc(f func() time.Time) Clock {
	return FuncClock(f)
}

// NewManual returns a ManualClock starting at t.
func NewManual(t time.Time) *ManualClock {
	return &ManualClock{t: t}
}
