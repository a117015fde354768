package testutil

import (
	"sync"
	"time"
)

// StepClock is a fake clock that advances by a fixed step on every reading.
// Its Now method can be passed wherever a func() time.Time is expected.
//
// Thread-safety: safe for concurrent use.
type StepClock struct {
	mu    sync.Mutex
	now   time.Time
	step  time.Duration
	reads int
}

// NewStepClock returns a clock whose first reading is start+step.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{now: start, step: step}
}

// Now advances the clock and returns the new time.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	c.reads++
	return c.now
}

// Reads returns how many times Now was called.
func (c *StepClock) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
