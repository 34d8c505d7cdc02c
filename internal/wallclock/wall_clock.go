// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package wallclock

import (
	"sync"
	"time"
)

type (
	// WallClock abstracts the subset of package time used by the store and
	// the reconnect backoff.
	WallClock interface {
		After(d time.Duration) <-chan time.Time
		Now() time.Time
	}

	wallClock struct{}

	// Ticking is a deterministic WallClock. Every call to Now advances the
	// clock by a fixed step, and After fires immediately after advancing the
	// clock by the requested duration.
	Ticking struct {
		mu   sync.Mutex
		now  time.Time
		step time.Duration
	}
)

// After indirects time.After.
func (wallClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Now indirects time.Now.
func (wallClock) Now() time.Time {
	return time.Now()
}

// Instance is the real WallClock. Components take a WallClock option that
// defaults to this value.
var Instance WallClock = wallClock{}

// NewTicking creates a Ticking clock starting at start.
func NewTicking(start time.Time, step time.Duration) *Ticking {
	return &Ticking{now: start, step: step}
}

// Now returns the current fake time and advances it by one step.
func (t *Ticking) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now
	t.now = t.now.Add(t.step)
	return now
}

// After advances the fake time by d and returns a channel that is already
// ready.
func (t *Ticking) After(d time.Duration) <-chan time.Time {
	t.mu.Lock()
	t.now = t.now.Add(d)
	now := t.now
	t.mu.Unlock()

	c := make(chan time.Time, 1)
	c <- now
	return c
}
