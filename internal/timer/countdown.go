// Package timer provides the polling countdowns used by the acquisition loop.
package timer

import (
	"context"
	"time"

	"envlogger-go/errcode"
)

// Countdown is an auto-reloading countdown backed by time.Timer. Expirations
// are scheduled from the previous deadline, not from the moment Wait returns,
// so work done between waits does not stretch the period.
type Countdown struct {
	t        *time.Timer
	period   time.Duration
	deadline time.Time
	armed    bool
}

func NewCountdown() *Countdown { return &Countdown{} }

// Start (re)arms the countdown with period.
func (c *Countdown) Start(period time.Duration) {
	if period < 0 {
		period = 0
	}
	c.period = period
	c.deadline = time.Now().Add(period)
	if c.t == nil {
		c.t = time.NewTimer(period)
	} else {
		resetTimer(c.t, period)
	}
	c.armed = true
}

// Wait blocks until the current interval expires or ctx ends.
func (c *Countdown) Wait(ctx context.Context) error {
	if !c.armed {
		return errcode.NotArmed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.t.C:
	}
	now := time.Now()
	c.deadline = c.deadline.Add(c.period)
	if c.period > 0 {
		// Overran by whole periods: drop the missed expirations.
		for !c.deadline.After(now) {
			c.deadline = c.deadline.Add(c.period)
		}
	}
	resetTimer(c.t, c.deadline.Sub(now))
	return nil
}

// resetTimer safely stops, drains, and resets a timer.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		drainTimer(t)
	}
	if d < 0 {
		d = 0
	}
	t.Reset(d)
}

func drainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
