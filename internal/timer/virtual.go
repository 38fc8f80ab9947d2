package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"envlogger-go/errcode"
)

// ErrExhausted is returned by Virtual.Wait once Limit waits have completed.
var ErrExhausted = errors.New("timer: wait limit reached")

// Virtual is a countdown over a simulated clock. Each Wait returns at once
// and moves the clock to the next deadline.
type Virtual struct {
	// Limit bounds the number of successful waits; 0 means unlimited.
	Limit int

	mu       sync.Mutex
	now      time.Time
	period   time.Duration
	deadline time.Time
	armed    bool
	starts   int
	waits    int
}

// NewVirtual returns a Virtual timer whose clock starts at epoch.
func NewVirtual(epoch time.Time) *Virtual { return &Virtual{now: epoch} }

func (v *Virtual) Start(period time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.period = period
	v.deadline = v.now.Add(period)
	v.armed = true
	v.starts++
}

func (v *Virtual) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.armed {
		return errcode.NotArmed
	}
	if v.Limit > 0 && v.waits >= v.Limit {
		return ErrExhausted
	}
	v.now = v.deadline
	v.deadline = v.deadline.Add(v.period)
	v.waits++
	return nil
}

// Now reports the simulated clock.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Waits reports completed waits.
func (v *Virtual) Waits() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.waits
}

// Starts reports how many times the timer was armed.
func (v *Virtual) Starts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.starts
}
