// Package clock abstracts wall-clock reads so that time-bound rules
// (OTP expiry, delivery timestamps) can be tested deterministically.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the production clock. It reports UTC time.
type System struct{}

// NewSystem returns the wall clock.
func NewSystem() System {
	return System{}
}

// Now returns the current wall-clock time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts an ordinary function to the Clock interface.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}

// Fixed is a manually advanced clock.
type Fixed struct {
	now time.Time
}

// NewFixed returns a clock frozen at now.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}
