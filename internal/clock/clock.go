// Package clock lets timer-driven code run against real or simulated time.
//
// Production code holds a Clock and calls AfterFunc instead of
// time.AfterFunc. Tests hand in Fake() and move time with Advance, so
// idle-room expiry can be checked without sleeping.
package clock

import "time"

type Clock interface {
	Now() time.Time
	// AfterFunc calls f once d has elapsed. Stop on the returned Timer
	// cancels a call that has not started yet.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the call from running. It returns false if the call
// already ran or the timer was stopped before.
func (t *Timer) Stop() bool { return t.stopFunc() }
