// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time surface Keyfob code schedules against.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. Equivalent to time.After.
	After(d time.Duration) <-chan time.Time

	// AfterFunc waits for duration d, then calls f. The returned
	// Timer cancels the pending call via Stop. With the real clock f
	// runs in its own goroutine; with the fake clock f runs
	// synchronously inside Advance.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a scheduled one-shot event created by AfterFunc.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. Returns true if the call
// stopped the timer, false if it had already fired or been stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }
