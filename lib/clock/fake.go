// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at the given time. Time moves only
// when Advance is called.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for tests. Pending After channels
// and AfterFunc callbacks fire when Advance moves the clock past their
// deadline, in deadline order. AfterFunc callbacks run synchronously
// inside Advance; a callback that schedules a new timer within the
// advanced window has that timer fired in the same Advance call, which
// is what makes a rescheduling tick chain observable one call at a
// time.
//
// Safe for concurrent use, but do not call Advance from inside an
// AfterFunc callback — that deadlocks.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
}

// fakeWaiter is one pending After channel or AfterFunc callback.
type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time // nil for AfterFunc waiters
	callback func()         // nil for After waiters
	stopped  bool
}

// Now returns the fake's current time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// After registers a channel waiter that fires when the clock advances
// past the deadline.
func (f *FakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- f.current
		return channel
	}
	f.waiters = append(f.waiters, &fakeWaiter{
		deadline: f.current.Add(d),
		channel:  channel,
	})
	return channel
}

// AfterFunc registers a callback waiter. If d <= 0 the callback runs
// immediately on the calling goroutine.
func (f *FakeClock) AfterFunc(d time.Duration, callback func()) *Timer {
	f.mu.Lock()

	if d <= 0 {
		f.mu.Unlock()
		callback()
		return &Timer{stopFunc: func() bool { return false }}
	}

	waiter := &fakeWaiter{
		deadline: f.current.Add(d),
		callback: callback,
	}
	f.waiters = append(f.waiters, waiter)
	f.mu.Unlock()

	return &Timer{stopFunc: func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if waiter.stopped {
			return false
		}
		waiter.stopped = true
		return true
	}}
}

// Advance moves the clock forward by d, firing every waiter whose
// deadline falls within the window, in deadline order. Waiters
// registered by callbacks during the advance are fired in the same
// call if their deadline also falls within the window.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.current.Add(d)

	for {
		waiter := f.popDueLocked(target)
		if waiter == nil {
			break
		}
		// The clock reads as the waiter's deadline while it fires, so
		// a callback that schedules its next tick measures from the
		// tick it is handling, not from the end of the window.
		f.current = waiter.deadline

		if waiter.channel != nil {
			waiter.channel <- waiter.deadline
			continue
		}

		callback := waiter.callback
		f.mu.Unlock()
		callback()
		f.mu.Lock()
	}

	f.current = target
	f.mu.Unlock()
}

// popDueLocked removes and returns the earliest unstopped waiter with
// deadline <= target, or nil if none is due. Stopped waiters are
// dropped along the way.
func (f *FakeClock) popDueLocked(target time.Time) *fakeWaiter {
	live := f.waiters[:0]
	for _, waiter := range f.waiters {
		if !waiter.stopped {
			live = append(live, waiter)
		}
	}
	f.waiters = live

	sort.SliceStable(f.waiters, func(i, j int) bool {
		return f.waiters[i].deadline.Before(f.waiters[j].deadline)
	})

	if len(f.waiters) == 0 || f.waiters[0].deadline.After(target) {
		return nil
	}
	due := f.waiters[0]
	f.waiters = f.waiters[1:]
	return due
}

// PendingWaiters reports how many unstopped waiters are registered.
// Used by tests to verify that teardown cancelled scheduled ticks.
func (f *FakeClock) PendingWaiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, waiter := range f.waiters {
		if !waiter.stopped {
			count++
		}
	}
	return count
}
