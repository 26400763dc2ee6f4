// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "time"

// TB is the subset of testing.TB these helpers need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from ch within timeout, or fails the
// test with message.
//
//	snap := testutil.RequireReceive(t, engine.C(), time.Second, "countdown tick")
func RequireReceive[T any](t TB, ch <-chan T, timeout time.Duration, message string) T {
	t.Helper()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed without a value: %s", message)
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, message)
	}
	panic("unreachable")
}

// RequireNoReceive asserts that ch stays silent for the given window.
// Used to verify coalescing and cancelled timers.
func RequireNoReceive[T any](t TB, ch <-chan T, window time.Duration, message string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected value received: %s", message)
	case <-time.After(window):
	}
}
