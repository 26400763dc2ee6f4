// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import (
	"testing"
	"time"

	"github.com/keyfob-foundation/keyfob/lib/clock"
	"github.com/keyfob-foundation/keyfob/lib/testutil"
)

func newTestEngine(t *testing.T, defaultSeconds int) (*Engine, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	engine := New(Config{Clock: fake, DefaultSeconds: defaultSeconds})
	t.Cleanup(engine.Stop)
	return engine, fake
}

func TestInitialState(t *testing.T) {
	engine, _ := newTestEngine(t, 120)

	snap := engine.Snapshot()
	if snap.Remaining != 120 || snap.Running || snap.Expired || snap.LowTime {
		t.Fatalf("initial snapshot = %+v", snap)
	}
}

func TestFullRunToExpiry(t *testing.T) {
	engine, fake := newTestEngine(t, 120)
	engine.Start(120)

	fake.Advance(119 * time.Second)
	snap := engine.Snapshot()
	if snap.Remaining != 1 || !snap.Running || !snap.LowTime || snap.Expired {
		t.Fatalf("at 119s: %+v", snap)
	}

	fake.Advance(1 * time.Second)
	snap = engine.Snapshot()
	if snap.Remaining != 0 || snap.Running || snap.LowTime || !snap.Expired {
		t.Fatalf("at expiry: %+v", snap)
	}

	// Ticks past zero must not drive Remaining negative.
	fake.Advance(5 * time.Second)
	snap = engine.Snapshot()
	if snap.Remaining != 0 || snap.Running || !snap.Expired {
		t.Fatalf("past expiry: %+v", snap)
	}
}

func TestLowTimeBoundary(t *testing.T) {
	engine, fake := newTestEngine(t, 120)
	engine.Start(120)

	fake.Advance(89 * time.Second)
	if snap := engine.Snapshot(); snap.LowTime {
		t.Fatalf("LowTime at %ds remaining", snap.Remaining)
	}
	fake.Advance(1 * time.Second)
	if snap := engine.Snapshot(); !snap.LowTime || snap.Remaining != 30 {
		t.Fatalf("at threshold: %+v", snap)
	}
}

func TestStopFreezesRemaining(t *testing.T) {
	engine, fake := newTestEngine(t, 60)
	engine.Start(60)
	fake.Advance(20 * time.Second)

	engine.Stop()
	if snap := engine.Snapshot(); snap.Remaining != 40 || snap.Running {
		t.Fatalf("after Stop: %+v", snap)
	}

	// A cancelled tick chain must not keep decrementing.
	fake.Advance(30 * time.Second)
	if snap := engine.Snapshot(); snap.Remaining != 40 {
		t.Fatalf("Remaining changed after Stop: %+v", snap)
	}
	if fake.PendingWaiters() != 0 {
		t.Errorf("scheduled tick leaked after Stop: %d waiters", fake.PendingWaiters())
	}
}

func TestRestartCancelsPriorRun(t *testing.T) {
	engine, fake := newTestEngine(t, 60)
	engine.Start(60)
	fake.Advance(10 * time.Second)

	engine.Start(60)
	fake.Advance(10 * time.Second)
	if snap := engine.Snapshot(); snap.Remaining != 50 {
		t.Fatalf("after restart+10s: %+v (old run still ticking?)", snap)
	}
	// Exactly one tick chain: one pending waiter.
	if fake.PendingWaiters() != 1 {
		t.Errorf("pending waiters = %d, want 1", fake.PendingWaiters())
	}
}

func TestResetUsesDefaultAndExplicit(t *testing.T) {
	engine, fake := newTestEngine(t, 60)
	engine.Start(60)
	fake.Advance(15 * time.Second)

	engine.Reset()
	if snap := engine.Snapshot(); snap.Remaining != 60 || snap.Running {
		t.Fatalf("after Reset(): %+v", snap)
	}

	engine.Reset(90)
	if snap := engine.Snapshot(); snap.Remaining != 90 || snap.Running {
		t.Fatalf("after Reset(90): %+v", snap)
	}
}

func TestStartZeroExpiresImmediately(t *testing.T) {
	engine, _ := newTestEngine(t, 60)
	engine.Start(0)
	if snap := engine.Snapshot(); !snap.Expired || snap.Running {
		t.Fatalf("Start(0): %+v", snap)
	}
}

func TestNotifyCoalescesToLatest(t *testing.T) {
	engine, fake := newTestEngine(t, 10)
	engine.Start(10)
	fake.Advance(4 * time.Second)

	// Nothing was drained during four ticks; only the newest snapshot
	// survives in the channel.
	snap := testutil.RequireReceive(t, engine.C(), time.Second, "coalesced snapshot")
	if snap.Remaining != 6 {
		t.Fatalf("coalesced snapshot = %+v, want Remaining 6", snap)
	}
	testutil.RequireNoReceive(t, engine.C(), 50*time.Millisecond, "channel should hold one snapshot at most")
}
