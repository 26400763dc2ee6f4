// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import (
	"sync"
	"time"

	"github.com/keyfob-foundation/keyfob/lib/clock"
)

// DefaultLowThreshold is the remaining-seconds boundary below which a
// running window counts as low on time.
const DefaultLowThreshold = 30

// Config holds Engine construction parameters.
type Config struct {
	// Clock schedules the tick chain. If nil, clock.Real() is used.
	Clock clock.Clock

	// DefaultSeconds is the duration used by Reset when no explicit
	// value is given, and the initial Remaining before the first
	// Start. Must be positive.
	DefaultSeconds int

	// LowThreshold is the LowTime boundary in seconds. If zero,
	// DefaultLowThreshold is used.
	LowThreshold int
}

// Snapshot is one observation of an Engine.
type Snapshot struct {
	// Remaining is the number of whole seconds left. Never negative.
	Remaining int

	// Running reports whether the tick chain is active.
	Running bool

	// LowTime is true while 0 < Remaining <= the low threshold.
	// Always false once Expired.
	LowTime bool

	// Expired is true when Remaining has reached zero.
	Expired bool
}

// Engine is a single countdown window. Safe for concurrent use; the
// tick fires on a timer goroutine while the UI reads snapshots.
type Engine struct {
	mu           sync.Mutex
	clk          clock.Clock
	defaultSecs  int
	lowThreshold int

	remaining int
	running   bool
	timer     *clock.Timer

	// generation invalidates ticks from a cancelled run: Start, Stop,
	// and Reset bump it, and a tick whose generation no longer
	// matches returns without touching state.
	generation int

	notify chan Snapshot
}

// New creates a stopped Engine with Remaining set to
// config.DefaultSeconds.
func New(config Config) *Engine {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	lowThreshold := config.LowThreshold
	if lowThreshold == 0 {
		lowThreshold = DefaultLowThreshold
	}
	return &Engine{
		clk:          clk,
		defaultSecs:  config.DefaultSeconds,
		lowThreshold: lowThreshold,
		remaining:    config.DefaultSeconds,
		notify:       make(chan Snapshot, 1),
	}
}

// Start begins a fresh run of the given duration, cancelling any run
// already in progress. A non-positive duration expires immediately.
func (e *Engine) Start(seconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	if seconds <= 0 {
		e.remaining = 0
		e.running = false
		e.emitLocked()
		return
	}
	e.remaining = seconds
	e.running = true
	e.scheduleLocked()
	e.emitLocked()
}

// Stop halts the tick chain without resetting Remaining. Safe to call
// on a stopped engine. Owners must call Stop on teardown so no
// scheduled tick outlives them.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.cancelLocked()
	e.running = false
	e.emitLocked()
}

// Reset stops the engine and sets Remaining to the given number of
// seconds, or to the configured default when called without an
// argument.
func (e *Engine) Reset(seconds ...int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.running = false
	e.remaining = e.defaultSecs
	if len(seconds) > 0 {
		e.remaining = max(seconds[0], 0)
	}
	e.emitLocked()
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// C returns the change-notification channel. It holds at most the
// latest snapshot: an unread value is replaced rather than queued, so
// a slow reader sees current state, not a backlog.
func (e *Engine) C() <-chan Snapshot {
	return e.notify
}

func (e *Engine) tick(generation int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if generation != e.generation || !e.running {
		return
	}

	e.remaining--
	if e.remaining <= 0 {
		e.remaining = 0
		e.running = false
		e.timer = nil
	} else {
		e.scheduleLocked()
	}
	e.emitLocked()
}

func (e *Engine) scheduleLocked() {
	generation := e.generation
	e.timer = e.clk.AfterFunc(time.Second, func() { e.tick(generation) })
}

func (e *Engine) cancelLocked() {
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Remaining: e.remaining,
		Running:   e.running,
		LowTime:   e.remaining > 0 && e.remaining <= e.lowThreshold,
		Expired:   e.remaining == 0,
	}
}

func (e *Engine) emitLocked() {
	snapshot := e.snapshotLocked()
	for {
		select {
		case e.notify <- snapshot:
			return
		default:
		}
		// Channel full: discard the stale snapshot and retry.
		select {
		case <-e.notify:
		default:
		}
	}
}
