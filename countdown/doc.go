// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package countdown implements the expiry timer behind the code
// validity window and the resend cooldown.
//
// An [Engine] decrements once per second while running, stops itself
// exactly once at zero, and never goes negative. Starting a run
// cancels the previous one, so two overlapping tick chains cannot
// exist. State is read via [Engine.Snapshot]; every change is also
// delivered on the coalescing channel from [Engine.C], which the TUI
// drains through a bubbletea command.
//
// The engine schedules against an injected [clock.Clock]; tests drive
// it deterministically with a fake clock.
package countdown
