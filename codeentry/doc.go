// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package codeentry implements the fixed-width one-time-code input
// buffer: one digit per slot, auto-advance on entry, merge-backward
// backspace, and paste distribution across slots.
//
// [Buffer] is pure state with no rendering or terminal dependencies;
// the TUI layer feeds it key events and draws its slots. Mutators
// report when the buffer has just become complete so the caller can
// auto-submit exactly once per completion.
package codeentry
