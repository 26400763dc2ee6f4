// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects [Real]; tests inject [Fake] and drive time forward with
// [FakeClock.Advance].
//
// Any function that would otherwise call time.Now, time.After, or
// time.AfterFunc should accept a [Clock] (or sit on a struct that
// carries one) instead of reaching for the time package directly.
// The countdown engine is the main consumer: its once-per-second tick
// is an AfterFunc chain, which the fake clock fires synchronously and
// in deadline order during Advance.
//
// This package depends on no other Keyfob packages.
package clock
