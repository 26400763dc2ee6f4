// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds small helpers shared by Keyfob tests.
//
// [RequireReceive] wraps the select-with-timeout pattern for reading
// from a channel so individual tests do not hand-roll time.After
// safety valves.
package testutil
