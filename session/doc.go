// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns the authentication state machine.
//
// [Store] moves between Anonymous, CodeRequested, Authenticated, and
// the transient Refreshing, driven by the verbs Initialize,
// RequestCode, ValidateCode, CheckSession, RefreshSession, Logout, and
// ClearError. It is the only writer of the persisted session: exactly
// two entries on disk, the raw session token and the serialized
// identity, always written and removed together. Every other component
// reads session state through the Store's accessors, never from disk.
//
// The invariant the whole package defends: the store reports
// authenticated exactly when it holds both an identity and a session
// token, and no code path ever persists one without the other.
//
// The in-memory token lives in a [secret.Buffer] so it stays out of
// swap and core dumps for the life of the session.
package session
