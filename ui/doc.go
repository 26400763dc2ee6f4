// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package ui is the Keyfob terminal interface: a bubbletea program
// with one model per surface (login, verify, home) and a routing
// parent that enforces session state on every navigation.
//
// Navigation runs through [App.navigate], the route access guard. A
// protected target first tries a synchronous restore of the persisted
// session, then a network session check as a bubbletea command; the
// program stays on its current surface until the guard's result
// message arrives, so navigation suspends on the check. A denied
// navigation lands on the login surface with the original target
// carried as the return path. An authenticated user steering at the
// login surface is redirected to the home surface instead.
//
// The transport layer's unauthorized hook surfaces here as
// [UnauthorizedMsg]: credentials are already dropped by the time it
// arrives, and the app redirects to login unless an entry surface is
// already showing.
package ui
