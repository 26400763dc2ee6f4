// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import "fmt"

// Route identifies a navigable surface.
type Route int

const (
	// RouteLogin is the email-entry surface. Open; the entry point
	// for unauthenticated users.
	RouteLogin Route = iota
	// RouteVerify is the code-entry surface. Open; reachable only
	// after a code request, but never gated on a session.
	RouteVerify
	// RouteHome is the authenticated landing surface. Protected.
	RouteHome
)

func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteVerify:
		return "verify"
	case RouteHome:
		return "home"
	}
	return fmt.Sprintf("route(%d)", int(r))
}

// Protected reports whether the route requires an authenticated
// session.
func (r Route) Protected() bool { return r == RouteHome }

// EntrySurface reports whether the route belongs to the login flow.
// A 401 arriving while one of these is showing clears credentials but
// does not redirect — the user is already where a redirect would put
// them.
func (r Route) EntrySurface() bool { return r == RouteLogin || r == RouteVerify }
