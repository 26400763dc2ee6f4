// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package authclient is the HTTP boundary to the Keyfob auth service.
//
// [Client] exposes one method per logical auth operation: RequestCode
// and ValidateCode are public (no bearer credential), WhoAmI, Refresh,
// and Logout attach the current session token from the injected token
// source. All failures are normalized at this boundary into
// [*APIError] with a closed set of [Kind] values, so callers branch on
// kinds instead of probing response shapes.
//
// On any 401 response the client invokes the configured
// OnUnauthorized hook exactly once before returning the error. The
// hook must not issue requests through the client; the application
// wires it to drop local credentials and route back to the login
// surface.
//
// The concrete request mechanism is swappable by injecting an
// *http.Client; tests use httptest servers.
package authclient
