// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package authclient

import "time"

// Identity is the server's view of an account. Immutable once issued
// within a session; re-authentication or refresh replaces it
// wholesale.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// codeRequest is the request-token body.
type codeRequest struct {
	Email string `json:"email"`
}

// CodeRequestResponse is the request-token result. Email comes back
// masked (e.g. "u***@example.com") — the service never confirms that
// an address exists.
type CodeRequestResponse struct {
	Message          string `json:"message"`
	Email            string `json:"email"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// validateRequest is the validate-token body. The service names the
// one-time code "token" on the wire.
type validateRequest struct {
	Email string `json:"email"`
	Code  string `json:"token"`
}

// ValidateResponse is the validate-token and refresh result.
type ValidateResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        Identity `json:"user"`
}

// LogoutResponse is the logout confirmation.
type LogoutResponse struct {
	Message string `json:"message"`
}
