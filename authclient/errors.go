// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package authclient

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies a transport failure. The set is closed: downstream
// code switches on Kind rather than inspecting payloads.
type Kind int

const (
	// KindNetwork covers connection failures, timeouts, and
	// unparseable responses. No server-side state can be inferred.
	KindNetwork Kind = iota

	// KindServer covers 4xx/5xx responses that fit no more specific
	// kind. The server's message is carried through verbatim.
	KindServer

	// KindUnauthorized is a 401 on an authenticated endpoint: the
	// session token is missing, stale, or revoked.
	KindUnauthorized

	// KindRejectedCode is a refused one-time code on the validate
	// endpoint. Reason narrows it further.
	KindRejectedCode

	// KindRateLimited is a 429 on the request-code endpoint. The
	// RetryAfter and AttemptsRemaining hints are each optional and
	// independent; neither takes precedence when both are present.
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindUnauthorized:
		return "unauthorized"
	case KindRejectedCode:
		return "rejected-code"
	case KindRateLimited:
		return "rate-limited"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Reason narrows KindRejectedCode based on the server's explanation of
// why a code was refused.
type Reason int

const (
	// ReasonUnknown means the server's wording matched no known
	// refusal pattern.
	ReasonUnknown Reason = iota
	// ReasonExpired means the code's validity window has passed.
	ReasonExpired
	// ReasonUsed means the code was already consumed.
	ReasonUsed
	// ReasonInvalid means the code never matched.
	ReasonInvalid
)

// APIError is the single normalized error shape leaving this package.
type APIError struct {
	// Kind classifies the failure.
	Kind Kind

	// Reason refines KindRejectedCode; ReasonUnknown otherwise.
	Reason Reason

	// Message is the human-readable explanation, taken from the
	// server where one was given.
	Message string

	// StatusCode is the HTTP status, or 0 when no response arrived.
	StatusCode int

	// RetryAfter is the server's rate-limit backoff hint; zero when
	// absent.
	RetryAfter time.Duration

	// AttemptsRemaining is the server's remaining-attempts hint; nil
	// when absent. Zero is a meaningful value (no attempts left), so
	// absence is a nil pointer rather than a sentinel.
	AttemptsRemaining *int
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authclient: %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("authclient: %s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.Kind == kind
}

// AsAPIError extracts the *APIError from err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiError *APIError
	if errors.As(err, &apiError) {
		return apiError, true
	}
	return nil, false
}

// classifyRejection reads the server's refusal wording. "already used"
// is checked before "expired" and "invalid" because server messages
// such as "Invalid or expired token" name several conditions at once
// and the most specific phrase wins.
func classifyRejection(message string) Reason {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "used"):
		return ReasonUsed
	case strings.Contains(lowered, "expired"):
		return ReasonExpired
	case strings.Contains(lowered, "invalid"), strings.Contains(lowered, "incorrect"):
		return ReasonInvalid
	}
	return ReasonUnknown
}
