// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/keyfob-foundation/keyfob/lib/secret"
)

// newTestClient creates a Client pointing at a test server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

// withToken installs a fixed token source on the client.
func withToken(t *testing.T, client *Client, token string) {
	t.Helper()
	buffer, err := secret.NewFromBytes([]byte(token))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	client.SetTokenSource(func() *secret.Buffer { return buffer })
}

func writeJSON(t *testing.T, writer http.ResponseWriter, status int, payload any) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestRequestCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/api/auth/request-token" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		if got := request.Header.Get("Authorization"); got != "" {
			t.Errorf("public endpoint carried credential: %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if body["email"] != "user@example.com" {
			t.Errorf("email = %q", body["email"])
		}
		writeJSON(t, writer, http.StatusOK, CodeRequestResponse{
			Message:          "If the email exists, a 6-digit code has been sent",
			Email:            "u***@example.com",
			ExpiresInMinutes: 15,
		})
	}))

	response, err := client.RequestCode(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}
	if response.Email != "u***@example.com" || response.ExpiresInMinutes != 15 {
		t.Errorf("unexpected response: %+v", response)
	}
}

func TestRequestCodeRateLimited(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, http.StatusTooManyRequests, map[string]any{
			"detail": map[string]any{
				"detail":             "Too many requests. Please try again in 9 minutes.",
				"retry_after":        540,
				"attempts_remaining": 0,
			},
		})
	}))

	_, err := client.RequestCode(context.Background(), "user@example.com")
	apiError, ok := AsAPIError(err)
	if !ok || apiError.Kind != KindRateLimited {
		t.Fatalf("error = %v, want rate-limited APIError", err)
	}
	if apiError.RetryAfter != 540*time.Second {
		t.Errorf("RetryAfter = %v", apiError.RetryAfter)
	}
	if apiError.AttemptsRemaining == nil || *apiError.AttemptsRemaining != 0 {
		t.Errorf("AttemptsRemaining = %v, want explicit 0", apiError.AttemptsRemaining)
	}
	if apiError.Message != "Too many requests. Please try again in 9 minutes." {
		t.Errorf("Message = %q", apiError.Message)
	}
}

func TestRateLimitHintsAreIndependentlyOptional(t *testing.T) {
	tests := []struct {
		name           string
		detail         map[string]any
		wantRetryAfter time.Duration
		wantAttempts   bool
	}{
		{
			name:           "only retry_after",
			detail:         map[string]any{"detail": "slow down", "retry_after": 60},
			wantRetryAfter: time.Minute,
		},
		{
			name:         "only attempts_remaining",
			detail:       map[string]any{"detail": "slow down", "attempts_remaining": 2},
			wantAttempts: true,
		},
		{
			name:   "neither hint",
			detail: map[string]any{"detail": "slow down"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writeJSON(t, writer, http.StatusTooManyRequests, map[string]any{"detail": test.detail})
			}))
			_, err := client.RequestCode(context.Background(), "user@example.com")
			apiError, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("error = %v", err)
			}
			if apiError.RetryAfter != test.wantRetryAfter {
				t.Errorf("RetryAfter = %v, want %v", apiError.RetryAfter, test.wantRetryAfter)
			}
			if (apiError.AttemptsRemaining != nil) != test.wantAttempts {
				t.Errorf("AttemptsRemaining = %v", apiError.AttemptsRemaining)
			}
		})
	}
}

func TestValidateCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/api/auth/validate-token" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(request.Body).Decode(&body)
		if body["token"] != "123456" {
			t.Errorf("wire field token = %q", body["token"])
		}
		writeJSON(t, writer, http.StatusOK, ValidateResponse{
			AccessToken: "jwt-abc",
			TokenType:   "bearer",
			ExpiresIn:   604800,
			User:        Identity{ID: "user-1", Email: "user@example.com", Active: true},
		})
	}))

	response, err := client.ValidateCode(context.Background(), "user@example.com", "123456")
	if err != nil {
		t.Fatalf("ValidateCode failed: %v", err)
	}
	if response.AccessToken != "jwt-abc" || response.User.ID != "user-1" {
		t.Errorf("unexpected response: %+v", response)
	}
}

func TestValidateCodeRejectionReasons(t *testing.T) {
	tests := []struct {
		name       string
		detail     string
		wantReason Reason
	}{
		{"expired", "Invalid or expired token", ReasonExpired},
		{"already used", "Token already used", ReasonUsed},
		{"invalid", "Invalid email or token", ReasonInvalid},
		{"unrecognized wording", "no dice", ReasonUnknown},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writeJSON(t, writer, http.StatusUnauthorized, map[string]string{"detail": test.detail})
			}))

			_, err := client.ValidateCode(context.Background(), "user@example.com", "000000")
			apiError, ok := AsAPIError(err)
			if !ok || apiError.Kind != KindRejectedCode {
				t.Fatalf("error = %v, want rejected-code APIError", err)
			}
			if apiError.Reason != test.wantReason {
				t.Errorf("Reason = %v, want %v", apiError.Reason, test.wantReason)
			}
			if apiError.Message != test.detail {
				t.Errorf("Message = %q", apiError.Message)
			}
		})
	}
}

func TestWhoAmIAttachesBearer(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("Authorization"); got != "Bearer jwt-abc" {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(t, writer, http.StatusOK, Identity{ID: "user-1", Email: "user@example.com", Active: true})
	}))
	withToken(t, client, "jwt-abc")

	identity, err := client.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI failed: %v", err)
	}
	if identity.ID != "user-1" {
		t.Errorf("identity = %+v", identity)
	}
}

func TestUnauthorizedHookFiresOncePerCall(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
	}))
	withToken(t, client, "stale")

	fired := 0
	client.SetOnUnauthorized(func() { fired++ })

	_, err := client.WhoAmI(context.Background())
	if !IsKind(err, KindUnauthorized) {
		t.Fatalf("error = %v, want unauthorized", err)
	}
	if fired != 1 {
		t.Fatalf("hook fired %d times for one call", fired)
	}

	if _, err := client.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh should fail")
	}
	if fired != 2 {
		t.Fatalf("hook fired %d times for two calls", fired)
	}
}

func TestNetworkFailureIsKindNetwork(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // Dead endpoint: every request fails at dial time.

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	_, err = client.RequestCode(context.Background(), "user@example.com")
	if !IsKind(err, KindNetwork) {
		t.Fatalf("error = %v, want network kind", err)
	}
	apiError, _ := AsAPIError(err)
	if apiError.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for no response", apiError.StatusCode)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, http.StatusForbidden, map[string]string{
			"detail": "Email not authorized. Please contact your administrator to request access.",
		})
	}))

	_, err := client.RequestCode(context.Background(), "user@example.com")
	apiError, ok := AsAPIError(err)
	if !ok || apiError.Kind != KindServer {
		t.Fatalf("error = %v, want server kind", err)
	}
	if apiError.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", apiError.StatusCode)
	}
	if apiError.Message == http.StatusText(http.StatusForbidden) {
		t.Error("server detail was not surfaced")
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("expected error for missing BaseURL")
	}
}
