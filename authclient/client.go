// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keyfob-foundation/keyfob/lib/secret"
)

// maxResponseBytes caps how much of a response body is read. Auth
// payloads are small; anything larger is a misbehaving server.
const maxResponseBytes = 1 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the auth service origin (e.g. "https://auth.example.com").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used. Injecting a custom client is how the request mechanism
	// is swapped (proxied transport, recording transport, test
	// server).
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client speaks to the auth service. A Client carries no session state
// of its own: the token source and unauthorized hook are attached by
// the session layer after construction.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	// tokenSource yields the current session token, or nil when
	// anonymous. Set by the session store, which owns the token.
	tokenSource func() *secret.Buffer

	// onUnauthorized runs once per request that draws a 401, before
	// the error is returned. It must not issue requests through this
	// client.
	onUnauthorized func()
}

// NewClient creates a Client for the auth service at config.BaseURL.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("authclient: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("authclient: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// SetTokenSource installs the function that yields the current session
// token for authenticated endpoints. A nil return means anonymous.
func (c *Client) SetTokenSource(source func() *secret.Buffer) {
	c.tokenSource = source
}

// SetOnUnauthorized installs the hook run when any request draws a
// 401. The hook fires once per failed call and must not issue
// requests through this client.
func (c *Client) SetOnUnauthorized(hook func()) {
	c.onUnauthorized = hook
}

// RequestCode asks the service to email a one-time code. Public: no
// bearer credential is attached.
func (c *Client) RequestCode(ctx context.Context, email string) (*CodeRequestResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/auth/request-token", false, codeRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var response CodeRequestResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("malformed request-token response: %v", err)}
	}
	c.logger.Info("one-time code requested", "masked_email", response.Email)
	return &response, nil
}

// ValidateCode exchanges an emailed code for a session. Public: no
// bearer credential is attached. A 401 here is a refused code, not a
// stale session, so it is re-tagged KindRejectedCode with the reason
// read from the server's wording.
func (c *Client) ValidateCode(ctx context.Context, email, code string) (*ValidateResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/auth/validate-token", false, validateRequest{Email: email, Code: code})
	if err != nil {
		if apiError, ok := AsAPIError(err); ok && apiError.Kind == KindUnauthorized {
			apiError.Kind = KindRejectedCode
			apiError.Reason = classifyRejection(apiError.Message)
		}
		return nil, err
	}

	var response ValidateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("malformed validate-token response: %v", err)}
	}
	c.logger.Info("one-time code accepted", "user_id", response.User.ID)
	return &response, nil
}

// WhoAmI validates the current session token and returns the account
// it belongs to.
func (c *Client) WhoAmI(ctx context.Context) (*Identity, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", true, nil)
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("malformed me response: %v", err)}
	}
	return &identity, nil
}

// Refresh exchanges the current session token for a fresh one.
func (c *Client) Refresh(ctx context.Context) (*ValidateResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh", true, nil)
	if err != nil {
		return nil, err
	}

	var response ValidateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("malformed refresh response: %v", err)}
	}
	c.logger.Info("session refreshed", "user_id", response.User.ID)
	return &response, nil
}

// Logout asks the service to invalidate the current session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", true, nil)
	return err
}

// doRequest performs one HTTP round trip. withToken attaches the
// current session token as a bearer credential; public endpoints pass
// false and never require a prior token. On non-2xx the response is
// normalized into *APIError, and a 401 additionally fires the
// onUnauthorized hook exactly once before the error is returned.
func (c *Client) doRequest(ctx context.Context, method, path string, withToken bool, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("encoding request body: %v", err)}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("creating request: %v", err)}
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if withToken && c.tokenSource != nil {
		if token := c.tokenSource(); token != nil {
			request.Header.Set("Authorization", "Bearer "+token.String())
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("request to %s %s failed: %v", method, path, err)}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("reading response body: %v", err)}
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	apiError := normalizeFailure(response.StatusCode, responseBody)
	if response.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	c.logger.Warn("auth request failed",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"kind", apiError.Kind.String(),
	)
	return nil, apiError
}

// normalizeFailure turns a non-2xx response into the one error shape
// leaving this package. The service writes failure detail as either a
// plain string or an object carrying rate-limit hints; both are
// accepted.
func normalizeFailure(statusCode int, body []byte) *APIError {
	apiError := &APIError{
		Kind:       KindServer,
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
	}
	switch statusCode {
	case http.StatusUnauthorized:
		apiError.Kind = KindUnauthorized
	case http.StatusTooManyRequests:
		apiError.Kind = KindRateLimited
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiError
	}

	var plainDetail string
	if json.Unmarshal(envelope.Detail, &plainDetail) == nil {
		apiError.Message = plainDetail
		return apiError
	}

	var richDetail struct {
		Detail            string `json:"detail"`
		RetryAfter        *int   `json:"retry_after"`
		AttemptsRemaining *int   `json:"attempts_remaining"`
	}
	if json.Unmarshal(envelope.Detail, &richDetail) == nil {
		if richDetail.Detail != "" {
			apiError.Message = richDetail.Detail
		}
		if richDetail.RetryAfter != nil {
			apiError.RetryAfter = time.Duration(*richDetail.RetryAfter) * time.Second
		}
		apiError.AttemptsRemaining = richDetail.AttemptsRemaining
	}
	return apiError
}
