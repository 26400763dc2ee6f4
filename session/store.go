// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/keyfob-foundation/keyfob/authclient"
	"github.com/keyfob-foundation/keyfob/lib/secret"
)

// State is the store's position in the auth lifecycle.
type State int

const (
	// StateAnonymous holds no session. The initial state, and the
	// destination of logout and every failure that invalidates the
	// session.
	StateAnonymous State = iota
	// StateCodeRequested means a one-time code has been emailed and
	// the store is waiting for it to be validated.
	StateCodeRequested
	// StateAuthenticated holds a session token and identity.
	StateAuthenticated
	// StateRefreshing is the transient window during a token
	// refresh. Ends in StateAuthenticated or StateAnonymous.
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateCodeRequested:
		return "code-requested"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config holds Store construction parameters.
type Config struct {
	// Client is the transport to the auth service. Required. The
	// store installs itself as the client's token source and
	// unauthorized hook.
	Client *authclient.Client
	// StateDir is where the two persisted session entries live.
	// Required.
	StateDir string
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Store is the authentication state machine. Safe for concurrent use:
// the TUI's command goroutines call verbs while the view reads
// accessors. The mutex is never held across a network call, so the
// transport's unauthorized hook can re-enter DropCredentials.
type Store struct {
	client   *authclient.Client
	stateDir string
	logger   *slog.Logger

	mu           sync.Mutex
	state        State
	identity     *authclient.Identity
	token        *secret.Buffer
	pendingEmail string
	errorMessage string
}

// New creates a Store and wires it into the client as token source and
// unauthorized hook.
func New(config Config) (*Store, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("session: Client is required")
	}
	if config.StateDir == "" {
		return nil, fmt.Errorf("session: StateDir is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{
		client:   config.Client,
		stateDir: config.StateDir,
		logger:   logger,
	}
	config.Client.SetTokenSource(store.currentToken)
	config.Client.SetOnUnauthorized(store.DropCredentials)
	return store, nil
}

// Initialize restores a persisted session, transitioning straight to
// Authenticated without a network call when both entries are present
// and well-formed. Malformed or partial persisted data is discarded
// (both entries removed) and the state stays Anonymous. Synchronous,
// idempotent, never fails.
func (s *Store) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnonymous || s.token != nil {
		return
	}

	token, identity, err := loadSession(s.stateDir)
	if err != nil {
		// No partial restore: whatever half-session is on disk goes.
		clearSession(s.stateDir)
		s.logger.Debug("no persisted session restored", "reason", err)
		return
	}

	s.token = token
	s.identity = identity
	s.state = StateAuthenticated
	s.logger.Info("restored persisted session", "user_id", identity.ID)
}

// RequestCode asks the service to email a one-time code. The only
// client-side gate is a non-empty address: format checks are advisory
// (the server is the authority on deliverability), so a doubtful
// address is logged and sent anyway. On success the server-echoed
// masked email is recorded as the pending request and the store moves
// to CodeRequested. The store does not start any countdown; timer
// policy belongs to the caller.
func (s *Store) RequestCode(ctx context.Context, email string) (*authclient.CodeRequestResponse, error) {
	s.ClearError()

	email = strings.TrimSpace(email)
	if email == "" {
		err := fmt.Errorf("session: email is required")
		s.setError("Enter your email address.")
		return nil, err
	}
	if !LooksLikeEmail(email) {
		s.logger.Warn("email fails advisory format check, submitting anyway", "email", email)
	}

	response, err := s.client.RequestCode(ctx, email)
	if err != nil {
		s.setError(userMessage(err))
		return nil, err
	}

	s.mu.Lock()
	s.pendingEmail = response.Email
	if s.state == StateAnonymous {
		s.state = StateCodeRequested
	}
	s.mu.Unlock()
	return response, nil
}

// ValidateCode exchanges the emailed code for a session. On success
// the identity and session token are set together, persisted together,
// and the store moves to Authenticated. On failure the store stays in
// CodeRequested with an error message distinguishing expired, already
// used, invalid, and generic refusals; the error is returned for the
// caller to branch on.
func (s *Store) ValidateCode(ctx context.Context, email, code string) error {
	s.ClearError()

	response, err := s.client.ValidateCode(ctx, email, code)
	if err != nil {
		s.setError(userMessage(err))
		return err
	}

	if err := s.adoptSession(response); err != nil {
		s.setError("Could not store the session. Try again.")
		return err
	}
	return nil
}

// CheckSession verifies the held token against the service. Without a
// token it reports false immediately and without network traffic.
// Success refreshes the identity and confirms Authenticated. Failure
// logs the session out; this is the single path by which a stale
// persisted token is detected and purged.
func (s *Store) CheckSession(ctx context.Context) bool {
	s.mu.Lock()
	if s.token == nil {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	identity, err := s.client.WhoAmI(ctx)
	if err != nil {
		s.logger.Info("session check failed, logging out", "error", err)
		s.Logout(ctx)
		return false
	}

	s.mu.Lock()
	s.identity = identity
	s.state = StateAuthenticated
	s.mu.Unlock()
	return true
}

// RefreshSession exchanges the current token for a fresh one,
// replacing token and identity together and re-persisting both. On
// failure the store logs out and reports a distinct session-expired
// error.
func (s *Store) RefreshSession(ctx context.Context) error {
	s.mu.Lock()
	if s.token == nil {
		s.mu.Unlock()
		return fmt.Errorf("session: no session to refresh")
	}
	if s.state == StateAuthenticated {
		s.state = StateRefreshing
	}
	s.mu.Unlock()

	response, err := s.client.Refresh(ctx)
	if err != nil {
		s.Logout(ctx)
		s.setError("Your session has expired. Sign in again.")
		return err
	}

	if err := s.adoptSession(response); err != nil {
		s.setError("Could not store the session. Try again.")
		return err
	}
	return nil
}

// Logout invalidates the session remotely when a token is held (the
// call is best-effort: a dead network does not block signing out) and
// then unconditionally clears the identity, token, pending request,
// error state, and both persisted entries. After Logout the store is
// indistinguishable from a fresh one.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	hasToken := s.token != nil
	s.mu.Unlock()

	if hasToken {
		if err := s.client.Logout(ctx); err != nil {
			s.logger.Debug("remote logout failed, clearing locally anyway", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeTokenLocked()
	s.identity = nil
	s.pendingEmail = ""
	s.errorMessage = ""
	s.state = StateAnonymous
	clearSession(s.stateDir)
}

// DropCredentials clears the held credentials and both persisted
// entries without touching the service. The transport calls this on
// every 401 response, and it must therefore never issue a request of
// its own. A login attempt in flight keeps its pending email and
// error message.
func (s *Store) DropCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeTokenLocked()
	s.identity = nil
	if s.state == StateAuthenticated || s.state == StateRefreshing {
		s.state = StateAnonymous
	}
	clearSession(s.stateDir)
}

// ClearError clears the error state. Called at the start of every new
// attempt.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorMessage = ""
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether the store holds a full session. True
// exactly when both identity and token are held.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && s.token != nil
}

// Identity returns a copy of the current identity, or nil.
func (s *Store) Identity() *authclient.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

// PendingEmail returns the (masked) address of the last code request.
func (s *Store) PendingEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingEmail
}

// ErrorMessage returns the current user-facing error, or "".
func (s *Store) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorMessage
}

// adoptSession installs a freshly issued session: token and identity
// set together, persisted together, state Authenticated. A persistence
// failure keeps the in-memory session (this process is authenticated)
// but guarantees no half-written entries remain on disk.
func (s *Store) adoptSession(response *authclient.ValidateResponse) error {
	token, err := secret.NewFromBytes([]byte(response.AccessToken))
	if err != nil {
		return fmt.Errorf("session: protecting token: %w", err)
	}
	identity := response.User

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeTokenLocked()
	s.token = token
	s.identity = &identity
	s.state = StateAuthenticated

	if err := saveSession(s.stateDir, token.String(), &identity); err != nil {
		s.logger.Warn("session not persisted; it will not survive restart", "error", err)
	}
	return nil
}

func (s *Store) currentToken() *secret.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) closeTokenLocked() {
	if s.token != nil {
		s.token.Close()
		s.token = nil
	}
}

func (s *Store) setError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorMessage = message
}

// LooksLikeEmail is the advisory client-side format check: something
// on both sides of an @. Advisory only; it never blocks submission.
func LooksLikeEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

// userMessage maps a transport error onto the user-facing copy held in
// ErrorState. Rejected-code reasons each get distinct wording, seeded
// from the server's explanation where it had one.
func userMessage(err error) string {
	apiError, ok := authclient.AsAPIError(err)
	if !ok {
		return "Something went wrong. Try again."
	}
	switch apiError.Kind {
	case authclient.KindRejectedCode:
		switch apiError.Reason {
		case authclient.ReasonExpired:
			return "That code has expired. Request a new one."
		case authclient.ReasonUsed:
			return "That code has already been used. Request a new one."
		case authclient.ReasonInvalid:
			return "That code didn't match. Check the digits and try again."
		}
		if apiError.Message != "" {
			return apiError.Message
		}
		return "Could not verify the code. Try again."
	case authclient.KindRateLimited:
		if apiError.Message != "" {
			return apiError.Message
		}
		return "Too many requests. Wait before trying again."
	case authclient.KindUnauthorized:
		return "Your session has expired. Sign in again."
	case authclient.KindNetwork:
		return "Could not reach the server. Check your connection and try again."
	}
	if apiError.Message != "" {
		return apiError.Message
	}
	return "Something went wrong. Try again."
}
