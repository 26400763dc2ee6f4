// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keyfob-foundation/keyfob/authclient"
	"github.com/keyfob-foundation/keyfob/countdown"
	"github.com/keyfob-foundation/keyfob/session"
)

// UnauthorizedMsg reports that a request drew a 401. By the time it
// arrives the transport hook has already dropped local credentials;
// the app's job is only the redirect decision. The main package sends
// this via Program.Send from the client's unauthorized hook.
type UnauthorizedMsg struct{}

// guardResultMsg delivers the route access guard's asynchronous
// session check for a pending navigation target.
type guardResultMsg struct {
	target Route
	ok     bool
}

// codeRequestedMsg delivers the outcome of a code request, for both
// the initial submission and resends.
type codeRequestedMsg struct {
	email    string // the address as typed, needed for validation
	response *authclient.CodeRequestResponse
	err      error
}

// codeValidatedMsg delivers the outcome of a code validation.
type codeValidatedMsg struct {
	err error
}

// sessionRefreshedMsg delivers the outcome of a session refresh.
type sessionRefreshedMsg struct {
	err error
}

// loggedOutMsg reports that logout has completed.
type loggedOutMsg struct{}

// countdownID distinguishes the two countdown windows on the verify
// surface.
type countdownID int

const (
	codeWindow countdownID = iota
	resendWindow
)

// countdownMsg delivers a countdown engine change.
type countdownMsg struct {
	id       countdownID
	snapshot countdown.Snapshot
}

// listenCountdown blocks until the engine reports a change, then
// delivers it. The handler re-issues the command, forming the
// subscription loop.
func listenCountdown(id countdownID, engine *countdown.Engine) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-engine.C()
		if !ok {
			return nil
		}
		return countdownMsg{id: id, snapshot: snapshot}
	}
}

// guardCheckCmd runs the guard's network-side session check.
func guardCheckCmd(store *session.Store, timeout time.Duration, target Route) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return guardResultMsg{target: target, ok: store.CheckSession(ctx)}
	}
}

// requestCodeCmd asks the service to email a one-time code.
func requestCodeCmd(store *session.Store, timeout time.Duration, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		response, err := store.RequestCode(ctx, email)
		return codeRequestedMsg{email: email, response: response, err: err}
	}
}

// validateCodeCmd exchanges the entered code for a session.
func validateCodeCmd(store *session.Store, timeout time.Duration, email, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return codeValidatedMsg{err: store.ValidateCode(ctx, email, code)}
	}
}

// refreshSessionCmd exchanges the session token for a fresh one.
func refreshSessionCmd(store *session.Store, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return sessionRefreshedMsg{err: store.RefreshSession(ctx)}
	}
}

// logoutCmd signs out: best-effort remote invalidation, unconditional
// local clear.
func logoutCmd(store *session.Store, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		store.Logout(ctx)
		return loggedOutMsg{}
	}
}
