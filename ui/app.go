// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keyfob-foundation/keyfob/config"
	"github.com/keyfob-foundation/keyfob/countdown"
	"github.com/keyfob-foundation/keyfob/lib/clock"
	"github.com/keyfob-foundation/keyfob/session"
)

// navigateMsg asks the app to steer to a surface. All navigation runs
// through the route access guard in App.navigate.
type navigateMsg struct {
	target Route
}

// Navigate returns a command that requests navigation to target.
func Navigate(target Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{target: target} }
}

// App is the routing parent model. It owns the store, both countdown
// engines, and one child model per surface.
type App struct {
	store *session.Store
	cfg   *config.Config
	theme Theme
	keys  KeyMap

	route Route

	// returnTo carries the original protected target across a
	// redirect to the login surface, so a successful sign-in lands
	// where the user was headed.
	returnTo Route
	// hasReturnTo distinguishes "no return path" from RouteLogin's
	// zero value.
	hasReturnTo bool

	// checking is true while the guard's asynchronous session check
	// is in flight; navigation is suspended until its result.
	checking bool

	codeTimer   *countdown.Engine
	resendTimer *countdown.Engine

	login  loginModel
	verify verifyModel
	home   homeModel

	width, height int
	quitting      bool
}

// NewApp builds the program model. A nil clk uses the real clock;
// tests inject a fake to drive the countdown windows.
func NewApp(store *session.Store, cfg *config.Config, clk clock.Clock) App {
	if clk == nil {
		clk = clock.Real()
	}
	theme := DefaultTheme
	return App{
		store: store,
		cfg:   cfg,
		theme: theme,
		keys:  DefaultKeyMap,
		route: RouteLogin,
		codeTimer: countdown.New(countdown.Config{
			Clock:          clk,
			DefaultSeconds: cfg.CodeTTLSeconds,
			LowThreshold:   cfg.LowTimeThresholdSeconds,
		}),
		resendTimer: countdown.New(countdown.Config{
			Clock:          clk,
			DefaultSeconds: cfg.ResendCooldownSeconds,
			LowThreshold:   cfg.LowTimeThresholdSeconds,
		}),
		login:  newLoginModel(theme),
		verify: newVerifyModel(theme, cfg.CodeLength),
		home:   newHomeModel(theme),
	}
}

// Init implements tea.Model. The program launches toward the
// authenticated landing surface; the guard decides where it actually
// lands.
func (app App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		listenCountdown(codeWindow, app.codeTimer),
		listenCountdown(resendWindow, app.resendTimer),
		Navigate(RouteHome),
	)
}

// Update implements tea.Model.
func (app App) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		app.width, app.height = message.Width, message.Height
		return app, nil

	case navigateMsg:
		return app.navigate(message.target)

	case guardResultMsg:
		return app.handleGuardResult(message)

	case UnauthorizedMsg:
		return app.handleUnauthorized()

	case codeRequestedMsg:
		return app.handleCodeRequested(message)

	case codeValidatedMsg:
		return app.handleCodeValidated(message)

	case sessionRefreshedMsg:
		return app.handleSessionRefreshed(message)

	case loggedOutMsg:
		// Logout cancels any pending windows, the resend cooldown
		// included.
		app.codeTimer.Stop()
		app.resendTimer.Stop()
		return app.enter(RouteLogin)

	case countdownMsg:
		switch message.id {
		case codeWindow:
			app.verify.codeSnap = message.snapshot
			return app, listenCountdown(codeWindow, app.codeTimer)
		case resendWindow:
			app.verify.resendSnap = message.snapshot
			return app, listenCountdown(resendWindow, app.resendTimer)
		}
		return app, nil

	case tea.KeyMsg:
		if message.String() == "ctrl+c" {
			return app.quit()
		}
		switch app.route {
		case RouteLogin:
			return app.handleLoginKeys(message)
		case RouteVerify:
			return app.handleVerifyKeys(message)
		case RouteHome:
			return app.handleHomeKeys(message)
		}
	}

	return app, nil
}

// View implements tea.Model.
func (app App) View() string {
	if app.quitting {
		return ""
	}

	errorMessage := app.store.ErrorMessage()
	var body string
	switch app.route {
	case RouteLogin:
		body = app.login.view(app.width, errorMessage)
	case RouteVerify:
		body = app.verify.view(app.width, errorMessage)
	case RouteHome:
		body = app.home.view(app.width, errorMessage)
	}

	if app.checking {
		faint := lipgloss.NewStyle().Foreground(app.theme.FaintText)
		body += "\n" + faint.Render("Checking session…")
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

// navigate is the route access guard. Protected targets require an
// authenticated store: first a synchronous restore of persisted state,
// then — if that leaves the store unauthenticated — an asynchronous
// session check during which navigation is suspended. Open targets are
// admitted as-is, except that an authenticated user steering at the
// login surface is sent to the home surface instead.
func (app App) navigate(target Route) (App, tea.Cmd) {
	if target.Protected() && !app.store.Authenticated() {
		app.store.Initialize()
		if !app.store.Authenticated() {
			app.checking = true
			return app, guardCheckCmd(app.store, app.cfg.RequestTimeout(), target)
		}
	}

	if target == RouteLogin && app.store.Authenticated() {
		return app.enter(RouteHome)
	}
	return app.enter(target)
}

func (app App) handleGuardResult(message guardResultMsg) (App, tea.Cmd) {
	app.checking = false
	if message.ok {
		return app.enter(message.target)
	}
	// Denied: land on login carrying the original target as the
	// return path.
	app.returnTo = message.target
	app.hasReturnTo = true
	return app.enter(RouteLogin)
}

// handleUnauthorized reacts to a 401 surfaced by the transport. Local
// credentials are already gone; redirect to the entry surface unless
// one is already showing.
func (app App) handleUnauthorized() (App, tea.Cmd) {
	if app.route.EntrySurface() {
		return app, nil
	}
	if app.route.Protected() {
		app.returnTo = app.route
		app.hasReturnTo = true
	}
	return app.enter(RouteLogin)
}

func (app App) handleCodeRequested(message codeRequestedMsg) (App, tea.Cmd) {
	app.login.submitting = false
	app.verify.resending = false

	if message.err != nil {
		app.login.guidance = rateLimitGuidance(message.err)
		// A failed resend keeps the verify surface; a failed initial
		// request keeps login. Either way the store's error message
		// is already set.
		return app, nil
	}

	// Fresh attempt: new buffer contents, both windows restarted.
	app.verify.begin(message.email, message.response.Email)
	app.login.guidance = ""
	app.codeTimer.Start(app.cfg.CodeTTLSeconds)
	app.resendTimer.Start(app.cfg.ResendCooldownSeconds)
	return app.enter(RouteVerify)
}

func (app App) handleCodeValidated(message codeValidatedMsg) (App, tea.Cmd) {
	app.verify.validating = false

	if message.err != nil {
		// Refused code: slots empty, focus back to the first slot.
		// The distinguishing message comes from the store.
		app.verify.buffer.Clear()
		return app, nil
	}

	app.codeTimer.Stop()
	app.resendTimer.Stop()

	target := RouteHome
	if app.hasReturnTo {
		target = app.returnTo
		app.returnTo = RouteLogin
		app.hasReturnTo = false
	}
	return app.enter(target)
}

func (app App) handleSessionRefreshed(message sessionRefreshedMsg) (App, tea.Cmd) {
	app.home.refreshing = false

	if message.err != nil {
		// The store has logged itself out and set the session-expired
		// message; send the user back through login.
		app.returnTo = RouteHome
		app.hasReturnTo = true
		return app.enter(RouteLogin)
	}
	app.home.notice = "Session refreshed."
	app.home.identity = app.store.Identity()
	return app, nil
}

// enter switches surfaces, running per-surface arrival work.
func (app App) enter(target Route) (App, tea.Cmd) {
	app.route = target
	switch target {
	case RouteLogin:
		app.login.submitting = false
		app.login.input.Focus()
		return app, textinput.Blink
	case RouteHome:
		app.home.identity = app.store.Identity()
		app.home.notice = ""
		app.home.refreshing = false
	}
	return app, nil
}

func (app App) quit() (App, tea.Cmd) {
	app.codeTimer.Stop()
	app.resendTimer.Stop()
	app.quitting = true
	return app, tea.Quit
}

func (app App) handleLoginKeys(message tea.KeyMsg) (App, tea.Cmd) {
	if key.Matches(message, app.keys.Submit) {
		if app.login.submitting || app.login.email() == "" {
			return app, nil
		}
		app.login.submitting = true
		app.login.guidance = ""
		return app, requestCodeCmd(app.store, app.cfg.RequestTimeout(), app.login.email())
	}

	var command tea.Cmd
	app.login.input, command = app.login.input.Update(message)
	return app, command
}

func (app App) handleVerifyKeys(message tea.KeyMsg) (App, tea.Cmd) {
	buffer := app.verify.buffer

	switch {
	case key.Matches(message, app.keys.Back):
		return app.enter(RouteLogin)

	case key.Matches(message, app.keys.Resend):
		if !app.verify.canResend() {
			return app, nil
		}
		app.verify.resending = true
		app.store.ClearError()
		return app, requestCodeCmd(app.store, app.cfg.RequestTimeout(), app.verify.email)

	case key.Matches(message, app.keys.Submit):
		if !app.verify.canSubmit() {
			return app, nil
		}
		return app.startValidation()
	}

	switch message.Type {
	case tea.KeyBackspace:
		buffer.Backspace(buffer.Focus())
		return app, nil
	case tea.KeyLeft:
		buffer.MoveLeft()
		return app, nil
	case tea.KeyRight:
		buffer.MoveRight()
		return app, nil
	case tea.KeyRunes:
		// Single keystrokes and bracketed paste both arrive as rune
		// batches; the buffer distributes multi-rune input across
		// slots itself.
		autoSubmit := buffer.SetDigit(buffer.Focus(), string(message.Runes))
		if autoSubmit && app.verify.canSubmit() {
			return app.startValidation()
		}
	}
	return app, nil
}

func (app App) startValidation() (App, tea.Cmd) {
	app.verify.validating = true
	return app, validateCodeCmd(
		app.store,
		app.cfg.RequestTimeout(),
		app.verify.email,
		app.verify.buffer.Code(),
	)
}

func (app App) handleHomeKeys(message tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(message, app.keys.Quit):
		return app.quit()

	case key.Matches(message, app.keys.Refresh):
		if app.home.refreshing {
			return app, nil
		}
		app.home.refreshing = true
		app.home.notice = ""
		return app, refreshSessionCmd(app.store, app.cfg.RequestTimeout())

	case key.Matches(message, app.keys.Logout):
		return app, logoutCmd(app.store, app.cfg.RequestTimeout())
	}
	return app, nil
}
