// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/keyfob-foundation/keyfob/authclient"
	"github.com/keyfob-foundation/keyfob/session"
)

// loginModel is the email-entry surface.
type loginModel struct {
	theme Theme
	input textinput.Model

	// submitting is true while a code request is in flight; input is
	// ignored until the outcome arrives.
	submitting bool

	// guidance holds rate-limit copy built from the server's hints.
	guidance string
}

func newLoginModel(theme Theme) loginModel {
	input := textinput.New()
	input.Placeholder = "you@example.com"
	input.CharLimit = 254
	input.Width = 40
	input.Prompt = "Email: "
	input.Focus()
	return loginModel{theme: theme, input: input}
}

// email returns the trimmed typed address.
func (m loginModel) email() string {
	return strings.TrimSpace(m.input.Value())
}

// advisoryHint returns a soft format warning. It never blocks
// submission; the server decides what it accepts.
func (m loginModel) advisoryHint() string {
	address := m.email()
	if address == "" || session.LooksLikeEmail(address) {
		return ""
	}
	return "This doesn't look like an email address."
}

func (m loginModel) view(width int, errorMessage string) string {
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	errorStyle := lipgloss.NewStyle().Foreground(m.theme.ErrorText)

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Keyfob") + "\n\n")
	builder.WriteString("Sign in with your email. We'll send you a one-time code.\n\n")
	builder.WriteString(m.input.View() + "\n")

	if hint := m.advisoryHint(); hint != "" {
		builder.WriteString(faint.Render(hint) + "\n")
	}
	if m.submitting {
		builder.WriteString(faint.Render("Sending code…") + "\n")
	}
	if errorMessage != "" {
		builder.WriteString(errorStyle.Render(errorMessage) + "\n")
	}
	if m.guidance != "" {
		builder.WriteString(faint.Render(m.guidance) + "\n")
	}

	builder.WriteString("\n" + faint.Render("enter submit · ctrl+c quit"))
	return builder.String()
}

// rateLimitGuidance renders the server's retry hints. The two hints
// are independently optional; whichever ones arrived are shown.
func rateLimitGuidance(err error) string {
	apiError, ok := authclient.AsAPIError(err)
	if !ok || apiError.Kind != authclient.KindRateLimited {
		return ""
	}

	var parts []string
	if apiError.RetryAfter > 0 {
		parts = append(parts, fmt.Sprintf("Try again in %s.", formatDuration(apiError.RetryAfter)))
	}
	if apiError.AttemptsRemaining != nil {
		parts = append(parts, fmt.Sprintf("%d attempts remaining.", *apiError.AttemptsRemaining))
	}
	return strings.Join(parts, " ")
}

// formatDuration renders a retry hint as "Xm" or "XmYYs" or "Xs".
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	minutes, seconds := total/60, total%60
	switch {
	case minutes > 0 && seconds > 0:
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", seconds)
}
