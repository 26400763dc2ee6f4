// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/keyfob-foundation/keyfob/codeentry"
	"github.com/keyfob-foundation/keyfob/countdown"
)

// verifyModel is the code-entry surface: the digit slots plus the two
// countdown windows (code validity and resend cooldown).
type verifyModel struct {
	theme Theme

	buffer *codeentry.Buffer

	// email is the address as typed, which validation needs; the
	// server only ever echoes a masked form.
	email string
	// maskedEmail is the server's echo, shown to the user.
	maskedEmail string

	codeSnap   countdown.Snapshot
	resendSnap countdown.Snapshot

	validating bool
	resending  bool
}

func newVerifyModel(theme Theme, codeLength int) verifyModel {
	return verifyModel{
		theme:  theme,
		buffer: codeentry.New(codeLength),
	}
}

// begin resets the surface for a fresh code: new attempt, empty slots,
// windows restarted by the caller.
func (m *verifyModel) begin(email, maskedEmail string) {
	m.email = email
	m.maskedEmail = maskedEmail
	m.buffer.Clear()
	m.validating = false
	m.resending = false
}

// canSubmit reports whether a validation may be started. Client-side
// expiry blocks new submissions, but it is a UX short-circuit only: a
// validation already in flight is not cancelled, and the server's
// verdict stands either way.
func (m verifyModel) canSubmit() bool {
	return m.buffer.Complete() && !m.codeSnap.Expired && !m.validating
}

// canResend reports whether the resend cooldown has elapsed.
func (m verifyModel) canResend() bool {
	return m.resendSnap.Expired && !m.resending
}

func (m verifyModel) view(width int, errorMessage string) string {
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	errorStyle := lipgloss.NewStyle().Foreground(m.theme.ErrorText)

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Check your email") + "\n\n")
	builder.WriteString(fmt.Sprintf("We sent a %d-digit code to %s.\n\n", m.buffer.Length(), m.maskedEmail))
	builder.WriteString(m.renderSlots() + "\n\n")
	builder.WriteString(m.renderCodeWindow() + "\n")
	builder.WriteString(m.renderResendWindow() + "\n")

	if m.validating {
		builder.WriteString(faint.Render("Verifying…") + "\n")
	}
	if errorMessage != "" {
		builder.WriteString(errorStyle.Render(errorMessage) + "\n")
	}

	builder.WriteString("\n" + faint.Render("enter submit · ctrl+r resend · esc back · ctrl+c quit"))
	return builder.String()
}

// renderSlots draws one bordered cell per digit with the focused cell
// highlighted.
func (m verifyModel) renderSlots() string {
	slotStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.SlotBorder).
		Padding(0, 1)
	focusedStyle := slotStyle.
		BorderForeground(m.theme.SlotFocusedBorder).
		Foreground(m.theme.Accent).
		Bold(true)

	cells := make([]string, m.buffer.Length())
	for index := range cells {
		content := m.buffer.Slot(index)
		if content == "" {
			content = " "
		}
		style := slotStyle
		if index == m.buffer.Focus() {
			style = focusedStyle
		}
		cells[index] = style.Render(content)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m verifyModel) renderCodeWindow() string {
	style := lipgloss.NewStyle().Foreground(m.theme.CountdownNormal)
	switch {
	case m.codeSnap.Expired:
		style = lipgloss.NewStyle().Foreground(m.theme.CountdownDone)
		return style.Render("This code has expired. Request a new one.")
	case m.codeSnap.LowTime:
		style = lipgloss.NewStyle().Foreground(m.theme.CountdownLow)
	}
	return style.Render(fmt.Sprintf("Code expires in %s", clockFace(m.codeSnap.Remaining)))
}

func (m verifyModel) renderResendWindow() string {
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	if m.resending {
		return faint.Render("Sending a new code…")
	}
	if m.resendSnap.Expired {
		return faint.Render("Press ctrl+r to resend the code.")
	}
	return faint.Render(fmt.Sprintf("Resend available in %s", clockFace(m.resendSnap.Remaining)))
}

// clockFace renders seconds as m:ss.
func clockFace(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
