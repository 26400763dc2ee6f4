// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/keyfob-foundation/keyfob/authclient"
)

// homeModel is the authenticated landing surface.
type homeModel struct {
	theme    Theme
	identity *authclient.Identity

	// refreshing is true while a session refresh is in flight.
	refreshing bool
	// notice holds transient success copy ("session refreshed").
	notice string
}

func newHomeModel(theme Theme) homeModel {
	return homeModel{theme: theme}
}

func (m homeModel) view(width int, errorMessage string) string {
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	successStyle := lipgloss.NewStyle().Foreground(m.theme.SuccessText)
	errorStyle := lipgloss.NewStyle().Foreground(m.theme.ErrorText)

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Keyfob") + "\n\n")

	if m.identity == nil {
		builder.WriteString("Signed in.\n")
	} else {
		builder.WriteString(fmt.Sprintf("Signed in as %s\n\n", m.identity.Email))
		builder.WriteString(faint.Render(fmt.Sprintf("Account ID   %s", m.identity.ID)) + "\n")
		builder.WriteString(faint.Render(fmt.Sprintf("Active       %v", m.identity.Active)) + "\n")
		if !m.identity.CreatedAt.IsZero() {
			builder.WriteString(faint.Render(fmt.Sprintf("Member since %s", m.identity.CreatedAt.Format("2006-01-02"))) + "\n")
		}
	}

	if m.refreshing {
		builder.WriteString("\n" + faint.Render("Refreshing session…"))
	}
	if m.notice != "" {
		builder.WriteString("\n" + successStyle.Render(m.notice))
	}
	if errorMessage != "" {
		builder.WriteString("\n" + errorStyle.Render(errorMessage))
	}

	builder.WriteString("\n\n" + faint.Render("ctrl+r refresh session · ctrl+l log out · q quit"))
	return builder.String()
}
