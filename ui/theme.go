// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the Keyfob TUI. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Accent is used for titles and the focused input.
	Accent lipgloss.Color

	// ErrorText renders refused codes and transport failures.
	ErrorText lipgloss.Color

	// Countdown states.
	CountdownNormal lipgloss.Color
	CountdownLow    lipgloss.Color // low-time urgency
	CountdownDone   lipgloss.Color // expired

	// Code slot chrome.
	SlotBorder        lipgloss.Color
	SlotFocusedBorder lipgloss.Color

	// Success notices (code accepted, session refreshed).
	SuccessText lipgloss.Color
}

// DefaultTheme is the built-in palette.
var DefaultTheme = Theme{
	NormalText:        lipgloss.Color("252"),
	FaintText:         lipgloss.Color("243"),
	Accent:            lipgloss.Color("74"),
	ErrorText:         lipgloss.Color("203"),
	CountdownNormal:   lipgloss.Color("252"),
	CountdownLow:      lipgloss.Color("214"),
	CountdownDone:     lipgloss.Color("203"),
	SlotBorder:        lipgloss.Color("240"),
	SlotFocusedBorder: lipgloss.Color("74"),
	SuccessText:       lipgloss.Color("78"),
}
