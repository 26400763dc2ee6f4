// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package codeentry

import "strings"

// DefaultLength is the standard one-time-code width.
const DefaultLength = 6

// Buffer holds a fixed number of digit slots and the focus position.
// Not safe for concurrent use; the owning UI model serializes access.
type Buffer struct {
	slots []string
	focus int

	// submitFired is set when a completion has already produced an
	// auto-submit, and re-arms once the buffer becomes incomplete.
	// This is what makes auto-submit fire exactly once per
	// completion.
	submitFired bool
}

// New creates an empty buffer with the given number of slots.
// Non-positive lengths fall back to DefaultLength.
func New(length int) *Buffer {
	if length <= 0 {
		length = DefaultLength
	}
	return &Buffer{slots: make([]string, length)}
}

// Length returns the number of slots.
func (b *Buffer) Length() int { return len(b.slots) }

// Focus returns the focused slot index.
func (b *Buffer) Focus() int { return b.focus }

// Slot returns the content of slot index: "" or a single digit.
func (b *Buffer) Slot(index int) string {
	if index < 0 || index >= len(b.slots) {
		return ""
	}
	return b.slots[index]
}

// Code returns the concatenation of all slots.
func (b *Buffer) Code() string { return strings.Join(b.slots, "") }

// Complete reports whether every slot holds a digit.
func (b *Buffer) Complete() bool {
	for _, slot := range b.slots {
		if slot == "" {
			return false
		}
	}
	return true
}

// SetDigit applies raw input to the slot at index. Non-digit
// characters are stripped. A single digit fills the slot and advances
// focus; several digits (a paste landing on one slot) are distributed
// forward one per slot with focus ending on the last slot filled.
// Empty sanitized input clears the slot. Returns true when the
// mutation completed the buffer and an auto-submit should fire.
func (b *Buffer) SetDigit(index int, raw string) (autoSubmit bool) {
	if index < 0 || index >= len(b.slots) {
		return false
	}

	digits := sanitize(raw)
	switch {
	case len(digits) == 0:
		b.slots[index] = ""
	case len(digits) == 1:
		b.slots[index] = digits
		if index < len(b.slots)-1 {
			b.focus = index + 1
		}
	default:
		filled := index
		for offset, digit := range digits {
			slot := index + offset
			if slot >= len(b.slots) {
				break
			}
			b.slots[slot] = string(digit)
			filled = slot
		}
		b.focus = filled
	}

	return b.afterMutation()
}

// Paste distributes text across the buffer starting at slot 0.
func (b *Buffer) Paste(text string) (autoSubmit bool) {
	return b.SetDigit(0, text)
}

// Backspace handles a backspace at the given slot: an occupied slot is
// cleared in place; an already-empty slot moves focus to the previous
// slot without altering its content.
func (b *Buffer) Backspace(index int) {
	if index < 0 || index >= len(b.slots) {
		return
	}
	if b.slots[index] == "" {
		if index > 0 {
			b.focus = index - 1
		}
	} else {
		b.slots[index] = ""
		b.focus = index
	}
	b.afterMutation()
}

// MoveLeft shifts focus one slot left without mutating content.
func (b *Buffer) MoveLeft() {
	if b.focus > 0 {
		b.focus--
	}
}

// MoveRight shifts focus one slot right without mutating content.
func (b *Buffer) MoveRight() {
	if b.focus < len(b.slots)-1 {
		b.focus++
	}
}

// Clear empties every slot and returns focus to slot 0. The next
// completion is a new auto-submit event.
func (b *Buffer) Clear() {
	for index := range b.slots {
		b.slots[index] = ""
	}
	b.focus = 0
	b.submitFired = false
}

// afterMutation updates the auto-submit arming after any content
// change and reports whether submission should fire now.
func (b *Buffer) afterMutation() bool {
	if !b.Complete() {
		b.submitFired = false
		return false
	}
	if b.submitFired {
		return false
	}
	b.submitFired = true
	return true
}

// sanitize strips every non-digit character from raw.
func sanitize(raw string) string {
	var builder strings.Builder
	for _, character := range raw {
		if character >= '0' && character <= '9' {
			builder.WriteRune(character)
		}
	}
	return builder.String()
}
