// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package codeentry

import (
	"reflect"
	"testing"
)

func slots(b *Buffer) []string {
	out := make([]string, b.Length())
	for index := range out {
		out[index] = b.Slot(index)
	}
	return out
}

func TestSingleDigitAdvancesFocus(t *testing.T) {
	buffer := New(6)

	if submit := buffer.SetDigit(0, "5"); submit {
		t.Error("auto-submit on first digit")
	}
	if buffer.Slot(0) != "5" || buffer.Focus() != 1 {
		t.Fatalf("slots=%v focus=%d", slots(buffer), buffer.Focus())
	}

	// The last slot does not advance past the end.
	for index := 1; index < 6; index++ {
		buffer.SetDigit(index, "9")
	}
	if buffer.Focus() != 5 {
		t.Errorf("focus after filling = %d, want 5", buffer.Focus())
	}
}

func TestNonDigitInputStripped(t *testing.T) {
	buffer := New(6)
	buffer.SetDigit(0, "a7b")
	if buffer.Slot(0) != "7" {
		t.Errorf("slot 0 = %q, want 7", buffer.Slot(0))
	}
	buffer.SetDigit(1, "xyz")
	if buffer.Slot(1) != "" {
		t.Errorf("slot 1 = %q, want empty", buffer.Slot(1))
	}
}

func TestPasteFullCode(t *testing.T) {
	buffer := New(6)

	submit := buffer.Paste("123456")
	if !submit {
		t.Fatal("paste of complete code did not auto-submit")
	}
	want := []string{"1", "2", "3", "4", "5", "6"}
	if !reflect.DeepEqual(slots(buffer), want) {
		t.Fatalf("slots = %v", slots(buffer))
	}
	if !buffer.Complete() || buffer.Code() != "123456" {
		t.Errorf("Complete=%v Code=%q", buffer.Complete(), buffer.Code())
	}
	if buffer.Focus() != 5 {
		t.Errorf("focus = %d, want 5", buffer.Focus())
	}
}

func TestPasteLongerThanBuffer(t *testing.T) {
	buffer := New(6)
	buffer.Paste("12345678")
	if buffer.Code() != "123456" || buffer.Focus() != 5 {
		t.Errorf("Code=%q focus=%d", buffer.Code(), buffer.Focus())
	}
}

func TestPartialPasteMidBuffer(t *testing.T) {
	buffer := New(6)
	buffer.SetDigit(2, "89")
	want := []string{"", "", "8", "9", "", ""}
	if !reflect.DeepEqual(slots(buffer), want) {
		t.Fatalf("slots = %v", slots(buffer))
	}
	if buffer.Focus() != 3 {
		t.Errorf("focus = %d, want 3 (last filled)", buffer.Focus())
	}
}

func TestAutoSubmitFiresOncePerCompletion(t *testing.T) {
	buffer := New(6)
	if !buffer.Paste("123456") {
		t.Fatal("first completion did not submit")
	}
	// Re-entering the final digit of an already-complete buffer is
	// not a new completion.
	if buffer.SetDigit(5, "6") {
		t.Fatal("submit fired twice for one completion")
	}

	// Emptying a slot re-arms; completing again is a new event.
	buffer.Backspace(5)
	if !buffer.SetDigit(5, "7") {
		t.Fatal("re-completion did not submit")
	}

	buffer.Clear()
	if !buffer.Paste("000000") {
		t.Fatal("completion after Clear did not submit")
	}
}

func TestBackspaceMergesBackward(t *testing.T) {
	buffer := New(6)
	buffer.SetDigit(0, "5") // focus now 1, slot 1 empty

	buffer.Backspace(1)
	if buffer.Focus() != 0 {
		t.Errorf("focus = %d, want 0", buffer.Focus())
	}
	if buffer.Slot(0) != "5" {
		t.Errorf("slot 0 content changed: %q", buffer.Slot(0))
	}

	// Backspace on an occupied slot clears it in place.
	buffer.Backspace(0)
	if buffer.Slot(0) != "" || buffer.Focus() != 0 {
		t.Errorf("slot=%q focus=%d", buffer.Slot(0), buffer.Focus())
	}
}

func TestArrowNavigationDoesNotMutate(t *testing.T) {
	buffer := New(6)
	buffer.Paste("123")
	buffer.MoveLeft()
	buffer.MoveLeft()
	buffer.MoveRight()
	if buffer.Code() != "123" {
		t.Errorf("navigation mutated content: %q", buffer.Code())
	}
	buffer.MoveLeft()
	buffer.MoveLeft()
	buffer.MoveLeft()
	if buffer.Focus() != 0 {
		t.Errorf("focus underflow: %d", buffer.Focus())
	}
}

func TestClearResetsEverything(t *testing.T) {
	buffer := New(6)
	buffer.Paste("123456")
	buffer.Clear()
	if buffer.Code() != "" || buffer.Focus() != 0 || buffer.Complete() {
		t.Errorf("after Clear: code=%q focus=%d", buffer.Code(), buffer.Focus())
	}
}
