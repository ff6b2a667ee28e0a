package types

import (
	"errors"
	"strings"
	"testing"
)

func TestIsValidFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"simple", "main.js", true},
		{"no extension", "Makefile", true},
		{"empty", "", false},
		{"path separator", "src/main.js", false},
		{"windows separator", "src\\main.js", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"too long", strings.Repeat("a", 256), false},
		{"max length", strings.Repeat("a", 255), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidFilename(tt.filename); got != tt.want {
				t.Errorf("IsValidFilename(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestIsValidLessonID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"uuid style", "a1b2c3d4-e5f6", true},
		{"underscore", "lesson_42", true},
		{"empty", "", false},
		{"spaces", "lesson 42", false},
		{"too long", strings.Repeat("x", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidLessonID(tt.id); got != tt.want {
				t.Errorf("IsValidLessonID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestTutorStyleValid(t *testing.T) {
	for _, style := range []TutorStyle{StyleSocratic, StyleDirect, StyleEncouraging} {
		if !style.Valid() {
			t.Errorf("style %q should be valid", style)
		}
	}
	if TutorStyle("sarcastic").Valid() {
		t.Error("unknown style should be invalid")
	}
	if TutorStyle("").Valid() {
		t.Error("empty style should be invalid")
	}
}

func TestFrameValidate(t *testing.T) {
	frame := &Frame{Type: MessageTypeTerminalIn, Payload: []byte(`"ls\n"`)}
	if err := frame.Validate(); err != nil {
		t.Errorf("valid frame rejected: %v", err)
	}

	empty := &Frame{Payload: []byte(`{}`)}
	if !errors.Is(empty.Validate(), ErrMalformedFrame) {
		t.Error("frame without type should be malformed")
	}

	huge := &Frame{Type: MessageTypeHomeworkCodeUpdate, Payload: []byte(strings.Repeat("x", MaxFramePayload+1))}
	if !errors.Is(huge.Validate(), ErrPayloadTooLarge) {
		t.Error("oversized payload should be rejected")
	}
}

func TestParseSubmitOutcome(t *testing.T) {
	outcome, err := ParseSubmitOutcome([]byte(`{"status":"correct","grade":95.5}`))
	if err != nil {
		t.Fatalf("correct outcome rejected: %v", err)
	}
	if outcome.Status != SubmitStatusCorrect {
		t.Errorf("status = %q, want %q", outcome.Status, SubmitStatusCorrect)
	}
	if outcome.Grade == nil || *outcome.Grade != 95.5 {
		t.Errorf("grade not decoded: %v", outcome.Grade)
	}

	outcome, err = ParseSubmitOutcome([]byte(`{"status":"hint","hint":"think about the base case"}`))
	if err != nil {
		t.Fatalf("hint outcome rejected: %v", err)
	}
	if outcome.Hint != "think about the base case" {
		t.Errorf("hint not decoded: %q", outcome.Hint)
	}

	if _, err := ParseSubmitOutcome([]byte(`{"status":"maybe"}`)); !errors.Is(err, ErrUnknownOutcome) {
		t.Errorf("unknown status should fail with ErrUnknownOutcome, got %v", err)
	}

	if _, err := ParseSubmitOutcome([]byte(`not json`)); err == nil {
		t.Error("malformed body should fail")
	}
}
