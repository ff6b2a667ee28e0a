package types

import (
	"encoding/json"
	"regexp"
	"strings"
)

var lessonIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxFramePayload bounds a single socket frame. Terminal output arrives in
// small chunks and code broadcasts carry whole workspaces, so the ceiling
// is generous.
const MaxFramePayload = 262144

// IsValidFilename checks workspace filename format. Path separators are
// rejected so filenames can be materialized into a scratch directory safely.
func IsValidFilename(name string) bool {
	if len(name) < 1 || len(name) > 255 {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	return name != "." && name != ".."
}

// IsValidLessonID checks lesson identifier format.
func IsValidLessonID(id string) bool {
	if len(id) < 1 || len(id) > 64 {
		return false
	}
	return lessonIDRegex.MatchString(id)
}

// Valid reports whether the style is one of the fixed vocabulary.
func (s TutorStyle) Valid() bool {
	switch s {
	case StyleSocratic, StyleDirect, StyleEncouraging:
		return true
	default:
		return false
	}
}

// Validate ensures a frame is well-formed enough to transmit.
func (f *Frame) Validate() error {
	if f.Type == "" {
		return ErrMalformedFrame
	}
	if len(f.Payload) > MaxFramePayload {
		return ErrPayloadTooLarge
	}
	return nil
}

// ParseSubmitOutcome decodes a submit response body and validates the
// discriminator. The backend contract for the status field is confirmed
// against exactly two values; anything else fails loudly rather than being
// guessed at.
func ParseSubmitOutcome(data []byte) (*SubmitOutcome, error) {
	var outcome SubmitOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, err
	}
	switch outcome.Status {
	case SubmitStatusCorrect, SubmitStatusHint:
		return &outcome, nil
	default:
		return nil, ErrUnknownOutcome
	}
}
