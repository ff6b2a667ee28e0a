package types

import "errors"

// Validation errors shared across components.
var (
	ErrInvalidFilename  = errors.New("filename must be 1-255 characters with no path separators")
	ErrInvalidLessonID  = errors.New("lesson ID must be 1-64 characters, alphanumeric + underscore/hyphen only")
	ErrInvalidStyle     = errors.New("unknown tutor style")
	ErrUnknownOutcome   = errors.New("unrecognized submit outcome status")
	ErrPayloadTooLarge  = errors.New("frame payload exceeds 256KB limit")
	ErrMalformedFrame   = errors.New("malformed socket frame")
)
