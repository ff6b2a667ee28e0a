package transport

import "errors"

var (
	ErrSessionReused   = errors.New("transport session already opened; reconnects require a new session")
	ErrUnsupportedKind = errors.New("message kind not sendable in this session mode")
	ErrWriteTimeout    = errors.New("write timed out")
	ErrMissingLessonID = errors.New("lesson ID is required to open a session")
	ErrMissingToken    = errors.New("auth token is required to open a session")
)
