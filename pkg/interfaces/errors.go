package interfaces

import "errors"

// Common interface errors used across components.
var (
	// ErrNotConnected is returned by Send when the underlying socket is not
	// open. Callers on the broadcast/terminal path drop it silently; it is
	// never fatal.
	ErrNotConnected = errors.New("transport session not connected")

	// ErrLoginRequired is the one fatal condition at load time: no usable
	// bearer token (or no lesson identifier). The CLI reacts by directing
	// the user to log in instead of opening a broken workspace.
	ErrLoginRequired = errors.New("login required")

	ErrTokenNotFound = errors.New("no stored token for origin")
	ErrDraftNotFound = errors.New("no stored draft for lesson")
)
