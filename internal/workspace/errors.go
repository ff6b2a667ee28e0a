package workspace

import "errors"

var (
	ErrEmptySelection = errors.New("select some code before asking for a hint")
	ErrNotReady       = errors.New("workspace is not ready")
	ErrNotLoaded      = errors.New("workspace has not been loaded")
)
