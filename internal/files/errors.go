package files

import "errors"

var (
	ErrDuplicateFilename = errors.New("a file with that name already exists")
	ErrLastFile          = errors.New("cannot delete the last remaining file")
)
