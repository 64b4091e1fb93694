package grid

import "errors"

// Sentinel kinds for the grid package.
var (
	ErrUnknownField = errors.New("unknown field")
	ErrNotNumber    = errors.New("not a whole number")
	ErrNegative     = errors.New("must not be negative")
	ErrFormInvalid  = errors.New("form invalid")
	ErrDialogClosed = errors.New("dialog already closed")
)
