package rowmodel

import "errors"

// Sentinel kinds for malformed row model requests.
var (
	ErrInvalidColumn = errors.New("invalid column")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrInvalidSort   = errors.New("invalid sort")
	ErrInvalidWindow = errors.New("invalid row window")
)
