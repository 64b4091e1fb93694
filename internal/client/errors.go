package client

import "errors"

// ErrStatus marks a non-2xx reply. It is logged, never surfaced to the
// continuation.
var ErrStatus = errors.New("unexpected status")
