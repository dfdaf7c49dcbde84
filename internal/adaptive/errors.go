package adaptive

import "errors"

// Operation error taxonomy. Handlers match on these with errors.Is to pick
// status codes; everything else is treated as an internal error.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrExhausted    = errors.New("exhausted")
	ErrTimeExceeded = errors.New("time limit exceeded")
)
