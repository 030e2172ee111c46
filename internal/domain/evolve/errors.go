package evolve

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrInvalidSpec = errors.New("invalid trial spec")
)
