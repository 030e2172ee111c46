package genome

import "errors"

// Sentinel kinds for genome errors.
var (
	ErrInvalidGoal = errors.New("invalid goal message")
)
