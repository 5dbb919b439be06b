package milp

import "errors"

var (
	// ErrDimension is returned when an assignment does not match the model size.
	ErrDimension = errors.New("assignment length does not match variable count")
)
