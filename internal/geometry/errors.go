package geometry

import "errors"

var (
	// ErrInvalidContainer is returned when a container dimension is not a positive finite number.
	ErrInvalidContainer = errors.New("container dimensions must be positive finite numbers")
	// ErrInvalidBox is returned when a box dimension or weight is malformed.
	ErrInvalidBox = errors.New("box dimensions must be positive and weight non-negative")
	// ErrOutOfBounds is returned when a placed box extends beyond the container.
	ErrOutOfBounds = errors.New("placed box exceeds the container")
	// ErrOverlap is returned when two packed boxes intersect.
	ErrOverlap = errors.New("packed boxes overlap")
	// ErrMustPackMissing is returned when a must-pack box is reported as not packed.
	ErrMustPackMissing = errors.New("must-pack box is not packed")
	// ErrPlacementMismatch is returned when a packing does not line up with the box list.
	ErrPlacementMismatch = errors.New("placements do not match the box list")
)
