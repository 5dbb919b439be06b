package packing

import "errors"

var (
	// ErrUnknownObjective is returned for an objective other than count, volume or weight.
	ErrUnknownObjective = errors.New("unknown objective")
	// ErrUnknownFormulation is returned for an unsupported non-overlap formulation.
	ErrUnknownFormulation = errors.New("unknown formulation")
	// ErrInvalidBigM is returned when an explicit big-M is not a positive finite number.
	ErrInvalidBigM = errors.New("big-M must be a positive finite number")
	// ErrAssignment is returned when a solver assignment or packing does not match the formulation.
	ErrAssignment = errors.New("assignment does not match the formulation")
)
