package planner

import "errors"

var (
	// ErrInvalidInput is returned when the container, boxes or options are malformed. Nothing is built or solved.
	ErrInvalidInput = errors.New("invalid packing request")
	// ErrInfeasible is returned when the solver proves that no packing satisfies the must-pack boxes.
	ErrInfeasible = errors.New("no feasible packing")
	// ErrSolver is returned when the solver fails or hands back an assignment that is not a valid packing.
	ErrSolver = errors.New("solver error")
)
