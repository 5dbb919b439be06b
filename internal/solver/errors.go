package solver

import "errors"

var (
	// ErrUnbounded is returned when the relaxation has no finite optimum.
	ErrUnbounded = errors.New("model is unbounded")
	// ErrLimitReached is returned when a time, node or context limit stops the search before any incumbent is found.
	ErrLimitReached = errors.New("solver limit reached without a feasible solution")
	// ErrNumerical is returned when the LP engine fails for a reason other than infeasibility.
	ErrNumerical = errors.New("numerical failure in LP relaxation")
	// ErrUnsupported is returned for models the branch-and-bound driver cannot express, such as variables without a finite lower bound.
	ErrUnsupported = errors.New("unsupported model")
)
