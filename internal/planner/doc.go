// Package planner runs a packing request end to end: it builds the model,
// solves it, reads the placements back and verifies them geometrically.
// Failures fall into three categories: ErrInvalidInput, ErrInfeasible and
// ErrSolver.
package planner
