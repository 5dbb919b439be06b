package milp

import "fmt"

// Status is the outcome of a solve.
type Status int

const (
	// StatusOptimal means the solution is proven optimal.
	StatusOptimal Status = iota
	// StatusFeasible means a limit stopped the search with an incumbent in hand.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the model.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// HasSolution reports whether Values carries an assignment.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solution is what a solver hands back for a model.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	// Nodes is the number of relaxations the solver evaluated.
	Nodes int
}

// Value returns the value of variable v, or 0 when no assignment exists.
func (s *Solution) Value(v int) float64 {
	if s == nil || v < 0 || v >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}
