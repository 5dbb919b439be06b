package solver

import (
	"context"

	"github.com/eugenenazirov/uld-packer/internal/milp"
)

// LinearSolver solves a milp.Model. Implementations report infeasibility
// through Solution.Status and reserve errors for solver failures.
type LinearSolver interface {
	Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error)
}
