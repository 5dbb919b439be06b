package planner

import (
	"context"
	"time"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/milp"
	"github.com/eugenenazirov/uld-packer/internal/packing"
)

// Request is one packing problem.
type Request struct {
	Container   geometry.Container
	Boxes       []geometry.Box
	Objective   packing.Objective
	Formulation packing.Kind
}

// Stats describes the size of the model and the effort spent on it.
type Stats struct {
	Variables   int           `json:"variables"`
	Constraints int           `json:"constraints"`
	Integers    int           `json:"integers"`
	Nodes       int           `json:"nodes"`
	BuildTime   time.Duration `json:"buildTime"`
	SolveTime   time.Duration `json:"solveTime"`
}

// Result is the verified outcome of a successful solve. A result with
// PackedCount zero means nothing fit, which is distinct from ErrInfeasible.
type Result struct {
	Status       milp.Status
	Objective    float64
	PackedCount  int
	PackedVolume float64
	PackedWeight float64
	Placements   []geometry.Placement
	Stats        Stats
}

// Planner validates, formulates, solves and verifies packing requests.
type Planner interface {
	Plan(ctx context.Context, req Request) (*Result, error)
	Formulate(req Request) (*packing.Formulation, error)
}
