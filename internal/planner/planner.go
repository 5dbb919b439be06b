package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/metrics"
	"github.com/eugenenazirov/uld-packer/internal/milp"
	"github.com/eugenenazirov/uld-packer/internal/packing"
	"github.com/eugenenazirov/uld-packer/internal/solver"
)

const defaultMaxBoxes = 40

// Option configures the planner.
type Option func(*milpPlanner)

// WithRecorder sets where build and solve observations go.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *milpPlanner) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *milpPlanner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxBoxes caps the number of boxes per request. Zero removes the cap.
func WithMaxBoxes(n int) Option {
	return func(p *milpPlanner) {
		if n >= 0 {
			p.maxBoxes = n
		}
	}
}

// WithWarmStart controls whether a greedy packing seeds the solver with a
// first incumbent. It is on by default.
func WithWarmStart(enabled bool) Option {
	return func(p *milpPlanner) {
		p.warmStart = enabled
	}
}

type milpPlanner struct {
	solver    solver.LinearSolver
	recorder  metrics.Recorder
	logger    *zap.Logger
	maxBoxes  int
	warmStart bool
}

// New creates a Planner that solves models with s.
func New(s solver.LinearSolver, opts ...Option) Planner {
	p := &milpPlanner{
		solver:    s,
		recorder:  metrics.Nop{},
		logger:    zap.NewNop(),
		maxBoxes:  defaultMaxBoxes,
		warmStart: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *milpPlanner) Formulate(req Request) (*packing.Formulation, error) {
	if p.maxBoxes > 0 && len(req.Boxes) > p.maxBoxes {
		return nil, fmt.Errorf("%w: %d boxes exceed the limit of %d", ErrInvalidInput, len(req.Boxes), p.maxBoxes)
	}
	f, err := packing.Build(req.Container, req.Boxes, req.Objective, packing.WithKind(req.Formulation))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return f, nil
}

func (p *milpPlanner) Plan(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	f, err := p.Formulate(req)
	if err != nil {
		return nil, err
	}
	buildTime := time.Since(start)

	modelStats := f.Problem.Stats()
	p.recorder.ObserveBuild(f.Kind.String(), modelStats.Variables, modelStats.Constraints, buildTime)

	if p.warmStart {
		if packed := f.SeedStart(); packed > 0 {
			p.logger.Debug("greedy start", zap.Int("packed", packed), zap.Int("boxes", len(req.Boxes)))
		}
	}

	start = time.Now()
	sol, err := p.solver.Solve(ctx, f.Problem)
	solveTime := time.Since(start)
	if err != nil {
		p.recorder.ObserveSolve("error", 0, solveTime)
		p.logger.Warn("solver failed", zap.Int("boxes", len(req.Boxes)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSolver, err)
	}
	p.recorder.ObserveSolve(sol.Status.String(), sol.Nodes, solveTime)

	if sol.Status == milp.StatusInfeasible {
		return nil, fmt.Errorf("%w: %s", ErrInfeasible, diagnose(req))
	}

	placed, err := f.Decode(sol.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSolver, err)
	}
	if err := geometry.Verify(req.Container, req.Boxes, placed, tolerance(req.Container)); err != nil {
		p.logger.Error("solver assignment failed verification", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSolver, err)
	}

	res := &Result{
		Status:     sol.Status,
		Objective:  sol.Objective,
		Placements: placed.Placements,
		Stats: Stats{
			Variables:   modelStats.Variables,
			Constraints: modelStats.Constraints,
			Integers:    modelStats.Integers,
			Nodes:       sol.Nodes,
			BuildTime:   buildTime,
			SolveTime:   solveTime,
		},
	}
	for _, pl := range placed.Packed() {
		box := req.Boxes[pl.Index]
		res.PackedCount++
		res.PackedVolume += box.Volume()
		res.PackedWeight += box.Weight
	}

	p.logger.Info("packing solved",
		zap.String("objective", req.Objective.String()),
		zap.String("status", sol.Status.String()),
		zap.Int("boxes", len(req.Boxes)),
		zap.Int("packed", res.PackedCount),
		zap.Int("nodes", sol.Nodes),
		zap.Duration("solve_time", solveTime),
	)
	return res, nil
}

// tolerance scales the verification tolerance with the container size.
func tolerance(c geometry.Container) float64 {
	size := c.Size()
	return geometry.DefaultTolerance * max(1, size[0], size[1], size[2])
}

// diagnose names an obvious cause of infeasibility when there is one.
func diagnose(req Request) string {
	var mustVolume float64
	var misfits []string
	for i, b := range req.Boxes {
		if !b.MustPack {
			continue
		}
		mustVolume += b.Volume()
		if !b.Fits(req.Container) {
			misfits = append(misfits, b.Label(i))
		}
	}
	switch {
	case len(misfits) > 0:
		return fmt.Sprintf("must-pack boxes %s do not fit the container in any orientation", strings.Join(misfits, ", "))
	case mustVolume > req.Container.Volume():
		return fmt.Sprintf("must-pack volume %g exceeds container volume %g", mustVolume, req.Container.Volume())
	default:
		return "must-pack boxes cannot be arranged without overlap"
	}
}
