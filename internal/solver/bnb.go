package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/uld-packer/internal/milp"
)

const defaultIntegralityTolerance = 1e-6

// Option configures a BranchAndBound solver.
type Option func(*BranchAndBound)

// WithTimeLimit bounds the wall-clock time of a solve. Zero disables the limit.
func WithTimeLimit(d time.Duration) Option {
	return func(s *BranchAndBound) {
		if d >= 0 {
			s.timeLimit = d
		}
	}
}

// WithNodeLimit bounds the number of relaxations evaluated. Zero disables the limit.
func WithNodeLimit(n int) Option {
	return func(s *BranchAndBound) {
		if n >= 0 {
			s.nodeLimit = n
		}
	}
}

// WithIntegralityTolerance sets how far from an integer a value may be and
// still count as integral.
func WithIntegralityTolerance(tol float64) Option {
	return func(s *BranchAndBound) {
		if tol > 0 {
			s.intTol = tol
		}
	}
}

// WithIterationLimit caps the simplex pivots spent on one relaxation. A
// relaxation that needs more fails with ErrNumerical. Zero derives the cap
// from the relaxation size.
func WithIterationLimit(n int) Option {
	return func(s *BranchAndBound) {
		if n >= 0 {
			s.iterLimit = n
		}
	}
}

// WithLogger attaches a logger for search progress.
func WithLogger(logger *zap.Logger) Option {
	return func(s *BranchAndBound) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// BranchAndBound is a depth-first branch-and-bound MILP solver on top of
// a bounded-variable simplex. It is meant for the small and medium models
// produced by the packing builder.
type BranchAndBound struct {
	timeLimit time.Duration
	nodeLimit int
	iterLimit int
	intTol    float64
	logger    *zap.Logger
}

// NewBranchAndBound constructs a solver with the provided options.
func NewBranchAndBound(opts ...Option) *BranchAndBound {
	s := &BranchAndBound{
		intTol: defaultIntegralityTolerance,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type node struct {
	lo, hi []float64
	bound  float64
	depth  int
}

// Solve runs branch and bound on m. Infeasible models yield a Solution with
// StatusInfeasible and a nil error. A valid m.Start becomes the first
// incumbent. When a limit or the context interrupts the search, including
// in the middle of a relaxation, the best incumbent is returned with
// StatusFeasible; without one the error wraps ErrLimitReached.
func (s *BranchAndBound) Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error) {
	if s.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeLimit)
		defer cancel()
	}

	cost := m.ObjectiveVector()
	if m.Objective.Maximize {
		for j := range cost {
			cost[j] = -cost[j]
		}
	}

	root := node{
		lo:    make([]float64, len(m.Vars)),
		hi:    make([]float64, len(m.Vars)),
		bound: math.Inf(-1),
	}
	for j, v := range m.Vars {
		root.lo[j], root.hi[j] = v.Lower, v.Upper
		if v.IsInteger() {
			root.lo[j] = math.Ceil(v.Lower - s.intTol)
			root.hi[j] = math.Floor(v.Upper + s.intTol)
		}
	}

	integral := s.integralObjective(m)

	var (
		incumbent  []float64
		incumbentZ = math.Inf(1)
		nodes      int
		limitErr   error
		stack      = []node{root}
	)

	if m.Start != nil {
		if err := m.Check(m.Start, s.intTol); err != nil {
			s.logger.Debug("start assignment rejected", zap.String("model", m.Name), zap.Error(err))
		} else {
			incumbent = s.round(m, m.Start)
			incumbentZ = dot(cost, incumbent)
			s.logger.Debug("start assignment accepted",
				zap.String("model", m.Name),
				zap.Float64("objective", m.Evaluate(incumbent)),
			)
		}
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			limitErr = err
			break
		}
		if s.nodeLimit > 0 && nodes >= s.nodeLimit {
			limitErr = fmt.Errorf("node limit %d", s.nodeLimit)
			break
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if incumbent != nil && !s.improves(nd.bound, incumbentZ, integral) {
			continue
		}

		nodes++
		x, z, err := solveRelaxation(ctx, m, cost, nd.lo, nd.hi, s.iterLimit)
		if errors.Is(err, errInfeasibleNode) {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			limitErr = err
			break
		}
		if err != nil {
			return nil, err
		}
		if incumbent != nil && !s.improves(z, incumbentZ, integral) {
			continue
		}

		j := s.branchVariable(m, x)
		if j < 0 {
			incumbent = s.round(m, x)
			incumbentZ = dot(cost, incumbent)
			s.logger.Debug("new incumbent",
				zap.String("model", m.Name),
				zap.Float64("objective", m.Evaluate(incumbent)),
				zap.Int("node", nodes),
				zap.Int("depth", nd.depth),
			)
			continue
		}

		down := node{lo: nd.lo, hi: clone(nd.hi), bound: z, depth: nd.depth + 1}
		down.hi[j] = math.Floor(x[j])
		up := node{lo: clone(nd.lo), hi: nd.hi, bound: z, depth: nd.depth + 1}
		up.lo[j] = math.Ceil(x[j])
		// Popped last-in first: the up branch is explored first, which for
		// packing models means trying to place the box.
		stack = append(stack, down, up)
	}

	if incumbent == nil {
		if limitErr != nil {
			return nil, fmt.Errorf("%w after %d nodes: %v", ErrLimitReached, nodes, limitErr)
		}
		s.logger.Debug("model infeasible", zap.String("model", m.Name), zap.Int("nodes", nodes))
		return &milp.Solution{Status: milp.StatusInfeasible, Nodes: nodes}, nil
	}

	status := milp.StatusOptimal
	if limitErr != nil {
		status = milp.StatusFeasible
		s.logger.Warn("search stopped before proving optimality",
			zap.String("model", m.Name),
			zap.Int("nodes", nodes),
			zap.Int("open", len(stack)),
			zap.String("reason", limitErr.Error()),
		)
	}

	return &milp.Solution{
		Status:    status,
		Objective: m.Evaluate(incumbent),
		Values:    incumbent,
		Nodes:     nodes,
	}, nil
}

// improves reports whether a node with relaxation bound could still beat
// the incumbent. Both values are in minimisation form.
func (s *BranchAndBound) improves(bound, incumbent float64, integral bool) bool {
	if integral {
		bound = math.Ceil(bound - s.intTol)
	}
	return bound < incumbent-s.intTol
}

// integralObjective reports whether every integer-feasible assignment has
// an integral objective, which lets relaxation bounds be rounded up.
func (s *BranchAndBound) integralObjective(m *milp.Model) bool {
	for _, t := range m.Objective.Terms {
		if !m.Vars[t.Var].IsInteger() {
			return false
		}
		if math.Abs(t.Coef-math.Round(t.Coef)) > 1e-9 {
			return false
		}
	}
	return true
}

// branchVariable returns the most fractional integer variable, or -1 when x
// is integral. Ties go to the lowest index.
func (s *BranchAndBound) branchVariable(m *milp.Model, x []float64) int {
	best, bestDist := -1, s.intTol
	for j, v := range m.Vars {
		if !v.IsInteger() {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

func (s *BranchAndBound) round(m *milp.Model, x []float64) []float64 {
	out := clone(x)
	for j, v := range m.Vars {
		if v.IsInteger() {
			out[j] = math.Round(out[j])
		}
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
