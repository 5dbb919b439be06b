package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/eugenenazirov/uld-packer/internal/milp"
)

const (
	pivotTolerance      = 1e-9
	optimalityTolerance = 1e-9
	ratioTieTolerance   = 1e-12

	// blandAfter consecutive degenerate pivots switch column and row
	// selection to lowest index, which cannot cycle.
	blandAfter = 50
	// ctxCheckEvery is the number of pivots between context checks.
	ctxCheckEvery = 32
)

// boundedLP is: minimize cost'y subject to rows and 0 <= y <= upper.
// Upper entries may be +Inf.
type boundedLP struct {
	rows   [][]float64
	senses []milp.Sense
	rhs    []float64
	upper  []float64
	cost   []float64
}

// tableau is a dense bounded-variable simplex tableau. Rows hold B^-1 A,
// nonbasic columns rest at zero or at their upper bound and value holds
// the current basic values.
type tableau struct {
	a        *mat.Dense
	value    []float64
	basis    []int
	row      []int
	upper    []float64
	atUpper  []bool
	iters    int
	maxIters int
}

// defaultIterations is the pivot budget after which a solve counts as
// stalled.
func defaultIterations(rows, cols int) int {
	return 1000 + 50*(rows+cols)
}

// simplex solves p with a two-phase primal simplex. Upper bounds are kept
// out of the row set, so binaries cost no extra rows. The context is
// polled between pivots; a pivot budget of maxIters (0 picks one from the
// problem size) turns a stalled solve into ErrNumerical.
func simplex(ctx context.Context, p boundedLP, maxIters int) ([]float64, error) {
	t, artificial := newTableau(p)
	_, cols := t.a.Dims()
	t.maxIters = maxIters
	if t.maxIters <= 0 {
		t.maxIters = defaultIterations(len(p.rows), cols)
	}

	excluded := make([]bool, cols)
	if len(artificial) > 0 {
		phaseOne := make([]float64, cols)
		for _, j := range artificial {
			phaseOne[j] = 1
			excluded[j] = true
		}
		if err := t.optimize(ctx, phaseOne, nil); err != nil {
			return nil, err
		}
		var infeasibility float64
		for i, j := range t.basis {
			if excluded[j] {
				infeasibility += t.value[i]
			}
		}
		if infeasibility > feasibilityTolerance*(1+floats.Norm(p.rhs, math.Inf(1))) {
			return nil, errInfeasibleNode
		}
		// Artificials still in the basis sit at zero and must stay there.
		for _, j := range artificial {
			t.upper[j] = 0
		}
	}

	cost := make([]float64, cols)
	copy(cost, p.cost)
	if err := t.optimize(ctx, cost, excluded); err != nil {
		return nil, err
	}

	y := make([]float64, len(p.cost))
	for j := range y {
		y[j] = math.Min(math.Max(t.columnValue(j), 0), p.upper[j])
	}
	return y, nil
}

// newTableau lays out structural columns, one slack per inequality and an
// artificial for every row whose slack cannot start basic. All structural
// columns start at zero, so the starting basic values are the right-hand
// sides made non-negative.
func newTableau(p boundedLP) (*tableau, []int) {
	n := len(p.cost)
	sign := make([]float64, len(p.rows))
	slack := make([]float64, len(p.rows))
	cols := n
	for i := range p.rows {
		sign[i] = 1
		if p.rhs[i] < 0 {
			sign[i] = -1
		}
		switch p.senses[i] {
		case milp.LessEq:
			slack[i] = sign[i]
			cols++
		case milp.GreaterEq:
			slack[i] = -sign[i]
			cols++
		}
		if slack[i] <= 0 {
			cols++
		}
	}

	t := &tableau{
		a:       mat.NewDense(len(p.rows), cols, nil),
		value:   make([]float64, len(p.rows)),
		basis:   make([]int, len(p.rows)),
		row:     make([]int, cols),
		upper:   make([]float64, cols),
		atUpper: make([]bool, cols),
	}
	copy(t.upper, p.upper)
	for j := range t.row {
		t.row[j] = -1
		if j >= n {
			t.upper[j] = math.Inf(1)
		}
	}

	var artificial []int
	next := n
	for i, coef := range p.rows {
		r := t.a.RawRowView(i)
		floats.ScaleTo(r[:n], sign[i], coef)

		basic := -1
		if slack[i] != 0 {
			r[next] = slack[i]
			if slack[i] > 0 {
				basic = next
			}
			next++
		}
		if basic < 0 {
			r[next] = 1
			basic = next
			artificial = append(artificial, next)
			next++
		}
		t.basis[i] = basic
		t.row[basic] = i
		t.value[i] = sign[i] * p.rhs[i]
	}
	return t, artificial
}

// optimize pivots until no column outside excluded can improve cost.
func (t *tableau) optimize(ctx context.Context, cost []float64, excluded []bool) error {
	rows, cols := t.a.Dims()

	reduced := make([]float64, cols)
	copy(reduced, cost)
	for i, j := range t.basis {
		if cost[j] != 0 {
			floats.AddScaled(reduced, -cost[j], t.a.RawRowView(i))
		}
	}

	degenerate := 0
	for {
		if t.iters%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		bland := degenerate > blandAfter
		q := t.entering(reduced, excluded, bland)
		if q < 0 {
			return nil
		}
		if t.iters >= t.maxIters {
			return fmt.Errorf("%w: simplex stalled after %d pivots", ErrNumerical, t.iters)
		}
		t.iters++

		dir := 1.0
		if t.atUpper[q] {
			dir = -1
		}

		leave, step, toUpper := t.ratioTest(q, dir, bland)
		if math.IsInf(step, 1) {
			return ErrUnbounded
		}
		if step <= ratioTieTolerance {
			degenerate++
		} else {
			degenerate = 0
		}

		if step != 0 {
			for i := 0; i < rows; i++ {
				t.value[i] -= dir * t.a.At(i, q) * step
			}
		}
		if leave < 0 {
			t.atUpper[q] = !t.atUpper[q]
			continue
		}

		entered := step
		if dir < 0 {
			entered = t.upper[q] - step
		}
		out := t.basis[leave]
		t.row[out] = -1
		t.atUpper[out] = toUpper

		t.pivot(leave, q, reduced)
		t.basis[leave] = q
		t.row[q] = leave
		t.atUpper[q] = false
		t.value[leave] = entered
	}
}

// entering picks the nonbasic column whose reduced cost improves the
// objective the most, or the lowest such index under Bland's rule. It
// returns -1 at optimality.
func (t *tableau) entering(reduced []float64, excluded []bool, bland bool) int {
	best, bestScore := -1, optimalityTolerance
	for j, d := range reduced {
		if t.row[j] >= 0 || (excluded != nil && excluded[j]) {
			continue
		}
		score := -d
		if t.atUpper[j] {
			score = d
		}
		if score <= optimalityTolerance {
			continue
		}
		if bland {
			return j
		}
		if score > bestScore {
			best, bestScore = j, score
		}
	}
	return best
}

// ratioTest returns the basic row that blocks column q moving in direction
// dir, the step length and whether the blocking variable stops at its
// upper bound. Row -1 means q reaches its own opposite bound first.
func (t *tableau) ratioTest(q int, dir float64, bland bool) (int, float64, bool) {
	rows, _ := t.a.Dims()
	leave, step, toUpper := -1, t.upper[q], false
	var pivot float64
	for i := 0; i < rows; i++ {
		alpha := dir * t.a.At(i, q)

		var limit float64
		up := false
		switch {
		case alpha > pivotTolerance:
			limit = t.value[i] / alpha
		case alpha < -pivotTolerance:
			u := t.upper[t.basis[i]]
			if math.IsInf(u, 1) {
				continue
			}
			limit, up = (u-t.value[i])/-alpha, true
		default:
			continue
		}
		limit = math.Max(limit, 0)

		better := limit < step-ratioTieTolerance
		if !better && leave >= 0 && limit <= step+ratioTieTolerance {
			if bland {
				better = t.basis[i] < t.basis[leave]
			} else {
				better = math.Abs(alpha) > pivot
			}
		}
		if better {
			leave, step, toUpper, pivot = i, limit, up, math.Abs(alpha)
		}
	}
	return leave, step, toUpper
}

// pivot makes column q basic in row r and eliminates it from every other
// row and from the reduced costs.
func (t *tableau) pivot(r, q int, reduced []float64) {
	rows, _ := t.a.Dims()
	pr := t.a.RawRowView(r)
	floats.Scale(1/pr[q], pr)
	pr[q] = 1
	for i := 0; i < rows; i++ {
		if i == r {
			continue
		}
		row := t.a.RawRowView(i)
		if f := row[q]; f != 0 {
			floats.AddScaled(row, -f, pr)
			row[q] = 0
		}
	}
	if f := reduced[q]; f != 0 {
		floats.AddScaled(reduced, -f, pr)
		reduced[q] = 0
	}
}

func (t *tableau) columnValue(j int) float64 {
	switch {
	case t.row[j] >= 0:
		return t.value[t.row[j]]
	case t.atUpper[j]:
		return t.upper[j]
	default:
		return 0
	}
}
