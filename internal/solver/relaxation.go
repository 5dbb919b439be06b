package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/eugenenazirov/uld-packer/internal/milp"
)

const (
	fixTolerance         = 1e-9
	feasibilityTolerance = 1e-7
)

// errInfeasibleNode marks a relaxation without a feasible point. It never
// leaves the package: the driver turns it into pruning or StatusInfeasible.
var errInfeasibleNode = errors.New("relaxation is infeasible")

// solveRelaxation solves the LP relaxation of m under the node bounds lo/hi
// and returns the assignment and its minimisation-form objective.
//
// Before the simplex runs, every variable is shifted to its lower bound and
// fixed variables are substituted out. Rows whose activity range already
// satisfies them are dropped and rows that cannot be satisfied prove the
// node infeasible without a solve. Columns left in no row go to whichever
// bound the objective prefers.
func solveRelaxation(ctx context.Context, m *milp.Model, cost, lo, hi []float64, maxIters int) ([]float64, float64, error) {
	n := len(m.Vars)

	col := make([]int, n)
	var free []int
	offset := 0.0
	for j := 0; j < n; j++ {
		if math.IsInf(lo[j], -1) {
			return nil, 0, fmt.Errorf("%w: variable %s", ErrUnsupported, m.Vars[j].Name)
		}
		if hi[j] < lo[j]-fixTolerance {
			return nil, 0, errInfeasibleNode
		}
		offset += cost[j] * lo[j]
		if hi[j]-lo[j] <= fixTolerance {
			col[j] = -1
			continue
		}
		col[j] = len(free)
		free = append(free, j)
	}

	var (
		rows   [][]float64
		senses []milp.Sense
		rhs    []float64
	)
	used := make([]bool, len(free))

	for _, r := range m.Rows {
		b := r.RHS
		coef := make([]float64, len(free))
		var minAct, maxAct float64
		for _, t := range r.Terms {
			b -= t.Coef * lo[t.Var]
			k := col[t.Var]
			if k < 0 {
				continue
			}
			coef[k] += t.Coef
			span := hi[t.Var] - lo[t.Var]
			if t.Coef > 0 {
				maxAct += t.Coef * span
			} else {
				minAct += t.Coef * span
			}
		}

		switch r.Sense {
		case milp.LessEq:
			if minAct > b+feasibilityTolerance {
				return nil, 0, errInfeasibleNode
			}
			if maxAct <= b+fixTolerance {
				continue
			}
		case milp.GreaterEq:
			if maxAct < b-feasibilityTolerance {
				return nil, 0, errInfeasibleNode
			}
			if minAct >= b-fixTolerance {
				continue
			}
		default:
			if minAct > b+feasibilityTolerance || maxAct < b-feasibilityTolerance {
				return nil, 0, errInfeasibleNode
			}
			if minAct == 0 && maxAct == 0 {
				continue
			}
		}

		for k, v := range coef {
			if v != 0 {
				used[k] = true
			}
		}
		rows = append(rows, coef)
		senses = append(senses, r.Sense)
		rhs = append(rhs, b)
	}

	values := make([]float64, n)
	copy(values, lo)

	var active []int
	for k, j := range free {
		if used[k] {
			active = append(active, k)
			continue
		}
		if cost[j] < 0 {
			if math.IsInf(hi[j], 1) {
				return nil, 0, ErrUnbounded
			}
			values[j] = hi[j]
			offset += cost[j] * (hi[j] - lo[j])
		}
	}
	if len(rows) == 0 {
		return values, offset, nil
	}

	p := boundedLP{
		rows:   make([][]float64, len(rows)),
		senses: senses,
		rhs:    rhs,
		upper:  make([]float64, len(active)),
		cost:   make([]float64, len(active)),
	}
	for i, coef := range rows {
		p.rows[i] = make([]float64, len(active))
		for idx, k := range active {
			p.rows[i][idx] = coef[k]
		}
	}
	for idx, k := range active {
		j := free[k]
		p.upper[idx] = hi[j] - lo[j]
		p.cost[idx] = cost[j]
	}

	y, err := simplex(ctx, p, maxIters)
	if err != nil {
		return nil, 0, err
	}

	z := offset
	for idx, k := range active {
		j := free[k]
		values[j] = lo[j] + y[idx]
		z += cost[j] * y[idx]
	}
	return values, z, nil
}
