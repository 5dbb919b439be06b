package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/uld-packer/internal/milp"
)

func TestSimplex(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	tests := []struct {
		name string
		lp   boundedLP
		want []float64
	}{
		{
			name: "Vertex",
			lp: boundedLP{
				rows:   [][]float64{{1, 2}, {3, 1}},
				senses: []milp.Sense{milp.LessEq, milp.LessEq},
				rhs:    []float64{4, 6},
				upper:  []float64{inf, inf},
				cost:   []float64{-1, -1},
			},
			want: []float64{1.6, 1.2},
		},
		{
			name: "CoverAgainstUpperBound",
			lp: boundedLP{
				rows:   [][]float64{{1, 1}},
				senses: []milp.Sense{milp.GreaterEq},
				rhs:    []float64{2},
				upper:  []float64{1, inf},
				cost:   []float64{1, 2},
			},
			want: []float64{1, 1},
		},
		{
			name: "NegativeEquality",
			lp: boundedLP{
				rows:   [][]float64{{-1, -1}},
				senses: []milp.Sense{milp.Equal},
				rhs:    []float64{-3},
				upper:  []float64{inf, 2},
				cost:   []float64{1, 0},
			},
			want: []float64{1, 2},
		},
		{
			name: "BoundFlip",
			lp: boundedLP{
				rows:   [][]float64{{1, -1}},
				senses: []milp.Sense{milp.LessEq},
				rhs:    []float64{10},
				upper:  []float64{3, inf},
				cost:   []float64{-1, 0},
			},
			want: []float64{3, 0},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			y, err := simplex(context.Background(), tc.lp, 0)
			require.NoError(t, err)
			require.Len(t, y, len(tc.want))
			for j := range tc.want {
				assert.InDelta(t, tc.want[j], y[j], 1e-9, "column %d", j)
			}
		})
	}
}

func TestSimplexInfeasible(t *testing.T) {
	t.Parallel()

	_, err := simplex(context.Background(), boundedLP{
		rows:   [][]float64{{1, 1}},
		senses: []milp.Sense{milp.GreaterEq},
		rhs:    []float64{5},
		upper:  []float64{1, 1},
		cost:   []float64{1, 1},
	}, 0)
	assert.ErrorIs(t, err, errInfeasibleNode)
}

func TestSimplexUnbounded(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	_, err := simplex(context.Background(), boundedLP{
		rows:   [][]float64{{1, -1}},
		senses: []milp.Sense{milp.LessEq},
		rhs:    []float64{1},
		upper:  []float64{inf, inf},
		cost:   []float64{-1, 0},
	}, 0)
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestSimplexStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := integerKnapsack()
	cost := []float64{-10, -13, -7}
	_, _, err := solveRelaxation(ctx, m, cost, []float64{0, 0, 0}, []float64{1, 1, 1}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimplexIterationLimit(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	_, err := simplex(context.Background(), boundedLP{
		rows:   [][]float64{{1, 2}, {3, 1}},
		senses: []milp.Sense{milp.LessEq, milp.LessEq},
		rhs:    []float64{4, 6},
		upper:  []float64{inf, inf},
		cost:   []float64{-1, -1},
	}, 1)
	assert.ErrorIs(t, err, ErrNumerical)
}

func TestRelaxationPresolve(t *testing.T) {
	t.Parallel()

	m := milp.NewModel("presolve")
	x := m.AddBinary("x")
	y := m.AddBinary("y")
	m.AddRow("loose", []milp.Term{milp.T(1, x), milp.T(1, y)}, milp.LessEq, 5)
	m.AddRow("tight", []milp.Term{milp.T(1, x), milp.T(1, y)}, milp.GreaterEq, 3)
	cost := []float64{-1, -1}

	_, _, err := solveRelaxation(context.Background(), m, cost, []float64{0, 0}, []float64{1, 1}, 0)
	assert.ErrorIs(t, err, errInfeasibleNode, "activity of at most 2 cannot reach 3")

	m.Rows = m.Rows[:1]
	values, z, err := solveRelaxation(context.Background(), m, cost, []float64{0, 0}, []float64{1, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, values, "columns free of rows go to the bound the objective prefers")
	assert.InDelta(t, -2, z, 1e-12)
}
