package milp

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKnapsack() (*Model, []int) {
	m := NewModel("knapsack")
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	c := m.AddContinuous("c", 0, 10)
	m.AddRow("cap", []Term{T(3, a), T(4, b), T(1, c)}, LessEq, 6)
	m.Maximize([]Term{T(5, a), T(6, b), T(0.5, c)})
	return m, []int{a, b, c}
}

func TestAddRowMergesDuplicateTerms(t *testing.T) {
	m := NewModel("merge")
	x := m.AddContinuous("x", 0, math.Inf(1))
	y := m.AddContinuous("y", 0, math.Inf(1))

	r := m.AddRow("r", []Term{T(1, x), T(2, y), T(3, x), T(-2, y)}, LessEq, 1)

	require.Len(t, m.Rows[r].Terms, 1)
	assert.Equal(t, Term{Var: x, Coef: 4}, m.Rows[r].Terms[0])
}

func TestAddRowPanicsOnUndeclaredVariable(t *testing.T) {
	m := NewModel("bad")
	assert.Panics(t, func() {
		m.AddRow("r", []Term{T(1, 3)}, LessEq, 1)
	})
}

func TestBinaryBoundsAreClamped(t *testing.T) {
	m := NewModel("bin")
	v := m.AddVar("v", Binary, -4, 9)
	assert.Equal(t, 0.0, m.Vars[v].Lower)
	assert.Equal(t, 1.0, m.Vars[v].Upper)

	m.Fix(v, 1)
	assert.Equal(t, 1.0, m.Vars[v].Lower)
	assert.Equal(t, 1.0, m.Vars[v].Upper)
}

func TestStats(t *testing.T) {
	m, _ := newKnapsack()
	assert.Equal(t, Stats{Variables: 3, Integers: 2, Constraints: 1, Nonzeros: 3}, m.Stats())
}

func TestCheck(t *testing.T) {
	m, _ := newKnapsack()

	tests := []struct {
		name     string
		values   []float64
		violated string
	}{
		{name: "Feasible", values: []float64{1, 0, 3}},
		{name: "Capacity", values: []float64{1, 1, 0}, violated: "cap"},
		{name: "Fractional", values: []float64{0.5, 0, 0}, violated: "a integrality"},
		{name: "Upper", values: []float64{0, 0, 11}, violated: "c upper bound"},
		{name: "Lower", values: []float64{0, -1, 0}, violated: "b lower bound"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := m.Check(tc.values, 1e-9)
			if tc.violated == "" {
				require.NoError(t, err)
				return
			}
			var v *Violation
			require.True(t, errors.As(err, &v), "expected *Violation, got %v", err)
			assert.Equal(t, tc.violated, v.Name)
		})
	}
}

func TestCheckRejectsWrongLength(t *testing.T) {
	m, _ := newKnapsack()
	assert.ErrorIs(t, m.Check([]float64{1}, 1e-9), ErrDimension)
}

func TestEvaluate(t *testing.T) {
	m, _ := newKnapsack()
	assert.InDelta(t, 6.5, m.Evaluate([]float64{1, 0, 3}), 1e-12)
	assert.Equal(t, []float64{5, 6, 0.5}, m.ObjectiveVector())
}

func TestWriteLP(t *testing.T) {
	m, vars := newKnapsack()
	m.Fix(vars[1], 1)
	n := m.AddInteger("n", 0, 4)
	m.AddRow("link", []Term{T(-1, vars[0]), T(2, n)}, GreaterEq, -1)

	var buf bytes.Buffer
	require.NoError(t, m.WriteLP(&buf))

	want := "\\ Problem: knapsack\n" +
		"Maximize\n" +
		" obj: 5 a + 6 b + 0.5 c\n" +
		"Subject To\n" +
		" cap: 3 a + 4 b + c <= 6\n" +
		" link: - a + 2 n >= -1\n" +
		"Bounds\n" +
		" b = 1\n" +
		" 0 <= c <= 10\n" +
		" 0 <= n <= 4\n" +
		"Binaries\n" +
		" a\n" +
		" b\n" +
		"Generals\n" +
		" n\n" +
		"End\n"
	assert.Equal(t, want, buf.String())
}

func TestStatusHasSolution(t *testing.T) {
	assert.True(t, StatusOptimal.HasSolution())
	assert.True(t, StatusFeasible.HasSolution())
	assert.False(t, StatusInfeasible.HasSolution())
	assert.Equal(t, "infeasible", StatusInfeasible.String())

	var s *Solution
	assert.Equal(t, 0.0, s.Value(0))
}

func TestEvaluateMatchesExportedObjective(t *testing.T) {
	m, _ := newKnapsack()
	m.Start = []float64{1, 1, 0}

	assert.Zero(t, m.Evaluate(make([]float64, len(m.Vars))), "the objective has no constant term")
	assert.InDelta(t, 11, m.Evaluate(m.Start), 1e-12)

	var buf bytes.Buffer
	require.NoError(t, m.WriteLP(&buf))
	assert.Contains(t, buf.String(), " obj: 5 a + 6 b + 0.5 c\n")
	assert.NotContains(t, buf.String(), "Start")
}
