package milp

import (
	"fmt"
	"math"
)

// VarType is the domain of a decision variable.
type VarType int

const (
	Continuous VarType = iota
	Integer
	Binary
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("vartype(%d)", int(t))
	}
}

// Sense is the relation between a row's activity and its right-hand side.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("sense(%d)", int(s))
	}
}

// Var is a decision variable with box bounds. Upper may be +Inf.
type Var struct {
	Name  string
	Type  VarType
	Lower float64
	Upper float64
}

// IsInteger reports whether the variable carries an integrality requirement.
func (v Var) IsInteger() bool {
	return v.Type == Integer || v.Type == Binary
}

// Term is coef * x[Var].
type Term struct {
	Var  int
	Coef float64
}

// T is shorthand for constructing a Term.
func T(coef float64, v int) Term {
	return Term{Var: v, Coef: coef}
}

// Row is a linear constraint: sum(Terms) Sense RHS.
type Row struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Objective is a linear objective over the model variables.
type Objective struct {
	Maximize bool
	Terms    []Term
}

// Model is a solver-agnostic mixed-integer linear program.
//
// Variables and rows are addressed by the index returned when they were
// added; the model never reorders them.
type Model struct {
	Name      string
	Vars      []Var
	Rows      []Row
	Objective Objective

	// Start is an optional complete assignment a solver may use as its
	// first incumbent. Solvers ignore a start that violates the model.
	Start []float64
}

// Stats summarises model size.
type Stats struct {
	Variables   int `json:"variables"`
	Integers    int `json:"integers"`
	Constraints int `json:"constraints"`
	Nonzeros    int `json:"nonzeros"`
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVar appends a variable and returns its index.
func (m *Model) AddVar(name string, typ VarType, lower, upper float64) int {
	if typ == Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
	}
	m.Vars = append(m.Vars, Var{Name: name, Type: typ, Lower: lower, Upper: upper})
	return len(m.Vars) - 1
}

// AddBinary appends a 0/1 variable.
func (m *Model) AddBinary(name string) int {
	return m.AddVar(name, Binary, 0, 1)
}

// AddContinuous appends a continuous variable in [lower, upper].
func (m *Model) AddContinuous(name string, lower, upper float64) int {
	return m.AddVar(name, Continuous, lower, upper)
}

// AddInteger appends a general integer variable in [lower, upper].
func (m *Model) AddInteger(name string, lower, upper float64) int {
	return m.AddVar(name, Integer, lower, upper)
}

// Fix pins variable v to value by collapsing its bounds.
func (m *Model) Fix(v int, value float64) {
	m.Vars[v].Lower = value
	m.Vars[v].Upper = value
}

// AddRow appends a constraint and returns its index. Terms referencing the
// same variable are merged and zero coefficients dropped.
func (m *Model) AddRow(name string, terms []Term, sense Sense, rhs float64) int {
	m.Rows = append(m.Rows, Row{
		Name:  name,
		Terms: m.compact(terms),
		Sense: sense,
		RHS:   rhs,
	})
	return len(m.Rows) - 1
}

// Maximize sets a maximisation objective.
func (m *Model) Maximize(terms []Term) {
	m.Objective = Objective{Maximize: true, Terms: m.compact(terms)}
}

// Minimize sets a minimisation objective.
func (m *Model) Minimize(terms []Term) {
	m.Objective = Objective{Maximize: false, Terms: m.compact(terms)}
}

// Stats returns variable, integer, row and nonzero counts.
func (m *Model) Stats() Stats {
	s := Stats{Variables: len(m.Vars), Constraints: len(m.Rows)}
	for _, v := range m.Vars {
		if v.IsInteger() {
			s.Integers++
		}
	}
	for _, r := range m.Rows {
		s.Nonzeros += len(r.Terms)
	}
	return s
}

// ObjectiveVector returns the dense objective coefficients.
func (m *Model) ObjectiveVector() []float64 {
	c := make([]float64, len(m.Vars))
	for _, t := range m.Objective.Terms {
		c[t.Var] += t.Coef
	}
	return c
}

// Evaluate returns the objective value of an assignment.
func (m *Model) Evaluate(values []float64) float64 {
	var z float64
	for _, t := range m.Objective.Terms {
		z += t.Coef * values[t.Var]
	}
	return z
}

// Activity returns sum(Terms) of row r under values.
func (r Row) Activity(values []float64) float64 {
	var sum float64
	for _, t := range r.Terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

func (m *Model) compact(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	pos := make(map[int]int, len(terms))
	for _, t := range terms {
		if t.Var < 0 || t.Var >= len(m.Vars) {
			panic(fmt.Sprintf("milp: term references undeclared variable %d", t.Var))
		}
		if i, ok := pos[t.Var]; ok {
			out[i].Coef += t.Coef
			continue
		}
		pos[t.Var] = len(out)
		out = append(out, t)
	}
	kept := out[:0]
	for _, t := range out {
		if t.Coef != 0 {
			kept = append(kept, t)
		}
	}
	return kept
}
