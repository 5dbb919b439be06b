package milp

import (
	"fmt"
	"math"
)

// Violation describes the first constraint or bound an assignment breaks.
type Violation struct {
	Name     string
	Activity float64
	Sense    Sense
	RHS      float64
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s violated: %g %s %g", v.Name, v.Activity, v.Sense, v.RHS)
}

// Check verifies an assignment against every bound, integrality requirement
// and row of the model, returning a *Violation for the first failure.
func (m *Model) Check(values []float64, tol float64) error {
	if len(values) != len(m.Vars) {
		return fmt.Errorf("%w: %d values for %d variables", ErrDimension, len(values), len(m.Vars))
	}

	for i, v := range m.Vars {
		x := values[i]
		if math.IsNaN(x) {
			return &Violation{Name: v.Name, Activity: x, Sense: Equal, RHS: v.Lower}
		}
		if x < v.Lower-tol {
			return &Violation{Name: v.Name + " lower bound", Activity: x, Sense: GreaterEq, RHS: v.Lower}
		}
		if x > v.Upper+tol {
			return &Violation{Name: v.Name + " upper bound", Activity: x, Sense: LessEq, RHS: v.Upper}
		}
		if v.IsInteger() && math.Abs(x-math.Round(x)) > tol {
			return &Violation{Name: v.Name + " integrality", Activity: x, Sense: Equal, RHS: math.Round(x)}
		}
	}

	for _, r := range m.Rows {
		act := r.Activity(values)
		if !Satisfied(act, r.Sense, r.RHS, tol) {
			return &Violation{Name: r.Name, Activity: act, Sense: r.Sense, RHS: r.RHS}
		}
	}
	return nil
}

// Satisfied reports whether activity Sense rhs holds within tol.
func Satisfied(activity float64, sense Sense, rhs, tol float64) bool {
	switch sense {
	case LessEq:
		return activity <= rhs+tol
	case GreaterEq:
		return activity >= rhs-tol
	default:
		return math.Abs(activity-rhs) <= tol
	}
}
