package packing

import (
	"fmt"
	"math"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/milp"
)

// Directions of separation between boxes i and j. Direction 2a means i lies
// before j on axis a, 2a+1 means j lies before i.
const numDirections = 6

var directionNames = [numDirections]string{"xij", "xji", "yij", "yji", "zij", "zji"}

// noOrientation marks a separation group that covers all orientations.
const noOrientation geometry.Orientation = -1

// separation is one group of six directional indicators guarding a pair of
// boxes, optionally restricted to one orientation of each.
type separation struct {
	i, j   int
	oi, oj geometry.Orientation
	vars   [numDirections]int
}

// Formulation is a built packing model together with the index tables
// needed to read a solver assignment back as placements.
type Formulation struct {
	Problem   *milp.Model
	Container geometry.Container
	Boxes     []geometry.Box
	Objective Objective
	Kind      Kind
	// BigM is the relaxation constant used on each axis.
	BigM geometry.Vec3

	packed []int
	orient [][geometry.NumOrientations]int
	coord  [][3]int
	seps   []separation
}

// Build formulates the packing of boxes into container as a MILP.
//
// Every box gets a packed indicator, six orientation indicators whose sum
// equals the packed indicator, and a minimum-corner coordinate per axis.
// Coordinates of unpacked boxes are forced to zero. Must-pack boxes have
// their packed indicator fixed to one, so an impossible must-pack set makes
// the model infeasible instead of failing here. Orientation indicators whose
// extent exceeds the container are fixed to zero, as are separation
// indicators for directions no fitting orientations of the two boxes can
// realise inside the container.
//
// Build only fails on malformed input.
func Build(container geometry.Container, boxes []geometry.Box, objective Objective, opts ...Option) (*Formulation, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := geometry.ValidateContainer(container); err != nil {
		return nil, err
	}
	if err := geometry.ValidateBoxes(boxes); err != nil {
		return nil, err
	}
	if !objective.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObjective, objective)
	}
	if !o.kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormulation, o.kind)
	}
	if o.explicitBigM && (o.bigM <= 0 || math.IsInf(o.bigM, 0) || math.IsNaN(o.bigM)) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBigM, o.bigM)
	}

	f := &Formulation{
		Problem:   milp.NewModel(o.name),
		Container: container,
		Boxes:     append([]geometry.Box(nil), boxes...),
		Objective: objective,
		Kind:      o.kind,
		BigM:      bigM(container, boxes),
		packed:    make([]int, len(boxes)),
		orient:    make([][geometry.NumOrientations]int, len(boxes)),
		coord:     make([][3]int, len(boxes)),
	}
	if o.explicitBigM {
		f.BigM = geometry.Vec3{o.bigM, o.bigM, o.bigM}
	}

	for i := range f.Boxes {
		f.addBox(i)
	}
	for i := range f.Boxes {
		for j := i + 1; j < len(f.Boxes); j++ {
			if f.Kind == FormulationOrientationPairs {
				f.addOrientationPairSeparation(i, j)
				continue
			}
			f.addPairSeparation(i, j)
		}
	}
	f.setObjective()

	return f, nil
}

// bigM returns container extent plus the largest box dimension per axis.
// It bounds coord_i + extent_i - coord_j from above for any packing, which
// keeps the relaxed inequalities inactive in both formulations.
func bigM(c geometry.Container, boxes []geometry.Box) geometry.Vec3 {
	var largest float64
	for _, b := range boxes {
		largest = max(largest, b.MaxDimension())
	}
	size := c.Size()
	return geometry.Vec3{size[0] + largest, size[1] + largest, size[2] + largest}
}

func (f *Formulation) addBox(i int) {
	m := f.Problem
	box := f.Boxes[i]
	size := f.Container.Size()

	b := m.AddBinary(fmt.Sprintf("b_%d", i))
	if box.MustPack {
		m.Fix(b, 1)
	}
	f.packed[i] = b

	selectors := make([]milp.Term, 0, geometry.NumOrientations+1)
	for _, o := range geometry.Orientations() {
		r := m.AddBinary(fmt.Sprintf("r_%d_%s", i, o))
		if !fits(box.Extent(o), size) {
			m.Fix(r, 0)
		}
		f.orient[i][o] = r
		selectors = append(selectors, milp.T(1, r))
	}

	for _, axis := range geometry.Axes {
		f.coord[i][axis] = m.AddContinuous(fmt.Sprintf("%s_%d", axis, i), 0, size[axis])
	}

	m.AddRow(fmt.Sprintf("orient_%d", i), append(selectors, milp.T(-1, b)), milp.Equal, 0)

	for _, axis := range geometry.Axes {
		terms := []milp.Term{milp.T(1, f.coord[i][axis])}
		for _, o := range geometry.Orientations() {
			terms = append(terms, milp.T(box.Extent(o)[axis], f.orient[i][o]))
		}
		m.AddRow(fmt.Sprintf("fit_%d_%s", i, axis), terms, milp.LessEq, size[axis])
	}

	for _, axis := range geometry.Axes {
		m.AddRow(fmt.Sprintf("park_%d_%s", i, axis),
			[]milp.Term{milp.T(1, f.coord[i][axis]), milp.T(-size[axis], b)},
			milp.LessEq, 0)
	}
}

// addPairSeparation requires one of six directional separations between
// boxes i and j whenever both are packed.
func (f *Formulation) addPairSeparation(i, j int) {
	m := f.Problem
	sep := separation{i: i, j: j, oi: noOrientation, oj: noOrientation}

	terms := make([]milp.Term, 0, numDirections+2)
	for d := range numDirections {
		sep.vars[d] = m.AddBinary(fmt.Sprintf("s_%d_%d_%s", i, j, directionNames[d]))
		terms = append(terms, milp.T(1, sep.vars[d]))
	}
	terms = append(terms, milp.T(-1, f.packed[i]), milp.T(-1, f.packed[j]))
	m.AddRow(fmt.Sprintf("sep_%d_%d", i, j), terms, milp.GreaterEq, -1)

	size := f.Container.Size()
	for _, axis := range geometry.Axes {
		if f.minExtent(i, axis)+f.minExtent(j, axis) > size[axis]+geometry.DefaultTolerance {
			m.Fix(sep.vars[2*int(axis)], 0)
			m.Fix(sep.vars[2*int(axis)+1], 0)
		}
	}

	for _, axis := range geometry.Axes {
		bm := f.BigM[axis]
		for k, pair := range [2][2]int{{i, j}, {j, i}} {
			lo, hi := pair[0], pair[1]
			s := sep.vars[2*int(axis)+k]
			row := []milp.Term{milp.T(1, f.coord[lo][axis]), milp.T(-1, f.coord[hi][axis]), milp.T(bm, s)}
			for _, o := range geometry.Orientations() {
				row = append(row, milp.T(f.Boxes[lo].Extent(o)[axis], f.orient[lo][o]))
			}
			m.AddRow(fmt.Sprintf("nov_%d_%d_%s", i, j, directionNames[2*int(axis)+k]), row, milp.LessEq, bm)
		}
	}

	f.seps = append(f.seps, sep)
}

// addOrientationPairSeparation adds one separation group per orientation
// pair. A group only binds when both of its orientations are selected.
func (f *Formulation) addOrientationPairSeparation(i, j int) {
	m := f.Problem
	size := f.Container.Size()
	for _, oi := range geometry.Orientations() {
		for _, oj := range geometry.Orientations() {
			sep := separation{i: i, j: j, oi: oi, oj: oj}
			suffix := fmt.Sprintf("%d_%d_%s_%s", i, j, oi, oj)

			terms := make([]milp.Term, 0, numDirections+2)
			for d := range numDirections {
				sep.vars[d] = m.AddBinary(fmt.Sprintf("s_%s_%s", suffix, directionNames[d]))
				terms = append(terms, milp.T(1, sep.vars[d]))
			}
			terms = append(terms, milp.T(-1, f.orient[i][oi]), milp.T(-1, f.orient[j][oj]))
			m.AddRow("sep_"+suffix, terms, milp.GreaterEq, -1)

			extents := [2]geometry.Vec3{f.Boxes[i].Extent(oi), f.Boxes[j].Extent(oj)}
			for _, axis := range geometry.Axes {
				bm := f.BigM[axis]
				for k, pair := range [2][2]int{{i, j}, {j, i}} {
					lo, hi := pair[0], pair[1]
					s := sep.vars[2*int(axis)+k]
					m.AddRow(fmt.Sprintf("nov_%s_%s", suffix, directionNames[2*int(axis)+k]),
						[]milp.Term{milp.T(1, f.coord[lo][axis]), milp.T(-1, f.coord[hi][axis]), milp.T(bm, s)},
						milp.LessEq, bm-extents[k][axis])
				}
			}

			for _, axis := range geometry.Axes {
				if !fits(extents[0], size) || !fits(extents[1], size) ||
					extents[0][axis]+extents[1][axis] > size[axis]+geometry.DefaultTolerance {
					m.Fix(sep.vars[2*int(axis)], 0)
					m.Fix(sep.vars[2*int(axis)+1], 0)
				}
			}

			f.seps = append(f.seps, sep)
		}
	}
}

// minExtent returns the smallest extent of box i on axis over the
// orientations that fit the container, or +Inf when none fits.
func (f *Formulation) minExtent(i int, axis geometry.Axis) float64 {
	size := f.Container.Size()
	least := math.Inf(1)
	for _, o := range geometry.Orientations() {
		if ext := f.Boxes[i].Extent(o); fits(ext, size) {
			least = min(least, ext[axis])
		}
	}
	return least
}

func fits(ext, size geometry.Vec3) bool {
	return ext[0] <= size[0] && ext[1] <= size[1] && ext[2] <= size[2]
}

func (f *Formulation) setObjective() {
	terms := make([]milp.Term, 0, len(f.Boxes))
	for i, box := range f.Boxes {
		terms = append(terms, milp.T(f.Objective.Value(box), f.packed[i]))
	}
	f.Problem.Maximize(terms)
}

// PackedVar returns the packed indicator of box i.
func (f *Formulation) PackedVar(i int) int { return f.packed[i] }

// OrientationVar returns the indicator selecting orientation o for box i.
func (f *Formulation) OrientationVar(i int, o geometry.Orientation) int { return f.orient[i][o] }

// CoordinateVar returns the minimum-corner coordinate of box i on axis.
func (f *Formulation) CoordinateVar(i int, axis geometry.Axis) int { return f.coord[i][axis] }

// Separations returns the number of separation indicator groups.
func (f *Formulation) Separations() int { return len(f.seps) }
