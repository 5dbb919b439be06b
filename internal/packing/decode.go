package packing

import (
	"fmt"
	"math"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

// snap clears solver noise around zero.
const snap = 1e-9

// Decode turns a solver assignment into one placement per box, in input
// order. Indicators are read as set when above one half.
func (f *Formulation) Decode(values []float64) (geometry.Packing, error) {
	if len(values) != len(f.Problem.Vars) {
		return geometry.Packing{}, fmt.Errorf("%w: %d values for %d variables", ErrAssignment, len(values), len(f.Problem.Vars))
	}

	p := geometry.Packing{Placements: make([]geometry.Placement, len(f.Boxes))}
	for i, box := range f.Boxes {
		pl := geometry.Placement{Index: i}
		if values[f.packed[i]] > 0.5 {
			best, bestValue := noOrientation, 0.5
			for _, o := range geometry.Orientations() {
				if v := values[f.orient[i][o]]; v > bestValue {
					best, bestValue = o, v
				}
			}
			if best == noOrientation {
				return geometry.Packing{}, fmt.Errorf("%w: box %s is packed without an orientation", ErrAssignment, box.Label(i))
			}
			pl.Packed = true
			pl.Orientation = best
			pl.Extent = box.Extent(best)
			for _, axis := range geometry.Axes {
				v := values[f.coord[i][axis]]
				if math.Abs(v) < snap {
					v = 0
				}
				pl.Position[axis] = v
			}
		}
		p.Placements[i] = pl
	}
	return p, nil
}

// Encode turns a geometric packing into a complete assignment of the model,
// choosing for every separation group the first direction in which the two
// boxes are actually apart. Overlapping boxes leave their group unset, so
// the result fails Problem.Check instead of Encode.
func (f *Formulation) Encode(p geometry.Packing) ([]float64, error) {
	if len(p.Placements) != len(f.Boxes) {
		return nil, fmt.Errorf("%w: %d placements for %d boxes", ErrAssignment, len(p.Placements), len(f.Boxes))
	}

	values := make([]float64, len(f.Problem.Vars))
	for i, pl := range p.Placements {
		if !pl.Packed {
			continue
		}
		if !pl.Orientation.Valid() {
			return nil, fmt.Errorf("%w: box %s has %s", ErrAssignment, f.Boxes[i].Label(i), pl.Orientation)
		}
		values[f.packed[i]] = 1
		values[f.orient[i][pl.Orientation]] = 1
		for _, axis := range geometry.Axes {
			values[f.coord[i][axis]] = pl.Position[axis]
		}
	}

	for _, sep := range f.seps {
		a, b := p.Placements[sep.i], p.Placements[sep.j]
		if !a.Packed || !b.Packed {
			continue
		}
		if sep.oi != noOrientation && (a.Orientation != sep.oi || b.Orientation != sep.oj) {
			continue
		}
		ea, eb := f.Boxes[sep.i].Extent(a.Orientation), f.Boxes[sep.j].Extent(b.Orientation)
		for _, axis := range geometry.Axes {
			if a.Position[axis]+ea[axis] <= b.Position[axis]+geometry.DefaultTolerance {
				values[sep.vars[2*int(axis)]] = 1
				break
			}
			if b.Position[axis]+eb[axis] <= a.Position[axis]+geometry.DefaultTolerance {
				values[sep.vars[2*int(axis)+1]] = 1
				break
			}
		}
	}
	return values, nil
}
