package packing

import (
	"sort"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

// Greedy packs boxes one at a time at the lowest free extreme point, in the
// first orientation that fits. Must-pack boxes go first, then the rest by
// descending objective value and volume. The result always passes
// geometry.Verify except that a must-pack box may be left out.
func Greedy(container geometry.Container, boxes []geometry.Box, objective Objective) geometry.Packing {
	size := container.Size()

	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := boxes[order[a]], boxes[order[b]]
		if x.MustPack != y.MustPack {
			return x.MustPack
		}
		if vx, vy := objective.Value(x), objective.Value(y); vx != vy {
			return vx > vy
		}
		return x.Volume() > y.Volume()
	})

	p := geometry.Packing{Placements: make([]geometry.Placement, len(boxes))}
	for i := range p.Placements {
		p.Placements[i].Index = i
	}

	var placed []geometry.Placement
	points := []geometry.Vec3{{0, 0, 0}}
	for _, i := range order {
		pl, at, ok := firstFit(boxes[i], i, size, points, placed)
		if !ok {
			continue
		}
		p.Placements[i] = pl
		placed = append(placed, pl)

		points = append(points[:at], points[at+1:]...)
		far := pl.Max()
		for _, axis := range geometry.Axes {
			pt := pl.Position
			pt[axis] = far[axis]
			points = append(points, pt)
		}
		sort.SliceStable(points, func(a, b int) bool {
			for _, axis := range []geometry.Axis{geometry.AxisZ, geometry.AxisY, geometry.AxisX} {
				if points[a][axis] != points[b][axis] {
					return points[a][axis] < points[b][axis]
				}
			}
			return false
		})
	}
	return p
}

// firstFit returns the first placement of box at one of points that stays
// inside the container and clear of placed, with the index of that point.
func firstFit(box geometry.Box, index int, size geometry.Vec3, points []geometry.Vec3, placed []geometry.Placement) (geometry.Placement, int, bool) {
	for at, pt := range points {
		for _, o := range geometry.Orientations() {
			cand := geometry.Placement{
				Index:       index,
				Packed:      true,
				Orientation: o,
				Position:    pt,
				Extent:      box.Extent(o),
			}
			if !inside(cand, size) || overlapsAny(cand, placed) {
				continue
			}
			return cand, at, true
		}
	}
	return geometry.Placement{}, 0, false
}

func inside(pl geometry.Placement, size geometry.Vec3) bool {
	far := pl.Max()
	for _, axis := range geometry.Axes {
		if far[axis] > size[axis]+geometry.DefaultTolerance {
			return false
		}
	}
	return true
}

func overlapsAny(pl geometry.Placement, placed []geometry.Placement) bool {
	for _, other := range placed {
		if geometry.Overlaps(pl, other, geometry.DefaultTolerance) {
			return true
		}
	}
	return false
}

// SeedStart stores the Greedy packing as the model's start assignment and
// returns how many boxes it places. The start stays unset when the greedy
// packing leaves out a must-pack box.
func (f *Formulation) SeedStart() int {
	p := Greedy(f.Container, f.Boxes, f.Objective)
	packed := 0
	for i, pl := range p.Placements {
		if !pl.Packed {
			if f.Boxes[i].MustPack {
				return 0
			}
			continue
		}
		packed++
	}
	values, err := f.Encode(p)
	if err != nil {
		return 0
	}
	f.Problem.Start = values
	return packed
}
