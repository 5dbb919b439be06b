package geometry

import (
	"fmt"
	"math"
)

// DefaultTolerance absorbs floating point noise in solver coordinates.
const DefaultTolerance = 1e-6

// ValidateContainer rejects zero, negative and non-finite dimensions.
func ValidateContainer(c Container) error {
	for _, axis := range Axes {
		v := c.Size()[axis]
		if !positiveFinite(v) {
			return fmt.Errorf("%w: %s extent is %v", ErrInvalidContainer, axis, v)
		}
	}
	return nil
}

// ValidateBoxes checks every box; the error names the first offending box.
// Values are never clamped.
func ValidateBoxes(boxes []Box) error {
	for i, b := range boxes {
		if err := validateBox(b); err != nil {
			return fmt.Errorf("box %s: %w", b.Label(i), err)
		}
	}
	return nil
}

func validateBox(b Box) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"length", b.Length},
		{"width", b.Width},
		{"height", b.Height},
	}
	for _, f := range fields {
		if !positiveFinite(f.value) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidBox, f.name, f.value)
		}
	}
	if math.IsNaN(b.Weight) || math.IsInf(b.Weight, 0) || b.Weight < 0 {
		return fmt.Errorf("%w: weight is %v", ErrInvalidBox, b.Weight)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Verify checks a packing against the container and box list: every packed
// box lies inside the container under its orientation, no two packed boxes
// overlap in all three axes, and every must-pack box is packed.
func Verify(c Container, boxes []Box, p Packing, tol float64) error {
	if len(p.Placements) != len(boxes) {
		return fmt.Errorf("%w: %d placements for %d boxes", ErrPlacementMismatch, len(p.Placements), len(boxes))
	}

	size := c.Size()
	for i, pl := range p.Placements {
		if pl.Index != i {
			return fmt.Errorf("%w: placement %d has index %d", ErrPlacementMismatch, i, pl.Index)
		}
		if !pl.Packed {
			if boxes[i].MustPack {
				return fmt.Errorf("box %s: %w", boxes[i].Label(i), ErrMustPackMissing)
			}
			continue
		}
		if !pl.Orientation.Valid() {
			return fmt.Errorf("%w: box %s has %s", ErrPlacementMismatch, boxes[i].Label(i), pl.Orientation)
		}
		if pl.Extent != boxes[i].Extent(pl.Orientation) {
			return fmt.Errorf("%w: box %s extent %v does not match %s", ErrPlacementMismatch, boxes[i].Label(i), pl.Extent, pl.Orientation)
		}
		far := pl.Max()
		for _, axis := range Axes {
			if pl.Position[axis] < -tol || far[axis] > size[axis]+tol {
				return fmt.Errorf("box %s on %s [%g, %g] outside [0, %g]: %w",
					boxes[i].Label(i), axis, pl.Position[axis], far[axis], size[axis], ErrOutOfBounds)
			}
		}
	}

	for i := range p.Placements {
		if !p.Placements[i].Packed {
			continue
		}
		for j := i + 1; j < len(p.Placements); j++ {
			if !p.Placements[j].Packed {
				continue
			}
			if Overlaps(p.Placements[i], p.Placements[j], tol) {
				return fmt.Errorf("boxes %s and %s: %w", boxes[i].Label(i), boxes[j].Label(j), ErrOverlap)
			}
		}
	}
	return nil
}

// Overlaps reports whether two placed boxes intersect with positive volume.
// Boxes that only share a face do not overlap.
func Overlaps(a, b Placement, tol float64) bool {
	aMax, bMax := a.Max(), b.Max()
	for _, axis := range Axes {
		if aMax[axis] <= b.Position[axis]+tol || bMax[axis] <= a.Position[axis]+tol {
			return false
		}
	}
	return true
}
