package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestBoxExtentCoversAllPermutations(t *testing.T) {
	t.Parallel()

	box := Box{Length: 1, Width: 2, Height: 3}
	want := []Vec3{
		{1, 2, 3},
		{1, 3, 2},
		{2, 1, 3},
		{2, 3, 1},
		{3, 1, 2},
		{3, 2, 1},
	}

	seen := make(map[Vec3]bool)
	for i, o := range Orientations() {
		got := box.Extent(o)
		if got != want[i] {
			t.Fatalf("orientation %s: expected %v, got %v", o, want[i], got)
		}
		if got.Volume() != box.Volume() {
			t.Fatalf("orientation %s changed volume", o)
		}
		seen[got] = true
	}
	if len(seen) != NumOrientations {
		t.Fatalf("expected %d distinct extents, got %d", NumOrientations, len(seen))
	}
}

func TestOrientationValid(t *testing.T) {
	t.Parallel()

	if Orientation(-1).Valid() || Orientation(NumOrientations).Valid() {
		t.Fatalf("out of range orientations must be invalid")
	}
	if got := Orientation(3).String(); got != "WHL" {
		t.Fatalf("expected WHL, got %s", got)
	}
}

func TestBoxFits(t *testing.T) {
	t.Parallel()

	c := Container{Length: 10, Width: 10, Height: 10}
	if (Box{Length: 12, Width: 5, Height: 5}).Fits(c) {
		t.Fatalf("12x5x5 cannot fit a 10 cube")
	}
	if !(Box{Length: 4, Width: 10, Height: 2}).Fits(Container{Length: 10, Width: 4, Height: 2}) {
		t.Fatalf("expected rotated box to fit")
	}
}

func TestValidateContainer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		c       Container
		wantErr error
	}{
		{name: "Valid", c: Container{Length: 1, Width: 2, Height: 3}},
		{name: "Zero", c: Container{Length: 0, Width: 2, Height: 3}, wantErr: ErrInvalidContainer},
		{name: "Negative", c: Container{Length: 1, Width: -2, Height: 3}, wantErr: ErrInvalidContainer},
		{name: "NaN", c: Container{Length: 1, Width: 2, Height: math.NaN()}, wantErr: ErrInvalidContainer},
		{name: "Inf", c: Container{Length: math.Inf(1), Width: 2, Height: 3}, wantErr: ErrInvalidContainer},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateContainer(tc.c); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateBoxes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		boxes   []Box
		wantErr error
	}{
		{name: "Empty", boxes: nil},
		{name: "Valid", boxes: []Box{{Length: 1, Width: 1, Height: 1}, {Length: 2, Width: 3, Height: 4, Weight: 5, MustPack: true}}},
		{name: "ZeroWeightAllowed", boxes: []Box{{Length: 1, Width: 1, Height: 1, Weight: 0}}},
		{name: "NegativeDimension", boxes: []Box{{Length: -1, Width: 1, Height: 1}}, wantErr: ErrInvalidBox},
		{name: "ZeroDimension", boxes: []Box{{Length: 1, Width: 0, Height: 1}}, wantErr: ErrInvalidBox},
		{name: "NegativeWeight", boxes: []Box{{Length: 1, Width: 1, Height: 1, Weight: -3}}, wantErr: ErrInvalidBox},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateBoxes(tc.boxes); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestOverlapsAllowsTouchingFaces(t *testing.T) {
	t.Parallel()

	a := Placement{Packed: true, Position: Vec3{0, 0, 0}, Extent: Vec3{5, 5, 5}}
	touching := Placement{Packed: true, Position: Vec3{5, 0, 0}, Extent: Vec3{5, 5, 5}}
	inside := Placement{Packed: true, Position: Vec3{4, 4, 4}, Extent: Vec3{2, 2, 2}}
	apart := Placement{Packed: true, Position: Vec3{4, 6, 0}, Extent: Vec3{2, 2, 2}}

	if Overlaps(a, touching, DefaultTolerance) {
		t.Fatalf("face-sharing boxes must not overlap")
	}
	if !Overlaps(a, inside, DefaultTolerance) || !Overlaps(inside, a, DefaultTolerance) {
		t.Fatalf("intersecting boxes must overlap symmetrically")
	}
	if Overlaps(a, apart, DefaultTolerance) {
		t.Fatalf("boxes separated on y must not overlap")
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	c := Container{Length: 10, Width: 10, Height: 10}
	boxes := []Box{
		{Length: 5, Width: 10, Height: 10, MustPack: true},
		{Length: 10, Width: 5, Height: 10},
	}
	place := func(i int, o Orientation, pos Vec3) Placement {
		return Placement{Index: i, Packed: true, Orientation: o, Position: pos, Extent: boxes[i].Extent(o)}
	}

	valid := Packing{Placements: []Placement{
		place(0, 0, Vec3{0, 0, 0}),
		place(1, 2, Vec3{5, 0, 0}),
	}}
	if err := Verify(c, boxes, valid, DefaultTolerance); err != nil {
		t.Fatalf("expected valid packing, got %v", err)
	}

	tests := []struct {
		name    string
		packing Packing
		wantErr error
	}{
		{
			name:    "OutOfBounds",
			packing: Packing{Placements: []Placement{place(0, 0, Vec3{0, 0, 0}), place(1, 2, Vec3{6, 0, 0})}},
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "Overlap",
			packing: Packing{Placements: []Placement{place(0, 0, Vec3{0, 0, 0}), place(1, 2, Vec3{4, 0, 0})}},
			wantErr: ErrOverlap,
		},
		{
			name:    "MustPackMissing",
			packing: Packing{Placements: []Placement{{Index: 0}, place(1, 0, Vec3{0, 0, 0})}},
			wantErr: ErrMustPackMissing,
		},
		{
			name:    "WrongCount",
			packing: Packing{Placements: []Placement{place(0, 0, Vec3{0, 0, 0})}},
			wantErr: ErrPlacementMismatch,
		},
		{
			name: "ExtentMismatch",
			packing: Packing{Placements: []Placement{
				{Index: 0, Packed: true, Orientation: 0, Extent: Vec3{10, 10, 5}},
				{Index: 1},
			}},
			wantErr: ErrPlacementMismatch,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if err := Verify(c, boxes, tc.packing, DefaultTolerance); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
