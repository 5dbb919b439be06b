package geometry

import "fmt"

// Orientation selects which box dimension lies along each axis.
type Orientation int

// NumOrientations is the number of axis permutations of a box.
const NumOrientations = 6

// permutations maps an orientation to the indices of (length, width, height)
// placed on the x, y and z axes.
var permutations = [NumOrientations][3]int{
	{0, 1, 2},
	{0, 2, 1},
	{1, 0, 2},
	{1, 2, 0},
	{2, 0, 1},
	{2, 1, 0},
}

var orientationNames = [NumOrientations]string{"LWH", "LHW", "WLH", "WHL", "HLW", "HWL"}

// Orientations returns all six orientations in index order.
func Orientations() []Orientation {
	out := make([]Orientation, NumOrientations)
	for o := range out {
		out[o] = Orientation(o)
	}
	return out
}

// Valid reports whether o is one of the six orientations.
func (o Orientation) Valid() bool {
	return o >= 0 && int(o) < NumOrientations
}

func (o Orientation) String() string {
	if !o.Valid() {
		return fmt.Sprintf("orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// Extent returns the effective (lenX, lenY, lenZ) of the box under o.
func (b Box) Extent(o Orientation) Vec3 {
	dims := b.Dimensions()
	perm := permutations[o]
	return Vec3{dims[perm[0]], dims[perm[1]], dims[perm[2]]}
}

// Fits reports whether the box fits the container in at least one orientation.
func (b Box) Fits(c Container) bool {
	size := c.Size()
	for _, o := range Orientations() {
		ext := b.Extent(o)
		if ext[0] <= size[0] && ext[1] <= size[1] && ext[2] <= size[2] {
			return true
		}
	}
	return false
}
