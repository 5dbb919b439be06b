package geometry

import "fmt"

// Axis identifies one of the three spatial axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists the axes in X, Y, Z order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Vec3 is an (x, y, z) triple used for both coordinates and extents.
type Vec3 [3]float64

// Volume returns the product of the three components.
func (v Vec3) Volume() float64 {
	return v[0] * v[1] * v[2]
}

// Container is the ULD being packed. It spans [0,L]x[0,W]x[0,H].
type Container struct {
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Size returns the container extent per axis.
func (c Container) Size() Vec3 {
	return Vec3{c.Length, c.Width, c.Height}
}

// Volume returns the container volume.
func (c Container) Volume() float64 {
	return c.Size().Volume()
}

// Box is an item to be packed. Boxes are identified by their index in the
// input slice; ID is an optional label carried through to reports.
type Box struct {
	ID       string  `json:"id,omitempty" yaml:"id"`
	Length   float64 `json:"length" yaml:"length"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	Weight   float64 `json:"weight" yaml:"weight"`
	MustPack bool    `json:"mustPack" yaml:"must_pack"`
}

// Dimensions returns (length, width, height) as a Vec3.
func (b Box) Dimensions() Vec3 {
	return Vec3{b.Length, b.Width, b.Height}
}

// Volume returns the box volume, which does not depend on orientation.
func (b Box) Volume() float64 {
	return b.Length * b.Width * b.Height
}

// MaxDimension returns the largest of the three box dimensions.
func (b Box) MaxDimension() float64 {
	return max(b.Length, b.Width, b.Height)
}

// Label returns the box ID, or its index when no ID was supplied.
func (b Box) Label(index int) string {
	if b.ID != "" {
		return b.ID
	}
	return fmt.Sprintf("#%d", index)
}

// Placement is the solver-derived position of one box. Unpacked boxes have
// Packed=false and zero Position/Extent.
type Placement struct {
	Index       int         `json:"index"`
	Packed      bool        `json:"packed"`
	Orientation Orientation `json:"orientation"`
	Position    Vec3        `json:"position"`
	Extent      Vec3        `json:"extent"`
}

// Max returns the far corner of the placed box.
func (p Placement) Max() Vec3 {
	return Vec3{
		p.Position[0] + p.Extent[0],
		p.Position[1] + p.Extent[1],
		p.Position[2] + p.Extent[2],
	}
}

// Packing is the final report of one optimisation run, one placement per
// input box, in input order.
type Packing struct {
	Placements []Placement `json:"placements"`
}

// Packed returns only the placements of packed boxes.
func (p Packing) Packed() []Placement {
	out := make([]Placement, 0, len(p.Placements))
	for _, pl := range p.Placements {
		if pl.Packed {
			out = append(out, pl)
		}
	}
	return out
}
