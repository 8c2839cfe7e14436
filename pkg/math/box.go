package math

import "math"

// Box is an axis-aligned bounding box. The zero value is not empty; use
// EmptyBox to start an accumulation.
type Box struct {
	Min, Max Vec3
}

// EmptyBox returns a box that any point extends.
func EmptyBox() Box {
	inf := float32(math.Inf(1))
	return Box{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// BoxOf returns the smallest box containing points. It is empty when there
// are none.
func BoxOf(points [][3]float32) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.Extend(V3(p))
	}
	return b
}

// Extend returns the box grown to contain p.
func (b Box) Extend(p Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// IsEmpty reports whether the box contains no point.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Size returns the extent along each axis.
func (b Box) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}
