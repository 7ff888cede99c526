package types

import "math"

// An axis-aligned bounding box. A box is considered empty when its min
// corner is greater than its max corner along any axis; the zero value
// is a degenerate (zero volume) box at the origin.
type BBox struct {
	Min Vec3
	Max Vec3
}

// Create an empty box that acts as the identity for Union.
func EmptyBBox() BBox {
	return BBox{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Create the tightest box enclosing a set of points. Passing no points
// yields an empty box.
func BBoxFromPoints(points ...Vec3) BBox {
	box := EmptyBBox()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}

// Returns true if the box does not enclose any point.
func (b BBox) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Grow the box so it encloses p.
func (b BBox) Extend(p Vec3) BBox {
	return BBox{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Get the union of two boxes.
func (b BBox) Union(b2 BBox) BBox {
	return BBox{Min: MinVec3(b.Min, b2.Min), Max: MaxVec3(b.Max, b2.Max)}
}

// Get box center.
func (b BBox) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get box side lengths.
func (b BBox) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get box volume. Empty boxes have zero volume.
func (b BBox) Volume() float32 {
	side := b.Size()
	return side[0] * side[1] * side[2]
}

// Get the radius of the sphere centered at the box center that
// encloses the box.
func (b BBox) Radius() float32 {
	return b.Size().Len() * 0.5
}

// Check whether b2 lies inside b. Every box contains an empty box.
func (b BBox) Contains(b2 BBox, epsilon float32) bool {
	if b2.IsEmpty() {
		return true
	}
	for axis := 0; axis < 3; axis++ {
		if b2.Min[axis] < b.Min[axis]-epsilon || b2.Max[axis] > b.Max[axis]+epsilon {
			return false
		}
	}
	return true
}

// Check whether two boxes overlap. Touching boxes are considered overlapping.
func (b BBox) Overlaps(b2 BBox) bool {
	if b.IsEmpty() || b2.IsEmpty() {
		return false
	}
	for axis := 0; axis < 3; axis++ {
		if b.Min[axis] > b2.Max[axis] || b2.Min[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Get the 8 box corners.
func (b BBox) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// Transform the box by m and return the axis-aligned box enclosing the
// transformed corners.
func (b BBox) Transform(m Mat4) BBox {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBBox()
	for _, c := range b.Corners() {
		out = out.Extend(m.MulPoint(c))
	}
	return out
}

// Check whether two boxes are equal within epsilon.
func (b BBox) ApproxEqual(b2 BBox, epsilon float32) bool {
	return b.Min.ApproxEqual(b2.Min, epsilon) && b.Max.ApproxEqual(b2.Max, epsilon)
}
