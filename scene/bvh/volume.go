package bvh

import "github.com/achilleasa/prism/types"

// Calculate the representative center of a group of primitives as the
// arithmetic mean of their centers. An empty group yields the origin.
func ComputeCenter(items []BoundedVolume) types.Vec3 {
	if len(items) == 0 {
		return types.Vec3{}
	}

	var sum types.Vec3
	for _, item := range items {
		sum = sum.Add(item.Center())
	}
	return sum.Mul(1.0 / float32(len(items)))
}

// Calculate the union of the bounding boxes of a group of primitives. An
// empty group yields a degenerate zero-volume box at the origin.
func ComputeBounds(items []BoundedVolume) types.BBox {
	if len(items) == 0 {
		return types.BBox{}
	}

	box := types.EmptyBBox()
	for _, item := range items {
		box = box.Union(item.BBox())
	}
	return box
}

// Calculate the union of the bounding boxes of a subset of items.
func boundsOf(items []BoundedVolume, subset []int) types.BBox {
	box := types.EmptyBBox()
	for _, index := range subset {
		box = box.Union(items[index].BBox())
	}
	return box
}

// Calculate the mean center of a subset of items.
func centerOf(items []BoundedVolume, subset []int) types.Vec3 {
	var sum types.Vec3
	for _, index := range subset {
		sum = sum.Add(items[index].Center())
	}
	return sum.Mul(1.0 / float32(len(subset)))
}
