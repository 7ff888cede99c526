package scene

import (
	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/types"
)

// The world-space bounds and representative center of a single primitive.
// PrimitiveVolume implements bvh.BoundedVolume.
type PrimitiveVolume struct {
	Bounds   types.BBox
	Centroid types.Vec3
}

// Get primitive bounding box.
func (v PrimitiveVolume) BBox() types.BBox {
	return v.Bounds
}

// Get primitive center.
func (v PrimitiveVolume) Center() types.Vec3 {
	return v.Centroid
}

// Get the bounding volume of a sphere.
func SphereVolume(s Sphere) PrimitiveVolume {
	return PrimitiveVolume{
		Bounds:   SphereBounds(s.Position, s.Radius),
		Centroid: s.Position,
	}
}

// Get the bounding volume of a mesh placed in the world using transform.
func MeshVolume(mesh *MeshData, transform types.Mat4) PrimitiveVolume {
	return PrimitiveVolume{
		Bounds:   MeshBounds(mesh, transform),
		Centroid: MeshCenter(mesh, transform),
	}
}

// Get the box enclosing a sphere.
func SphereBounds(center types.Vec3, radius float32) types.BBox {
	r := types.XYZ(radius, radius, radius)
	return types.BBox{Min: center.Sub(r), Max: center.Add(r)}
}

// Get the world-space extents of the vertices referenced by the mesh
// triangles. Meshes without triangles yield an empty box.
func MeshBounds(mesh *MeshData, transform types.Mat4) types.BBox {
	box := types.EmptyBBox()
	if mesh == nil {
		return box
	}

	for _, index := range triangleIndices(mesh) {
		if index < 0 || int(index) >= len(mesh.Vertices) {
			continue
		}
		box = box.Extend(transform.MulPoint(mesh.Vertices[index]))
	}
	return box
}

// Get the world-space mean of the mesh triangle centroids. Meshes without
// triangles yield the transform origin.
func MeshCenter(mesh *MeshData, transform types.Mat4) types.Vec3 {
	if mesh == nil {
		return transform.Translation()
	}

	var sum types.Vec3
	triCount := 0
	indices := triangleIndices(mesh)
	for tri := 0; tri+2 < len(indices); tri += 3 {
		i0, i1, i2 := indices[tri], indices[tri+1], indices[tri+2]
		if !validIndex(i0, mesh.Vertices) || !validIndex(i1, mesh.Vertices) || !validIndex(i2, mesh.Vertices) {
			continue
		}
		centroid := mesh.Vertices[i0].Add(mesh.Vertices[i1]).Add(mesh.Vertices[i2]).Mul(1.0 / 3.0)
		sum = sum.Add(centroid)
		triCount++
	}

	if triCount == 0 {
		return transform.Translation()
	}
	return transform.MulPoint(sum.Mul(1.0 / float32(triCount)))
}

// Calculate the combined bounds of a set of primitive volumes. An empty set
// yields a degenerate zero-volume box.
func GroupBounds(volumes []PrimitiveVolume) types.BBox {
	return bvh.ComputeBounds(boundedVolumes(volumes))
}

// Calculate the representative center of a set of primitive volumes.
func GroupCenter(volumes []PrimitiveVolume) types.Vec3 {
	return bvh.ComputeCenter(boundedVolumes(volumes))
}

func boundedVolumes(volumes []PrimitiveVolume) []bvh.BoundedVolume {
	out := make([]bvh.BoundedVolume, len(volumes))
	for index, v := range volumes {
		out[index] = v
	}
	return out
}

// Get the mesh indices that form complete triangles.
func triangleIndices(mesh *MeshData) []int32 {
	return mesh.Indices[:len(mesh.Indices)/3*3]
}

func validIndex(index int32, vertices []types.Vec3) bool {
	return index >= 0 && int(index) < len(vertices)
}
