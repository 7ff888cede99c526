package scene

import (
	"math"

	"github.com/achilleasa/prism/types"
)

// Default distance under which two vertices are treated as the same point
// when averaging normals.
const DefaultWeldEpsilon float32 = 1e-5

// Calculate a normal for each vertex by summing the (non-normalized) face
// normals of every triangle that references a vertex at the same position
// and normalizing the result. Vertices closer than epsilon are treated as
// the same position; a non-positive epsilon only merges exact duplicates.
//
// Vertices that are not referenced by any triangle, or whose summed normal
// has zero length, get a zero normal. Triangles with out of range indices
// are ignored.
func ComputeNormals(vertices []types.Vec3, indices []int32, epsilon float32) []types.Vec3 {
	normals := make([]types.Vec3, len(vertices))
	if len(vertices) == 0 {
		return normals
	}

	groups, groupCount := weldVertices(vertices, epsilon)
	sums := make([]types.Vec3, groupCount)

	for tri := 0; tri+2 < len(indices); tri += 3 {
		i0, i1, i2 := indices[tri], indices[tri+1], indices[tri+2]
		if !validIndex(i0, vertices) || !validIndex(i1, vertices) || !validIndex(i2, vertices) {
			continue
		}

		v0 := vertices[i0]
		faceNormal := vertices[i1].Sub(v0).Cross(vertices[i2].Sub(v0))

		// A triangle contributes once to each distinct position it touches.
		g0, g1, g2 := groups[i0], groups[i1], groups[i2]
		sums[g0] = sums[g0].Add(faceNormal)
		if g1 != g0 {
			sums[g1] = sums[g1].Add(faceNormal)
		}
		if g2 != g0 && g2 != g1 {
			sums[g2] = sums[g2].Add(faceNormal)
		}
	}

	for index := range normals {
		normals[index] = sums[groups[index]].Normalize()
	}
	return normals
}

type cellKey [3]int64

// Assign each vertex to a position group. Vertices within epsilon of an
// earlier vertex join that vertex's group. Returns the group of each vertex
// and the number of groups.
func weldVertices(vertices []types.Vec3, epsilon float32) ([]int, int) {
	groups := make([]int, len(vertices))

	if epsilon <= 0 {
		exact := make(map[types.Vec3]int, len(vertices))
		for index, v := range vertices {
			group, exists := exact[v]
			if !exists {
				group = len(exact)
				exact[v] = group
			}
			groups[index] = group
		}
		return groups, len(exact)
	}

	// Bucket vertices into a grid with epsilon sized cells so each lookup
	// only needs to scan the neighboring cells.
	cellOf := func(v types.Vec3) cellKey {
		return cellKey{
			int64(math.Floor(float64(v[0] / epsilon))),
			int64(math.Floor(float64(v[1] / epsilon))),
			int64(math.Floor(float64(v[2] / epsilon))),
		}
	}

	grid := make(map[cellKey][]int, len(vertices))
	epsilonSq := epsilon * epsilon
	groupCount := 0
	for index, v := range vertices {
		cell := cellOf(v)
		group := -1

	search:
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, other := range grid[cellKey{cell[0] + dx, cell[1] + dy, cell[2] + dz}] {
						if vertices[other].DistSq(v) <= epsilonSq {
							group = groups[other]
							break search
						}
					}
				}
			}
		}

		if group < 0 {
			group = groupCount
			groupCount++
		}
		groups[index] = group
		grid[cell] = append(grid[cell], index)
	}

	return groups, groupCount
}
