package renderer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/types"
)

// A colored line segment used for debug visualization.
type Line struct {
	From  types.Vec3
	To    types.Vec3
	Color types.Vec3
}

// Corner index pairs for the 12 edges of a box. Corner bits select the max
// coordinate on the x, y and z axis.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Generate the edges of every populated node box in the tree. Node i is drawn
// using the grey level i/count.
func BvhLines(tree bvh.Tree) []Line {
	count := tree.Len()
	lines := make([]Line, 0, count*len(boxEdges))
	for index, node := range tree.Nodes {
		if node.IsEmpty() {
			continue
		}

		grey := float32(index) / float32(count)
		lines = append(lines, BoxLines(node.BBox(), types.XYZ(grey, grey, grey))...)
	}
	return lines
}

// Generate the 12 edges of a box.
func BoxLines(box types.BBox, color types.Vec3) []Line {
	lines := make([]Line, len(boxEdges))
	for index, edge := range boxEdges {
		lines[index] = Line{From: boxCorner(box, edge[0]), To: boxCorner(box, edge[1]), Color: color}
	}
	return lines
}

func boxCorner(box types.BBox, bits int) types.Vec3 {
	corner := box.Min
	for axis := 0; axis < 3; axis++ {
		if bits&(1<<axis) != 0 {
			corner[axis] = box.Max[axis]
		}
	}
	return corner
}

// Generate a segment of the given length along each vertex normal. Zero
// normals are skipped.
func NormalLines(vertices, normals []types.Vec3, length float32) []Line {
	lines := make([]Line, 0, len(normals))
	for index, n := range normals {
		if index >= len(vertices) || n.LenSq() == 0 {
			continue
		}
		lines = append(lines, Line{
			From:  vertices[index],
			To:    vertices[index].Add(n.Mul(length)),
			Color: types.XYZ(0, 0, 1),
		})
	}
	return lines
}

// Generate debug lines for the BVH trees and normals of a compiled scene.
func SceneLines(sc *scene.Scene, normalLength float32) []Line {
	lines := BvhLines(sc.MeshBvh)
	lines = append(lines, BvhLines(sc.SphereBvh)...)
	return append(lines, MeshNormalLines(sc, normalLength)...)
}

// Generate world-space vertex normal segments for every mesh object. Mesh
// vertices and normals are stored in object space and are transformed using
// their owning mesh object.
func MeshNormalLines(sc *scene.Scene, length float32) []Line {
	var lines []Line
	for _, obj := range sc.MeshObjects {
		seen := make(map[int32]struct{})
		var vertices, normals []types.Vec3
		end := int(obj.IndexOffset + obj.IndexCount)
		for i := int(obj.IndexOffset); i < end && i < len(sc.Indices); i++ {
			vi := sc.Indices[i]
			if _, exists := seen[vi]; exists || int(vi) >= len(sc.Vertices) || int(vi) >= len(sc.Normals) {
				continue
			}
			seen[vi] = struct{}{}
			if sc.Normals[vi] == (types.Vec3{}) {
				continue
			}

			from := obj.LocalToWorld.MulPoint(sc.Vertices[vi])
			to := obj.LocalToWorld.MulPoint(sc.Vertices[vi].Add(sc.Normals[vi]))
			vertices = append(vertices, from)
			normals = append(normals, to.Sub(from).Normalize())
		}
		lines = append(lines, NormalLines(vertices, normals, length)...)
	}
	return lines
}

// Export lines as a Wavefront OBJ file. Vertex colors are written using the
// common "v x y z r g b" extension.
func WriteOBJ(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d debug lines\n", len(lines))
	for _, l := range lines {
		fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", l.From[0], l.From[1], l.From[2], l.Color[0], l.Color[1], l.Color[2])
		fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", l.To[0], l.To[1], l.To[2], l.Color[0], l.Color[1], l.Color[2])
	}
	for index := range lines {
		fmt.Fprintf(bw, "l %d %d\n", index*2+1, index*2+2)
	}
	return bw.Flush()
}
