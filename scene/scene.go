package scene

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/types"
	"github.com/olekukonko/tablewriter"
)

// A compiled scene ready for uploading to the compute kernel. Mesh and
// sphere BVH leaves reference entries in MeshObjects and Spheres.
type Scene struct {
	Vertices []types.Vec3
	Normals  []types.Vec3
	Indices  []int32

	MeshObjects []MeshObject
	Spheres     []Sphere

	MeshBvh   bvh.Tree
	SphereBvh bvh.Tree

	MeshBounds   types.BBox
	SphereBounds types.BBox
}

// Returns true if the scene contains no primitives.
func (sc *Scene) Empty() bool {
	return len(sc.MeshObjects) == 0 && len(sc.Spheres) == 0
}

// Get the encoded size of the scene buffers in bytes.
func (sc *Scene) SizeInBytes() int {
	return sc.geometrySize() + sc.primitiveSize() + sc.bvhSize()
}

func (sc *Scene) geometrySize() int {
	return (len(sc.Vertices)+len(sc.Normals))*SizeofVec3 + len(sc.Indices)*SizeofIndex
}

func (sc *Scene) primitiveSize() int {
	return len(sc.MeshObjects)*SizeofMeshObject + len(sc.Spheres)*SizeofSphere
}

func (sc *Scene) bvhSize() int {
	return (sc.MeshBvh.Len() + sc.SphereBvh.Len()) * bvh.SizeofNode
}

// Generate a table with scene buffer statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", "", fmtSize(sc.geometrySize())})
	table.Append([]string{"", "Vertices", fmt.Sprint(len(sc.Vertices)), fmtSize(len(sc.Vertices) * SizeofVec3)})
	table.Append([]string{"", "Normals", fmt.Sprint(len(sc.Normals)), fmtSize(len(sc.Normals) * SizeofVec3)})
	table.Append([]string{"", "Indices", fmt.Sprint(len(sc.Indices)), fmtSize(len(sc.Indices) * SizeofIndex)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Primitives", "---", "", fmtSize(sc.primitiveSize())})
	table.Append([]string{"", "Mesh objects", fmt.Sprint(len(sc.MeshObjects)), fmtSize(len(sc.MeshObjects) * SizeofMeshObject)})
	table.Append([]string{"", "Spheres", fmt.Sprint(len(sc.Spheres)), fmtSize(len(sc.Spheres) * SizeofSphere)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"BVH", "---", "", fmtSize(sc.bvhSize())})
	table.Append([]string{"", fmt.Sprintf("Mesh BVH (depth %d)", sc.MeshBvh.Depth), fmt.Sprint(sc.MeshBvh.Len()), fmtSize(sc.MeshBvh.Len() * bvh.SizeofNode)})
	table.Append([]string{"", fmt.Sprintf("Sphere BVH (depth %d)", sc.SphereBvh.Depth), fmt.Sprint(sc.SphereBvh.Len()), fmtSize(sc.SphereBvh.Len() * bvh.SizeofNode)})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.SizeInBytes()), " ")})

	table.Render()
	return buf.String()
}

// Format a byte count using the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float32(totalBytes)/1e6)
}
