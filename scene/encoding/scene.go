package encoding

import (
	"fmt"

	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/types"
)

// Scene buffer names. The order of BufferNames matches the kernel binding
// slots.
const (
	SpheresBuffer     = "spheres"
	MeshObjectsBuffer = "meshObjects"
	VerticesBuffer    = "vertices"
	IndicesBuffer     = "indices"
	NormalsBuffer     = "normals"
	MeshBvhBuffer     = "meshBvh"
	SphereBvhBuffer   = "sphereBvh"
)

var BufferNames = []string{
	SpheresBuffer,
	MeshObjectsBuffer,
	VerticesBuffer,
	IndicesBuffer,
	NormalsBuffer,
	MeshBvhBuffer,
	SphereBvhBuffer,
}

// An encoded array of fixed-stride records.
type Record struct {
	Name   string
	Data   []byte
	Count  int
	Stride int
}

// Returns true if the record holds no data.
func (r Record) Empty() bool {
	return r.Count == 0
}

// Get the binding slot of a named buffer or -1 if the name is unknown.
func Binding(name string) int {
	for index, n := range BufferNames {
		if n == name {
			return index
		}
	}
	return -1
}

// Encode all scene arrays. The returned records follow the BufferNames
// order; empty arrays yield records with a zero count and nil data.
func EncodeScene(sc *scene.Scene) []Record {
	return []Record{
		{SpheresBuffer, EncodeSpheres(sc.Spheres), len(sc.Spheres), SizeofSphere},
		{MeshObjectsBuffer, EncodeMeshObjects(sc.MeshObjects), len(sc.MeshObjects), SizeofMeshObject},
		{VerticesBuffer, EncodeVec3s(sc.Vertices), len(sc.Vertices), SizeofVec3},
		{IndicesBuffer, EncodeIndices(sc.Indices), len(sc.Indices), SizeofIndex},
		{NormalsBuffer, EncodeVec3s(sc.Normals), len(sc.Normals), SizeofVec3},
		{MeshBvhBuffer, EncodeNodes(sc.MeshBvh.Nodes), sc.MeshBvh.Len(), SizeofNode},
		{SphereBvhBuffer, EncodeNodes(sc.SphereBvh.Nodes), sc.SphereBvh.Len(), SizeofNode},
	}
}

// Decode a scene from a set of records. Missing records are treated as
// empty arrays. Group bounds are recovered from the BVH root nodes.
func DecodeScene(records []Record) (*scene.Scene, error) {
	byName := make(map[string]Record, len(records))
	for _, rec := range records {
		if Binding(rec.Name) < 0 {
			return nil, fmt.Errorf("encoding: unknown scene buffer %q", rec.Name)
		}
		if rec.Count*rec.Stride != len(rec.Data) {
			return nil, fmt.Errorf("%w: buffer %q has %d bytes; expected %d x %d", ErrStride, rec.Name, len(rec.Data), rec.Count, rec.Stride)
		}
		byName[rec.Name] = rec
	}

	sc := &scene.Scene{}
	var err error
	if sc.Spheres, err = DecodeSpheres(byName[SpheresBuffer].Data); err != nil {
		return nil, err
	}
	if sc.MeshObjects, err = DecodeMeshObjects(byName[MeshObjectsBuffer].Data); err != nil {
		return nil, err
	}
	if sc.Vertices, err = DecodeVec3s(byName[VerticesBuffer].Data); err != nil {
		return nil, err
	}
	if sc.Indices, err = DecodeIndices(byName[IndicesBuffer].Data); err != nil {
		return nil, err
	}
	if sc.Normals, err = DecodeVec3s(byName[NormalsBuffer].Data); err != nil {
		return nil, err
	}

	meshNodes, err := DecodeNodes(byName[MeshBvhBuffer].Data)
	if err != nil {
		return nil, err
	}
	sphereNodes, err := DecodeNodes(byName[SphereBvhBuffer].Data)
	if err != nil {
		return nil, err
	}
	sc.MeshBvh = bvh.FromNodes(meshNodes)
	sc.SphereBvh = bvh.FromNodes(sphereNodes)
	sc.MeshBounds = rootBounds(sc.MeshBvh)
	sc.SphereBounds = rootBounds(sc.SphereBvh)

	return sc, nil
}

func rootBounds(tree bvh.Tree) types.BBox {
	if tree.Len() == 0 {
		return types.BBox{}
	}
	return tree.BBox()
}
