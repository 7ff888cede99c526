package scene

import "github.com/achilleasa/prism/types"

// Record sizes in bytes. These must match the struct layouts declared by
// the compute kernel.
const (
	SizeofLightingParams = 40  // 3 x float3 + float
	SizeofMeshObject     = 112 // float4x4 + 2 x int + LightingParams
	SizeofSphere         = 56  // float3 + float + LightingParams
	SizeofVec3           = 12
	SizeofIndex          = 4
)

// Surface lighting parameters shared by all primitive types.
type LightingParams struct {
	Albedo     types.Vec3
	Specular   types.Vec3
	Emission   types.Vec3
	Smoothness float32
}

// Default lighting parameters for newly created objects.
func DefaultLighting() LightingParams {
	return LightingParams{
		Albedo:     types.XYZ(0.0, 0.4, 1.0),
		Specular:   types.XYZ(0.7, 0.0, 1.0),
		Emission:   types.XYZ(0.0, 0.0, 0.0),
		Smoothness: 0.69,
	}
}

// A sphere primitive as seen by the compute kernel.
type Sphere struct {
	Position types.Vec3
	Radius   float32
	Lighting LightingParams
}

// A mesh primitive as seen by the compute kernel. Its triangles are the
// IndexCount entries of the shared index buffer that start at IndexOffset.
// Indices already point into the shared vertex buffer.
type MeshObject struct {
	LocalToWorld types.Mat4
	IndexOffset  int32
	IndexCount   int32
	Lighting     LightingParams
}

type ObjectType uint8

const (
	MeshType ObjectType = iota
	SphereType
)

func (t ObjectType) String() string {
	switch t {
	case MeshType:
		return "mesh"
	case SphereType:
		return "sphere"
	}
	return "unknown"
}

// Mesh geometry in object space. Every 3 consecutive indices define a
// triangle.
type MeshData struct {
	Vertices []types.Vec3
	Indices  []int32
}

// Returns true if the mesh defines at least one triangle.
func (md *MeshData) Renderable() bool {
	return md != nil && len(md.Vertices) != 0 && len(md.Indices) >= 3
}

// An object that can be registered for ray tracing.
type Object struct {
	Name string
	Type ObjectType

	// Object to world transformation. For spheres only the translation
	// component is used.
	Transform types.Mat4

	// Mesh geometry; only used by mesh objects.
	Mesh *MeshData

	// World-space sphere radius; only used by sphere objects.
	Radius float32

	Lighting LightingParams
}

// Create a mesh object.
func NewMeshObject(name string, mesh *MeshData, transform types.Mat4, lighting LightingParams) *Object {
	return &Object{
		Name:      name,
		Type:      MeshType,
		Transform: transform,
		Mesh:      mesh,
		Lighting:  lighting,
	}
}

// Create a sphere object centered at position.
func NewSphereObject(name string, position types.Vec3, radius float32, lighting LightingParams) *Object {
	transform := types.Ident4()
	transform[12], transform[13], transform[14] = position[0], position[1], position[2]
	return &Object{
		Name:      name,
		Type:      SphereType,
		Transform: transform,
		Radius:    radius,
		Lighting:  lighting,
	}
}

// Create a sphere object from a transform and an object-space radius. The
// world radius is scaled by the largest scale factor of the transform.
func NewScaledSphereObject(name string, transform types.Mat4, localRadius float32, lighting LightingParams) *Object {
	return &Object{
		Name:      name,
		Type:      SphereType,
		Transform: transform,
		Radius:    localRadius * transform.MaxScale(),
		Lighting:  lighting,
	}
}

// Get the world-space object position.
func (o *Object) Position() types.Vec3 {
	return o.Transform.Translation()
}
