package scene

import (
	"fmt"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/types"
)

// Flattened geometry for all registered objects. Mesh vertices, normals
// and indices are stored in shared arrays; the indices of each mesh are
// rebased so they point directly into the shared vertex array.
type Geometry struct {
	Vertices []types.Vec3
	Normals  []types.Vec3
	Indices  []int32

	MeshObjects []MeshObject
	Spheres     []Sphere

	// Per-primitive bounds. Entries are parallel to MeshObjects and Spheres.
	MeshVolumes   []PrimitiveVolume
	SphereVolumes []PrimitiveVolume

	// Bounds enclosing all primitives of each type. If no primitives
	// of a type exist the corresponding box is degenerate.
	MeshBounds   types.BBox
	SphereBounds types.BBox

	// Names of the objects that were skipped.
	Skipped []string
}

// Get the mesh volumes as a list of bounded volumes.
func (g *Geometry) MeshItems() []bvh.BoundedVolume {
	return boundedVolumes(g.MeshVolumes)
}

// Get the sphere volumes as a list of bounded volumes.
func (g *Geometry) SphereItems() []bvh.BoundedVolume {
	return boundedVolumes(g.SphereVolumes)
}

// The Collector flattens registered objects into Geometry.
type Collector struct {
	logger log.Logger

	// Distance under which vertices are merged when averaging normals.
	WeldEpsilon float32
}

// Create a new collector.
func NewCollector() *Collector {
	return &Collector{
		logger:      log.New("collector"),
		WeldEpsilon: DefaultWeldEpsilon,
	}
}

// Collect geometry from all objects in the registry.
func (c *Collector) Collect(reg *Registry) *Geometry {
	return c.CollectObjects(reg.Objects())
}

// Collect geometry from a list of objects. Objects are processed in list
// order. Objects that cannot be rendered are skipped with a warning.
func (c *Collector) CollectObjects(objects []*Object) *Geometry {
	g := &Geometry{
		Vertices:    make([]types.Vec3, 0),
		Normals:     make([]types.Vec3, 0),
		Indices:     make([]int32, 0),
		MeshObjects: make([]MeshObject, 0),
		Spheres:     make([]Sphere, 0),
	}

	for _, obj := range objects {
		var err error
		switch obj.Type {
		case MeshType:
			err = c.addMesh(g, obj)
		case SphereType:
			err = c.addSphere(g, obj)
		default:
			err = fmt.Errorf("unsupported object type %d", obj.Type)
		}

		if err != nil {
			c.logger.Warningf("skipping object %q: %v", obj.Name, err)
			g.Skipped = append(g.Skipped, obj.Name)
		}
	}

	g.MeshBounds = GroupBounds(g.MeshVolumes)
	g.SphereBounds = GroupBounds(g.SphereVolumes)

	c.logger.Debugf(
		"collected %d mesh objects (%d vertices, %d triangles) and %d spheres",
		len(g.MeshObjects), len(g.Vertices), len(g.Indices)/3, len(g.Spheres),
	)
	return g
}

func (c *Collector) addMesh(g *Geometry, obj *Object) error {
	mesh := obj.Mesh
	if !mesh.Renderable() {
		return fmt.Errorf("no renderable mesh data")
	}

	indices := triangleIndices(mesh)
	for _, index := range indices {
		if !validIndex(index, mesh.Vertices) {
			return fmt.Errorf("vertex index %d out of range [0, %d)", index, len(mesh.Vertices))
		}
	}

	firstVertex := int32(len(g.Vertices))
	firstIndex := int32(len(g.Indices))

	g.Vertices = append(g.Vertices, mesh.Vertices...)
	g.Normals = append(g.Normals, ComputeNormals(mesh.Vertices, indices, c.WeldEpsilon)...)
	for _, index := range indices {
		g.Indices = append(g.Indices, index+firstVertex)
	}

	g.MeshObjects = append(g.MeshObjects, MeshObject{
		LocalToWorld: obj.Transform,
		IndexOffset:  firstIndex,
		IndexCount:   int32(len(indices)),
		Lighting:     obj.Lighting,
	})
	g.MeshVolumes = append(g.MeshVolumes, MeshVolume(mesh, obj.Transform))
	return nil
}

func (c *Collector) addSphere(g *Geometry, obj *Object) error {
	if obj.Radius < 0 {
		return fmt.Errorf("negative radius %f", obj.Radius)
	}

	sphere := Sphere{
		Position: obj.Position(),
		Radius:   obj.Radius,
		Lighting: obj.Lighting,
	}
	g.Spheres = append(g.Spheres, sphere)
	g.SphereVolumes = append(g.SphereVolumes, SphereVolume(sphere))
	return nil
}
