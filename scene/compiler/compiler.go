package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/bvh"
)

// The Compiler flattens the registered scene objects and builds the mesh
// and sphere BVH trees.
type Compiler struct {
	logger    log.Logger
	collector *scene.Collector

	// The BVH build strategy.
	Strategy bvh.Strategy

	// Validate the generated trees after building them.
	Verify bool

	// Build stats for the last compiled scene.
	MeshStats   bvh.Stats
	SphereStats bvh.Stats
}

// Create a new compiler using the given BVH build strategy.
func New(strategy bvh.Strategy) *Compiler {
	return &Compiler{
		logger:    log.New("scene compiler"),
		collector: scene.NewCollector(),
		Strategy:  strategy,
	}
}

// Set the distance under which vertices are merged when averaging normals.
func (sc *Compiler) SetWeldEpsilon(epsilon float32) {
	sc.collector.WeldEpsilon = epsilon
}

// Compile the objects of a registry. Compile does not modify the registry
// dirty flag.
func (sc *Compiler) Compile(reg *scene.Registry) (*scene.Scene, error) {
	return sc.CompileObjects(reg.Objects())
}

// Compile a list of objects into a scene.
func (sc *Compiler) CompileObjects(objects []*scene.Object) (*scene.Scene, error) {
	start := time.Now()
	sc.logger.Infof("compiling scene with %d objects", len(objects))

	geometry := sc.collector.CollectObjects(objects)
	out := &scene.Scene{
		Vertices:     geometry.Vertices,
		Normals:      geometry.Normals,
		Indices:      geometry.Indices,
		MeshObjects:  geometry.MeshObjects,
		Spheres:      geometry.Spheres,
		MeshBounds:   geometry.MeshBounds,
		SphereBounds: geometry.SphereBounds,
	}

	if err := sc.partition(out, geometry); err != nil {
		return nil, err
	}

	sc.logger.Infof("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return out, nil
}

// Build a BVH for each primitive type. Primitive types without any
// registered objects get an empty tree.
func (sc *Compiler) partition(out *scene.Scene, geometry *scene.Geometry) error {
	meshItems := geometry.MeshItems()
	sphereItems := geometry.SphereItems()

	sc.logger.Debugf("building mesh BVH (%d meshes, strategy: %s)", len(meshItems), sc.Strategy)
	out.MeshBvh, sc.MeshStats = bvh.BuildWithStats(meshItems, sc.Strategy)

	sc.logger.Debugf("building sphere BVH (%d spheres, strategy: %s)", len(sphereItems), sc.Strategy)
	out.SphereBvh, sc.SphereStats = bvh.BuildWithStats(sphereItems, sc.Strategy)

	if !sc.Verify {
		return nil
	}

	if err := bvh.Validate(out.MeshBvh, meshItems); err != nil {
		return fmt.Errorf("compiler: mesh BVH: %w", err)
	}
	if err := bvh.Validate(out.SphereBvh, sphereItems); err != nil {
		return fmt.Errorf("compiler: sphere BVH: %w", err)
	}
	return nil
}

// Compile the objects of a registry using the given strategy.
func Compile(reg *scene.Registry, strategy bvh.Strategy) (*scene.Scene, error) {
	return New(strategy).Compile(reg)
}
