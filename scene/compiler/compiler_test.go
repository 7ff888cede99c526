package compiler

import (
	"strings"
	"testing"

	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/types"
)

func cubeMesh() *scene.MeshData {
	return &scene.MeshData{
		Vertices: []types.Vec3{
			{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
			{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
		},
		Indices: []int32{
			0, 2, 1, 0, 3, 2,
			4, 5, 6, 4, 6, 7,
			0, 1, 5, 0, 5, 4,
			3, 7, 6, 3, 6, 2,
			0, 4, 7, 0, 7, 3,
			1, 2, 6, 1, 6, 5,
		},
	}
}

func TestCompileEmptyRegistry(t *testing.T) {
	for _, strategy := range []bvh.Strategy{bvh.BottomUp, bvh.TopDown} {
		sc, err := Compile(scene.NewRegistry(), strategy)
		if err != nil {
			t.Fatal(err)
		}
		if !sc.Empty() {
			t.Fatal("expected compiled scene to be empty")
		}
		if sc.MeshBvh.Len() != 0 || sc.MeshBvh.Depth != 0 || sc.SphereBvh.Len() != 0 || sc.SphereBvh.Depth != 0 {
			t.Fatalf("[%s] expected empty trees with depth 0; got mesh %d/%d, sphere %d/%d", strategy, sc.MeshBvh.Len(), sc.MeshBvh.Depth, sc.SphereBvh.Len(), sc.SphereBvh.Depth)
		}
		if sc.SizeInBytes() != 0 {
			t.Fatalf("expected empty scene to use 0 bytes; got %d", sc.SizeInBytes())
		}
	}
}

func TestCompileTwoSpheres(t *testing.T) {
	reg := scene.NewRegistry()
	reg.Register(scene.NewSphereObject("A", types.XYZ(0, 0, 0), 1, scene.DefaultLighting()))
	reg.Register(scene.NewSphereObject("B", types.XYZ(10, 0, 0), 1, scene.DefaultLighting()))

	sc, err := Compile(reg, bvh.BottomUp)
	if err != nil {
		t.Fatal(err)
	}

	if sc.SphereBvh.Depth != 2 {
		t.Fatalf("expected sphere BVH depth 2; got %d", sc.SphereBvh.Depth)
	}
	root := sc.SphereBvh.Nodes[0]
	if root.Min != types.XYZ(-1, -1, -1) || root.Max != types.XYZ(11, 1, 1) {
		t.Fatalf("expected root box (-1,-1,-1) - (11,1,1); got %v - %v", root.Min, root.Max)
	}
	if sc.MeshBvh.Len() != 0 {
		t.Fatalf("expected empty mesh BVH; got %d nodes", sc.MeshBvh.Len())
	}
}

func TestCompileMixedScene(t *testing.T) {
	reg := scene.NewRegistry()
	for index := 0; index < 5; index++ {
		pos := types.XYZ(float32(index)*3, 0, 0)
		reg.Register(scene.NewMeshObject("cube", cubeMesh(), types.TRS(pos, types.XYZ(0, float32(index)*15, 0), types.XYZ(1, 1, 1)), scene.DefaultLighting()))
		reg.Register(scene.NewSphereObject("sphere", pos.Add(types.XYZ(0, 3, 0)), 0.5, scene.DefaultLighting()))
	}

	for _, strategy := range []bvh.Strategy{bvh.BottomUp, bvh.TopDown} {
		compiler := New(strategy)
		compiler.Verify = true

		sc, err := compiler.Compile(reg)
		if err != nil {
			t.Fatalf("[%s] %v", strategy, err)
		}

		if len(sc.MeshObjects) != 5 || len(sc.Spheres) != 5 {
			t.Fatalf("[%s] expected 5 meshes and 5 spheres; got %d and %d", strategy, len(sc.MeshObjects), len(sc.Spheres))
		}
		if len(sc.Vertices) != 40 || len(sc.Indices) != 180 {
			t.Fatalf("[%s] expected 40 vertices and 180 indices; got %d and %d", strategy, len(sc.Vertices), len(sc.Indices))
		}
		if compiler.MeshStats.Items != 5 || compiler.SphereStats.Items != 5 {
			t.Fatalf("[%s] expected stats for 5 items per tree", strategy)
		}
		if !bvh.RootEnclosesLeaves(sc.MeshBvh) || !bvh.RootEnclosesLeaves(sc.SphereBvh) {
			t.Fatalf("[%s] expected root boxes to enclose all leaves", strategy)
		}
		if !sc.MeshBvh.BBox().Contains(sc.MeshBounds, 1e-4) {
			t.Fatalf("[%s] expected mesh BVH root %v to enclose mesh bounds %v", strategy, sc.MeshBvh.BBox(), sc.MeshBounds)
		}

		stats := sc.Stats()
		if !strings.Contains(stats, "Sphere BVH") || !strings.Contains(stats, "Total") {
			t.Fatalf("[%s] expected stats table to list BVH sizes; got\n%s", strategy, stats)
		}
	}
}

func TestCompileIdempotent(t *testing.T) {
	reg := scene.NewRegistry()
	for index := 0; index < 9; index++ {
		reg.Register(scene.NewSphereObject("s", types.XYZ(float32(index%3)*4, float32(index/3)*4, float32(index%2)), 1, scene.DefaultLighting()))
	}

	first, err := Compile(reg, bvh.BottomUp)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Compile(reg, bvh.BottomUp)
	if err != nil {
		t.Fatal(err)
	}

	if !bvh.Equivalent(first.SphereBvh, second.SphereBvh, 1e-4) {
		t.Fatal("expected compiling an unchanged registry twice to yield equivalent trees")
	}
}
