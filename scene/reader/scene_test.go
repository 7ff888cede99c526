package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/types"
)

const testScene = `{
	"camera": {"position": [0, 2, 10], "lookAt": [0, 0, 0], "fov": 45},
	"objects": [
		{
			"name": "floor",
			"type": "mesh",
			"position": [0, -1, 0],
			"scale": [10, 1, 10],
			"mesh": {
				"vertices": [[-1, 0, -1], [-1, 0, 1], [1, 0, 1], [1, 0, -1]],
				"indices": [0, 1, 2, 0, 2, 3]
			}
		},
		{
			"name": "cube-a",
			"type": "mesh",
			"position": [-2, 0, 0],
			"meshFile": "meshes/tri.json",
			"material": {"emission": [1, 1, 1]}
		},
		{
			"name": "cube-b",
			"type": "mesh",
			"position": [2, 0, 0],
			"meshFile": "meshes/tri.json"
		},
		{
			"name": "ball",
			"type": "sphere",
			"position": [0, 1, 0],
			"scale": [2, 1, 1],
			"radius": 0.5,
			"material": {"smoothness": 0.1}
		},
		{
			"name": "hidden",
			"type": "sphere",
			"radius": 1,
			"disabled": true
		}
	]
}`

const testMesh = `{
	"vertices": [[0, 0, 0], [1, 0, 0], [0, 1, 0]],
	"indices": [0, 1, 2]
}`

func writeScene(t *testing.T, sceneData string) string {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "meshes"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meshes", "tri.json"), []byte(testMesh), 0644); err != nil {
		t.Fatal(err)
	}
	sceneFile := filepath.Join(dir, "scene.json")
	if err := os.WriteFile(sceneFile, []byte(sceneData), 0644); err != nil {
		t.Fatal(err)
	}
	return sceneFile
}

func TestReadScene(t *testing.T) {
	desc, err := ReadScene(writeScene(t, testScene))
	if err != nil {
		t.Fatal(err)
	}

	objects := desc.Registry.Objects()
	if len(objects) != 4 {
		t.Fatalf("expected 4 registered objects; got %d", len(objects))
	}
	if !desc.Registry.Dirty() {
		t.Fatal("expected registry to be dirty after loading")
	}

	floor := objects[0]
	if floor.Type != scene.MeshType || len(floor.Mesh.Vertices) != 4 {
		t.Fatalf("expected floor to be a mesh with 4 vertices; got %s with %v", floor.Type, floor.Mesh)
	}
	if got := floor.Transform.MulPoint(types.XYZ(1, 0, 1)); !got.ApproxEqual(types.XYZ(10, -1, 10), 1e-5) {
		t.Fatalf("expected floor corner at (10, -1, 10); got %v", got)
	}

	if objects[1].Mesh != objects[2].Mesh {
		t.Fatal("expected objects loading the same mesh file to share mesh data")
	}
	if objects[1].Lighting.Emission != types.XYZ(1, 1, 1) {
		t.Fatalf("expected emission override; got %v", objects[1].Lighting.Emission)
	}
	if objects[1].Lighting.Albedo != scene.DefaultLighting().Albedo {
		t.Fatalf("expected default albedo; got %v", objects[1].Lighting.Albedo)
	}

	ball := objects[3]
	if ball.Type != scene.SphereType || !types.ApproxEqual(ball.Radius, 1, 1e-6) {
		t.Fatalf("expected sphere with scaled radius 1; got %s with radius %f", ball.Type, ball.Radius)
	}
	if ball.Lighting.Smoothness != 0.1 {
		t.Fatalf("expected smoothness 0.1; got %f", ball.Lighting.Smoothness)
	}

	if desc.Camera.FOV != 45 || desc.Camera.Position != types.XYZ(0, 2, 10) {
		t.Fatalf("expected camera settings to be applied; got fov %f at %v", desc.Camera.FOV, desc.Camera.Position)
	}
}

func TestReadSceneErrors(t *testing.T) {
	specs := []struct {
		name  string
		data  string
		expIs error
	}{
		{"unknown type", `{"objects": [{"name": "x", "type": "cone"}]}`, ErrUnknownObjectType},
		{"bad radius", `{"objects": [{"name": "x", "type": "sphere", "radius": -1}]}`, nil},
		{"missing mesh", `{"objects": [{"name": "x", "type": "mesh"}]}`, nil},
		{"missing mesh file", `{"objects": [{"name": "x", "type": "mesh", "meshFile": "nope.json"}]}`, nil},
		{"bad json", `{"objects": [`, nil},
	}

	for _, spec := range specs {
		_, err := ReadScene(writeScene(t, spec.data))
		if err == nil {
			t.Fatalf("[%s] expected an error", spec.name)
		}
		if spec.expIs != nil && !errors.Is(err, spec.expIs) {
			t.Fatalf("[%s] expected error to wrap %v; got %v", spec.name, spec.expIs, err)
		}
	}
}
