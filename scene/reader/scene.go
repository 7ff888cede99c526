package reader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/types"
)

var ErrUnknownObjectType = errors.New("reader: unknown object type")

type cameraCfg struct {
	Position types.Vec3  `json:"position"`
	LookAt   types.Vec3  `json:"lookAt"`
	Up       *types.Vec3 `json:"up,omitempty"`
	FOV      float32     `json:"fov,omitempty"`
	Near     float32     `json:"near,omitempty"`
	Far      float32     `json:"far,omitempty"`
}

// Material overrides. Omitted fields keep their default value.
type materialCfg struct {
	Albedo     *types.Vec3 `json:"albedo,omitempty"`
	Specular   *types.Vec3 `json:"specular,omitempty"`
	Emission   *types.Vec3 `json:"emission,omitempty"`
	Smoothness *float32    `json:"smoothness,omitempty"`
}

type meshCfg struct {
	Vertices []types.Vec3 `json:"vertices"`
	Indices  []int32      `json:"indices"`
}

type objectCfg struct {
	Name string `json:"name"`
	Type string `json:"type"`

	// Transformation; rotation is specified as euler angles in degrees.
	Position types.Vec3  `json:"position"`
	Rotation types.Vec3  `json:"rotation,omitempty"`
	Scale    *types.Vec3 `json:"scale,omitempty"`

	// Sphere radius in object space.
	Radius float32 `json:"radius,omitempty"`

	// Inline mesh data or a path to a JSON file containing mesh data
	// relative to the scene file.
	Mesh     *meshCfg `json:"mesh,omitempty"`
	MeshFile string   `json:"meshFile,omitempty"`

	Material *materialCfg `json:"material,omitempty"`

	// Skip registering this object.
	Disabled bool `json:"disabled,omitempty"`
}

type sceneCfg struct {
	Camera  *cameraCfg  `json:"camera,omitempty"`
	Objects []objectCfg `json:"objects"`
}

// A scene loaded from a scene description file.
type Description struct {
	Registry *scene.Registry
	Camera   *scene.Camera
}

type jsonSceneReader struct {
	logger log.Logger

	// Mesh files are cached so instances share their geometry.
	meshCache map[string]*scene.MeshData
}

// Read a JSON scene description from a local file or http/https URL and
// register its objects with a new registry.
func ReadScene(pathToScene string) (*Description, error) {
	r := &jsonSceneReader{
		logger:    log.New("scene reader"),
		meshCache: make(map[string]*scene.MeshData),
	}
	return r.Read(pathToScene)
}

// Read scene description.
func (r *jsonSceneReader) Read(pathToScene string) (*Description, error) {
	start := time.Now()
	r.logger.Noticef("parsing scene from %s", pathToScene)

	res, err := newResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var cfg sceneCfg
	if err = json.NewDecoder(res).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("reader: could not parse %s: %w", res.Path(), err)
	}

	desc := &Description{
		Registry: scene.NewRegistry(),
		Camera:   r.camera(cfg.Camera),
	}

	for index, objCfg := range cfg.Objects {
		if objCfg.Disabled {
			r.logger.Infof("skipping disabled object %q", objCfg.Name)
			continue
		}

		obj, err := r.object(objCfg, res)
		if err != nil {
			return nil, fmt.Errorf("reader: object %d (%q): %w", index, objCfg.Name, err)
		}
		desc.Registry.Register(obj)
	}

	r.logger.Noticef("parsed scene with %d objects in %d ms", desc.Registry.Len(), time.Since(start).Nanoseconds()/1e6)
	return desc, nil
}

func (r *jsonSceneReader) camera(cfg *cameraCfg) *scene.Camera {
	camera := scene.NewCamera(60)
	if cfg == nil {
		camera.Update()
		return camera
	}

	camera.Position = cfg.Position
	camera.LookAt = cfg.LookAt
	if cfg.Up != nil {
		camera.Up = *cfg.Up
	}
	if cfg.FOV > 0 {
		camera.FOV = cfg.FOV
	}
	if cfg.Near > 0 {
		camera.Near = cfg.Near
	}
	if cfg.Far > 0 {
		camera.Far = cfg.Far
	}
	camera.Update()
	return camera
}

func (r *jsonSceneReader) object(cfg objectCfg, relTo *resource) (*scene.Object, error) {
	scale := types.XYZ(1, 1, 1)
	if cfg.Scale != nil {
		scale = *cfg.Scale
	}
	transform := types.TRS(cfg.Position, cfg.Rotation, scale)
	lighting := material(cfg.Material)

	switch strings.ToLower(cfg.Type) {
	case "sphere":
		if cfg.Radius <= 0 {
			return nil, fmt.Errorf("sphere radius must be positive; got %f", cfg.Radius)
		}
		return scene.NewScaledSphereObject(cfg.Name, transform, cfg.Radius, lighting), nil
	case "mesh":
		mesh, err := r.mesh(cfg, relTo)
		if err != nil {
			return nil, err
		}
		return scene.NewMeshObject(cfg.Name, mesh, transform, lighting), nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownObjectType, cfg.Type)
}

func (r *jsonSceneReader) mesh(cfg objectCfg, relTo *resource) (*scene.MeshData, error) {
	if cfg.Mesh != nil {
		return &scene.MeshData{Vertices: cfg.Mesh.Vertices, Indices: cfg.Mesh.Indices}, nil
	}
	if cfg.MeshFile == "" {
		return nil, fmt.Errorf("mesh objects require either inline mesh data or a mesh file")
	}

	res, err := newResource(cfg.MeshFile, relTo)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	if mesh, exists := r.meshCache[res.Path()]; exists {
		return mesh, nil
	}

	var meshData meshCfg
	if err = json.NewDecoder(res).Decode(&meshData); err != nil {
		return nil, fmt.Errorf("could not parse mesh file %s: %w", res.Path(), err)
	}

	mesh := &scene.MeshData{Vertices: meshData.Vertices, Indices: meshData.Indices}
	r.meshCache[res.Path()] = mesh
	r.logger.Debugf("loaded mesh %s (%d vertices, %d triangles)", res.Path(), len(mesh.Vertices), len(mesh.Indices)/3)
	return mesh, nil
}

// Apply material overrides on top of the default lighting parameters.
func material(cfg *materialCfg) scene.LightingParams {
	lighting := scene.DefaultLighting()
	if cfg == nil {
		return lighting
	}

	if cfg.Albedo != nil {
		lighting.Albedo = *cfg.Albedo
	}
	if cfg.Specular != nil {
		lighting.Specular = *cfg.Specular
	}
	if cfg.Emission != nil {
		lighting.Emission = *cfg.Emission
	}
	if cfg.Smoothness != nil {
		lighting.Smoothness = *cfg.Smoothness
	}
	return lighting
}
