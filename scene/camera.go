package scene

import (
	"github.com/achilleasa/prism/types"
	"github.com/go-gl/mathgl/mgl32"
)

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Pending rotations in radians. They are applied and reset by Update.
	Pitch float32
	Yaw   float32

	ViewMat types.Mat4
	ProjMat types.Mat4

	// Camera FOV in degrees
	FOV float32

	// Clip planes
	Near float32
	Far  float32
}

// Create a new camera with the given FOV.
func NewCamera(fov float32) *Camera {
	return &Camera{
		ViewMat:  types.Ident4(),
		ProjMat:  types.Ident4(),
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		Near:     0.3,
		Far:      1000,
	}
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.ProjMat = types.Perspective4(c.FOV, aspect, c.Near, c.Far)
	c.Update()
}

// Update camera.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()

	if c.Pitch != 0 || c.Yaw != 0 {
		pitchAxis := mgl32.Vec3(dir.Cross(c.Up).Normalize())
		pitchQuat := mgl32.QuatRotate(c.Pitch, pitchAxis)
		yawQuat := mgl32.QuatRotate(c.Yaw, mgl32.Vec3(c.Up))

		orientQuat := pitchQuat.Mul(yawQuat).Normalize()
		dir = types.Vec3(orientQuat.Rotate(mgl32.Vec3(dir)))
		c.Pitch, c.Yaw = 0, 0
	}

	c.LookAt = c.Position.Add(dir)
	c.ViewMat = types.LookAtV(c.Position, c.LookAt, c.Up)
}

// Move the camera and its look-at point by delta.
func (c *Camera) Move(delta types.Vec3) {
	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
	c.Update()
}

// Get the camera to world transformation.
func (c *Camera) CameraToWorld() types.Mat4 {
	return c.ViewMat.Inv()
}

// Get the inverse of the projection matrix.
func (c *Camera) InverseProjection() types.Mat4 {
	return c.ProjMat.Inv()
}

// Get the inverse of the combined projection and view matrix.
func (c *Camera) InvViewProjMat() types.Mat4 {
	return c.ProjMat.Mul4(c.ViewMat).Inv()
}
