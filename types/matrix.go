package types

import (
	"github.com/go-gl/mathgl/mgl32"
)

// A 4x4 matrix stored in column-major order. This matches the layout
// expected by the compute kernel so matrices can be copied verbatim.
type Mat4 mgl32.Mat4

// Create identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Build a translate * rotate * scale transformation. The rotation is
// specified as euler angles in degrees and is applied in Z, X, Y order.
func TRS(position, eulerDeg, scale Vec3) Mat4 {
	rot := EulerToQuat(eulerDeg)
	m := mgl32.Translate3D(position[0], position[1], position[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	return Mat4(m)
}

// Convert euler angles (degrees) to a quaternion. Rotations are applied
// around Z first, then X and finally Y.
func EulerToQuat(eulerDeg Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(mgl32.DegToRad(eulerDeg[0]), mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(mgl32.DegToRad(eulerDeg[1]), mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(mgl32.DegToRad(eulerDeg[2]), mgl32.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz)
}

// Create a perspective projection matrix. The fov is specified in degrees.
func Perspective4(fovDeg, aspect, near, far float32) Mat4 {
	return Mat4(mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far))
}

// Create a view matrix for an eye looking at center.
func LookAtV(eye, center, up Vec3) Mat4 {
	return Mat4(mgl32.LookAtV(mgl32.Vec3(eye), mgl32.Vec3(center), mgl32.Vec3(up)))
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Transform a point (w = 1) by this matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3(mgl32.TransformCoordinate(mgl32.Vec3(v), mgl32.Mat4(m)))
}

// Get matrix inverse. Singular matrices yield the zero matrix.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Get the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Get the largest scale factor applied by this matrix, measured as the
// length of its basis vectors.
func (m Mat4) MaxScale() float32 {
	return Vec3{
		Vec3{m[0], m[1], m[2]}.Len(),
		Vec3{m[4], m[5], m[6]}.Len(),
		Vec3{m[8], m[9], m[10]}.Len(),
	}.MaxComponent()
}

// Check whether two matrices are equal within the given per-component tolerance.
func (m Mat4) ApproxEqual(m2 Mat4, epsilon float32) bool {
	for i := range m {
		if !ApproxEqual(m[i], m2[i], epsilon) {
			return false
		}
	}
	return true
}
