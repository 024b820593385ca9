package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Perspective creates a perspective projection matrix.
// Uses the WebGPU clip-space depth convention [0, 1] with the camera looking down -Z.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / math32.Tan(fovY/2.0)
	var out mgl32.Mat4

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// Ortho builds an orthographic off-center projection matrix compatible with WebGPU's
// clip-space convention: X/Y in [-1, 1], Z in [0, 1]. Near and far are distances along
// the -Z view axis and may be negative.
//
// Parameters:
//   - left, right: horizontal extents in view space
//   - bottom, top: vertical extents in view space
//   - near, far: depth extents measured along -Z
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Ortho(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	out := mgl32.Ident4()
	rl := right - left
	tb := top - bottom
	fn := far - near

	out[0] = 2.0 / rl
	out[5] = 2.0 / tb
	out[10] = -1.0 / fn
	out[12] = -(right + left) / rl
	out[13] = -(top + bottom) / tb
	out[14] = -near / fn
	return out
}

// InverseAffine inverts a matrix made only of rotation, uniform or non-uniform scale
// and translation. Cheaper than a general inverse and exact for scene-graph transforms.
//
// Parameters:
//   - m: the affine matrix to invert
//
// Returns:
//   - mgl32.Mat4: the inverse
func InverseAffine(m mgl32.Mat4) mgl32.Mat4 {
	inv3 := m.Mat3().Inv()
	t := mgl32.Vec3{m[12], m[13], m[14]}
	it := inv3.Mul3x1(t).Mul(-1)

	return mgl32.Mat4{
		inv3[0], inv3[1], inv3[2], 0,
		inv3[3], inv3[4], inv3[5], 0,
		inv3[6], inv3[7], inv3[8], 0,
		it[0], it[1], it[2], 1,
	}
}

// TransformPoint applies an affine matrix to a point (w = 1) without a perspective divide.
//
// Parameters:
//   - m: the affine matrix
//   - p: the point
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

// Translation returns the translation column of an affine matrix.
func Translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// Forward returns the normalized world-space viewing direction (-Z axis) of a transform.
//
// Parameters:
//   - m: a world matrix
//
// Returns:
//   - mgl32.Vec3: the unit forward vector
func Forward(m mgl32.Mat4) mgl32.Vec3 {
	return normalizeOrZero(mgl32.Vec3{-m[8], -m[9], -m[10]})
}

// normalizeOrZero normalizes v, returning the zero vector when v has zero length.
func normalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
