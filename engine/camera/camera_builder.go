package camera

import (
	"github.com/Carmen-Shannon/oxy-render/engine/effect"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithUp sets the up vector used when a controller drives the camera.
//
// Parameters:
//   - up: the world up direction
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithOrthographic makes the camera orthographic.
//
// Parameters:
//   - bounds: the view-space extents
//   - near, far: clip distances along -Z
//
// Returns:
//   - CameraBuilderOption: functional option to set the projection
func WithOrthographic(bounds OrthoBounds, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = ProjectionOrthographic
		c.ortho, c.near, c.far = bounds, near, far
	}
}

// WithLookAt places the camera at eye looking towards target.
//
// Parameters:
//   - eye: the camera position
//   - target: the point to look at
//
// Returns:
//   - CameraBuilderOption: functional option to set the pose
func WithLookAt(eye, target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.LookAt(eye, target, c.up)
	}
}

// WithWorldMatrix sets the camera-to-world transform.
//
// Parameters:
//   - m: the world matrix
//
// Returns:
//   - CameraBuilderOption: functional option to set the pose
func WithWorldMatrix(m mgl32.Mat4) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.worldMatrix = m
	}
}

// WithEffects attaches post effects to the camera.
//
// Parameters:
//   - effects: the effects in execution order
//
// Returns:
//   - CameraBuilderOption: functional option to set the effects
func WithEffects(effects ...effect.Effect) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.effects = append(c.effects, effects...)
	}
}

// WithController attaches a controller to the camera.
// The camera takes its pose from the controller on every Update.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
