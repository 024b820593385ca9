package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/effect"
	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionType selects how a camera maps view space to clip space.
type ProjectionType int

const (
	// ProjectionPerspective is a symmetric perspective projection defined by fov and aspect.
	ProjectionPerspective ProjectionType = iota

	// ProjectionOrthographic is an off-center orthographic projection, used by shadow cascades.
	ProjectionOrthographic
)

// OrthoBounds are the view-space extents of an orthographic projection.
// Near and far are distances along the camera's -Z axis.
type OrthoBounds struct {
	Left, Right, Bottom, Top float32
}

type cameraImpl struct {
	projection ProjectionType

	fov    float32
	aspect float32
	near   float32
	far    float32
	ortho  OrthoBounds
	up     mgl32.Vec3

	worldMatrix          mgl32.Mat4
	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	frustum              common.Frustum

	effects    []effect.Effect
	controller CameraController
}

// Camera defines the interface for perspective and orthographic cameras.
//
// Cameras look down their local -Z axis. Setters only record new parameters; derived matrices
// and the frustum are recomputed by an explicit call to Update, so the frame driver controls
// exactly when camera state changes.
type Camera interface {
	// Projection returns the projection type.
	//
	// Returns:
	//   - ProjectionType: perspective or orthographic
	Projection() ProjectionType

	// Fov returns the vertical field of view in radians (perspective only).
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// OrthoBounds returns the orthographic extents (orthographic only).
	//
	// Returns:
	//   - OrthoBounds: the view-space extents
	OrthoBounds() OrthoBounds

	// WorldMatrix returns the camera-to-world transform.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	WorldMatrix() mgl32.Mat4

	// ViewMatrix returns the world-to-camera transform computed by the last Update.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the projection computed by the last Update.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix (WebGPU clip space)
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns Projection * View computed by the last Update.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the world-space frustum computed by the last Update.
	//
	// Returns:
	//   - common.Frustum: the planes and corners
	Frustum() common.Frustum

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Forward returns the world-space viewing direction (the camera's -Z axis).
	//
	// Returns:
	//   - mgl32.Vec3: the unit forward vector
	Forward() mgl32.Vec3

	// Effects returns the post effects attached to this camera.
	//
	// Returns:
	//   - []effect.Effect: the effects in execution order
	Effects() []effect.Effect

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the controller or nil
	Controller() CameraController

	// Update pulls the pose from the controller (if any) and recomputes the view, projection and
	// view-projection matrices and the frustum.
	Update()

	// SetWorldMatrix sets the camera-to-world transform directly.
	//
	// Parameters:
	//   - m: the world matrix
	SetWorldMatrix(m mgl32.Mat4)

	// LookAt places the camera at eye looking towards target.
	//
	// Parameters:
	//   - eye: the camera position
	//   - target: the point to look at
	//   - up: the world up direction
	LookAt(eye, target, up mgl32.Vec3)

	// SetPerspective switches to a perspective projection.
	//
	// Parameters:
	//   - fov: vertical field of view in radians
	//   - aspect: width / height
	//   - near, far: clip distances
	SetPerspective(fov, aspect, near, far float32)

	// SetOrthographic switches to an off-center orthographic projection.
	//
	// Parameters:
	//   - bounds: the view-space extents
	//   - near, far: clip distances along -Z
	SetOrthographic(bounds OrthoBounds, near, far float32)

	// SetAspect sets the aspect ratio.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// AddEffect attaches a post effect.
	//
	// Parameters:
	//   - e: the effect to append
	AddEffect(e effect.Effect)

	// SetController attaches a CameraController that drives the camera pose on Update.
	//
	// Parameters:
	//   - ctrl: the controller, or nil to detach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new perspective Camera at the origin looking down -Z, with its matrices
// already computed.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		projection:  ProjectionPerspective,
		fov:         45.0 * (math.Pi / 180.0),
		aspect:      1.0,
		near:        0.1,
		far:         100.0,
		up:          mgl32.Vec3{0, 1, 0},
		worldMatrix: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.Update()
	return c
}

// NewOrthographicCamera creates an orthographic camera with the given extents.
//
// Parameters:
//   - bounds: the view-space extents
//   - near, far: clip distances along -Z
//
// Returns:
//   - Camera: the camera
func NewOrthographicCamera(bounds OrthoBounds, near, far float32) Camera {
	return NewCamera(WithOrthographic(bounds, near, far))
}

func (c *cameraImpl) Projection() ProjectionType {
	return c.projection
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) OrthoBounds() OrthoBounds {
	return c.ortho
}

func (c *cameraImpl) WorldMatrix() mgl32.Mat4 {
	return c.worldMatrix
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	return c.frustum
}

func (c *cameraImpl) Effects() []effect.Effect {
	return c.effects
}

func (c *cameraImpl) Controller() CameraController {
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.controller = ctrl
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	return common.Translation(c.worldMatrix)
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	return common.Forward(c.worldMatrix)
}

func (c *cameraImpl) SetWorldMatrix(m mgl32.Mat4) {
	c.worldMatrix = m
}

func (c *cameraImpl) LookAt(eye, target, up mgl32.Vec3) {
	c.worldMatrix = common.InverseAffine(mgl32.LookAtV(eye, target, up))
}

func (c *cameraImpl) SetPerspective(fov, aspect, near, far float32) {
	c.projection = ProjectionPerspective
	c.fov, c.aspect, c.near, c.far = fov, aspect, near, far
}

func (c *cameraImpl) SetOrthographic(bounds OrthoBounds, near, far float32) {
	c.projection = ProjectionOrthographic
	c.ortho, c.near, c.far = bounds, near, far
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.aspect = aspect
}

func (c *cameraImpl) SetNear(near float32) {
	c.near = near
}

func (c *cameraImpl) SetFar(far float32) {
	c.far = far
}

func (c *cameraImpl) AddEffect(e effect.Effect) {
	if e != nil {
		c.effects = append(c.effects, e)
	}
}

func (c *cameraImpl) Update() {
	if c.controller != nil {
		c.LookAt(c.controller.Position(), c.controller.Target(), c.up)
	}

	c.viewMatrix = common.InverseAffine(c.worldMatrix)
	switch c.projection {
	case ProjectionOrthographic:
		c.projectionMatrix = common.Ortho(c.ortho.Left, c.ortho.Right, c.ortho.Bottom, c.ortho.Top, c.near, c.far)
	default:
		c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
	}
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.frustum = common.ExtractFrustumFromMatrix(c.viewProjectionMatrix)
}
