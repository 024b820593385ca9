package light

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source. The numeric order is the order lights are
// sorted in for shading, so lights of one type stay contiguous.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis, controlled by inner and
	// outer cone angles.
	LightTypeSpot
)

// ShadowMapRenderer is the part of a shadow renderer the lighting pass reads: one light-space to
// atlas-UV matrix and one split distance per cascade. Renderers are produced by the shadow package
// and attached to their light with SetShadowMapRenderer.
type ShadowMapRenderer interface {
	// Light retrieves the light the renderer produces shadows for.
	//
	// Returns:
	//   - Light: the owning light
	Light() Light

	// CascadeCount retrieves the number of active cascades.
	//
	// Returns:
	//   - int: the cascade count, between 1 and 4
	CascadeCount() int

	// ShadowMatrix retrieves the world to atlas-UV matrix of one cascade.
	//
	// Parameters:
	//   - cascade: the cascade index, 0 being nearest to the camera
	//
	// Returns:
	//   - mgl32.Mat4: the matrix; identity for an out-of-range index
	ShadowMatrix(cascade int) mgl32.Mat4

	// SplitDistance retrieves the view distance at which a cascade ends.
	//
	// Parameters:
	//   - cascade: the cascade index
	//
	// Returns:
	//   - float32: the split distance; zero for an out-of-range index
	SplitDistance(cascade int) float32
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	worldMatrix  mgl32.Mat4
	color        mgl32.Vec3
	intensity    float32
	lightRange   float32
	innerCone    float32 // stored as cos(angle in radians)
	outerCone    float32 // stored as cos(angle in radians)
	enabled      bool
	castsShadows bool
	shadow       ShadowMapRenderer
}

// Light defines the interface for a light source in the scene.
//
// A light's placement comes from the scene node that owns it: the node pushes its resolved world
// matrix with SetWorldMatrix, and position and direction are derived from it. Lights shine down
// their local -Z axis.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// WorldMatrix returns the light-to-world transform.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	WorldMatrix() mgl32.Mat4

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized world-space direction the light travels in.
	// Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: the unit direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// ScaledIrradiance returns the color multiplied by the intensity.
	//
	// Returns:
	//   - mgl32.Vec3: the irradiance
	ScaledIrradiance() mgl32.Vec3

	// Range returns the maximum attenuation distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterCone() float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light produces a shadow map this frame: the flag is set
	// and a shadow map renderer is attached.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// ShadowMapRenderer returns the attached shadow renderer, or nil.
	//
	// Returns:
	//   - ShadowMapRenderer: the renderer or nil
	ShadowMapRenderer() ShadowMapRenderer

	// SetWorldMatrix sets the light-to-world transform. Called by the owning scene node.
	//
	// Parameters:
	//   - m: the world matrix
	SetWorldMatrix(m mgl32.Mat4)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - color: the color
	SetColor(color mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetRange sets the maximum attenuation distance.
	//
	// Parameters:
	//   - lightRange: the range value
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles for spot lights.
	// Angles are specified in degrees and stored internally as cosines.
	//
	// Parameters:
	//   - innerDeg: inner cone half-angle in degrees
	//   - outerDeg: outer cone half-angle in degrees
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light is eligible for shadow mapping.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)

	// SetShadowMapRenderer attaches the renderer producing this light's shadow map.
	//
	// Parameters:
	//   - r: the renderer, or nil to detach
	SetShadowMapRenderer(r ShadowMapRenderer)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied. The default pose looks straight down (-Y).
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:   lightType,
		worldMatrix: OrientedWorldMatrix(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}),
		color:       mgl32.Vec3{1, 1, 1},
		intensity:   1.0,
		lightRange:  10.0,
		innerCone:   0.9063, // cos(25°)
		outerCone:   0.8192, // cos(35°)
		enabled:     true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OrientedWorldMatrix builds a world matrix placed at position whose -Z axis points along direction.
// A stable up vector is picked when direction is close to vertical.
//
// Parameters:
//   - position: the world-space origin
//   - direction: the facing direction (normalized by this function)
//
// Returns:
//   - mgl32.Mat4: the world matrix
func OrientedWorldMatrix(position, direction mgl32.Vec3) mgl32.Mat4 {
	if direction.Len() == 0 {
		return mgl32.Translate3D(position[0], position[1], position[2])
	}
	direction = direction.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(direction[1]) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}
	return common.InverseAffine(mgl32.LookAtV(position, position.Add(direction), up))
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) WorldMatrix() mgl32.Mat4 {
	return l.worldMatrix
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return common.Translation(l.worldMatrix)
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return common.Forward(l.worldMatrix)
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) ScaledIrradiance() mgl32.Vec3 {
	return l.color.Mul(l.intensity)
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows && l.shadow != nil
}

func (l *lightImpl) ShadowMapRenderer() ShadowMapRenderer {
	return l.shadow
}

func (l *lightImpl) SetWorldMatrix(m mgl32.Mat4) {
	l.worldMatrix = m
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}

func (l *lightImpl) SetShadowMapRenderer(r ShadowMapRenderer) {
	l.shadow = r
}

// AmbientLight is a constant, direction-less light added to every fragment. Ambient lights are
// summed into one color per frame rather than entering the light list.
type AmbientLight struct {
	Color     mgl32.Vec3
	Intensity float32
}

// NewAmbientLight creates an ambient light.
//
// Parameters:
//   - color: the RGB color
//   - intensity: the scalar multiplier
//
// Returns:
//   - *AmbientLight: the ambient light
func NewAmbientLight(color mgl32.Vec3, intensity float32) *AmbientLight {
	return &AmbientLight{Color: color, Intensity: intensity}
}

// ScaledIrradiance returns the color multiplied by the intensity.
func (a *AmbientLight) ScaledIrradiance() mgl32.Vec3 {
	return a.Color.Mul(a.Intensity)
}
