package material

import (
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// PassType identifies a render pass a material can take part in.
type PassType int

const (
	// PassColor is the forward shading pass.
	PassColor PassType = iota

	// PassGeometry is the depth-only pass used for shadow maps.
	PassGeometry

	// PassNormalDepth writes view-space normals and depth for effects that need them.
	PassNormalDepth

	numPassTypes
)

// materialIDCounter provides the default render order hint, so that draws sharing a material
// stay adjacent once explicit render orders are equal.
var materialIDCounter atomic.Int64

// Pass is a material's configuration for one PassType.
type Pass struct {
	// PipelineKey identifies the shader program / pipeline used for this pass.
	PipelineKey string
	// CullMode is the face culling applied while drawing this pass.
	CullMode wgpu.CullMode
	// BlendState is the blend configuration for this pass, or nil when blending is disabled.
	BlendState *wgpu.BlendState
}

// material is the implementation of the Material interface.
type material struct {
	name      string
	baseColor [4]float32

	passes [numPassTypes]*Pass

	blendState      *wgpu.BlendState
	renderOrder     int
	renderOrderHint int64

	needsNormalDepth bool
	needsBackbuffer  bool
	dynamicLighting  bool
	doubleSided      bool
}

// Material defines the interface for a render material: the per-pass render configuration and
// the flags the render collector reads to bucket and order draws.
//
// A material with a blend state or a backbuffer requirement is transparent. A material with
// dynamic lighting is recomputed against the frame's lights every frame; static materials are not.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo/diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Pass retrieves the configuration for a pass type.
	//
	// Parameters:
	//   - passType: the pass to look up
	//
	// Returns:
	//   - *Pass: the pass, or nil if the material does not take part in it
	Pass(passType PassType) *Pass

	// HasPass reports whether the material takes part in a pass type.
	//
	// Parameters:
	//   - passType: the pass to look up
	//
	// Returns:
	//   - bool: true if a pass is configured
	HasPass(passType PassType) bool

	// BlendState retrieves the material-wide blend state.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil for opaque materials
	BlendState() *wgpu.BlendState

	// RenderOrder retrieves the explicit render order override. Lower values draw first.
	//
	// Returns:
	//   - int: the render order
	RenderOrder() int

	// RenderOrderHint retrieves the secondary ordering key used to group draws by material.
	// Defaults to a unique id assigned at construction.
	//
	// Returns:
	//   - int64: the render order hint
	RenderOrderHint() int64

	// NeedsNormalDepth reports whether drawing this material requires the normal+depth buffer.
	//
	// Returns:
	//   - bool: true if the normal+depth buffer must be generated
	NeedsNormalDepth() bool

	// NeedsBackbuffer reports whether the material samples the scene color behind it.
	//
	// Returns:
	//   - bool: true if a copy of the scene color must be available
	NeedsBackbuffer() bool

	// DynamicLighting reports whether the material is lit by the frame's dynamic lights.
	//
	// Returns:
	//   - bool: true for dynamically lit materials
	DynamicLighting() bool

	// Transparent reports whether the material must be drawn in the transparent buckets:
	// it blends or it samples the backbuffer.
	//
	// Returns:
	//   - bool: true for transparent materials
	Transparent() bool

	// DoubleSided reports whether back faces are drawn.
	//
	// Returns:
	//   - bool: true if face culling is disabled on every pass
	DoubleSided() bool

	// SetPass configures or removes a pass.
	//
	// Parameters:
	//   - passType: the pass to configure
	//   - pass: the configuration, or nil to remove the pass
	SetPass(passType PassType, pass *Pass)

	// SetBlendState sets the material-wide blend state.
	//
	// Parameters:
	//   - state: the blend state, or nil for opaque
	SetBlendState(state *wgpu.BlendState)

	// SetRenderOrder sets the explicit render order override.
	//
	// Parameters:
	//   - order: the render order
	SetRenderOrder(order int)

	// SetRenderOrderHint sets the secondary ordering key.
	//
	// Parameters:
	//   - hint: the hint value
	SetRenderOrderHint(hint int64)

	// SetDoubleSided toggles face culling on every configured pass.
	//
	// Parameters:
	//   - doubleSided: true to disable culling
	SetDoubleSided(doubleSided bool)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// A color pass and a geometry pass with back-face culling are configured by default.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor:       [4]float32{1, 1, 1, 1},
		renderOrderHint: materialIDCounter.Add(1),
		dynamicLighting: true,
	}
	m.passes[PassColor] = &Pass{CullMode: wgpu.CullModeBack}
	m.passes[PassGeometry] = &Pass{CullMode: wgpu.CullModeBack}
	for _, opt := range options {
		opt(m)
	}
	m.applyCullMode()
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Pass(passType PassType) *Pass {
	if passType < 0 || passType >= numPassTypes {
		return nil
	}
	return m.passes[passType]
}

func (m *material) HasPass(passType PassType) bool {
	return m.Pass(passType) != nil
}

func (m *material) BlendState() *wgpu.BlendState {
	return m.blendState
}

func (m *material) RenderOrder() int {
	return m.renderOrder
}

func (m *material) RenderOrderHint() int64 {
	return m.renderOrderHint
}

func (m *material) NeedsNormalDepth() bool {
	return m.needsNormalDepth
}

func (m *material) NeedsBackbuffer() bool {
	return m.needsBackbuffer
}

func (m *material) DynamicLighting() bool {
	return m.dynamicLighting
}

func (m *material) Transparent() bool {
	return m.blendState != nil || m.needsBackbuffer
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) SetPass(passType PassType, pass *Pass) {
	if passType < 0 || passType >= numPassTypes {
		return
	}
	m.passes[passType] = pass
	m.applyCullMode()
}

func (m *material) SetBlendState(state *wgpu.BlendState) {
	m.blendState = state
	if p := m.passes[PassColor]; p != nil {
		p.BlendState = state
	}
}

func (m *material) SetRenderOrder(order int) {
	m.renderOrder = order
}

func (m *material) SetRenderOrderHint(hint int64) {
	m.renderOrderHint = hint
}

func (m *material) SetDoubleSided(doubleSided bool) {
	m.doubleSided = doubleSided
	m.applyCullMode()
}

// applyCullMode syncs every configured pass with the double-sided flag.
func (m *material) applyCullMode() {
	mode := wgpu.CullModeBack
	if m.doubleSided {
		mode = wgpu.CullModeNone
	}
	for _, p := range m.passes {
		if p != nil {
			p.CullMode = mode
		}
	}
}
