package material

import "github.com/cogentcore/webgpu/wgpu"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// AlphaBlend is the standard "over" blend state for alpha-blended materials.
var AlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// AdditiveBlend adds the material color on top of the target.
var AdditiveBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
		Operation: wgpu.BlendOperationAdd,
	},
}

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the albedo/diffuse RGBA color of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithPass is an option builder that configures a pass. Passing nil removes the pass, which
// makes the material invisible to that pass (for example, a material that casts no shadow).
//
// Parameters:
//   - passType: the pass to configure
//   - pass: the configuration, or nil
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pass option to a material
func WithPass(passType PassType, pass *Pass) MaterialBuilderOption {
	return func(m *material) {
		if passType >= 0 && passType < numPassTypes {
			m.passes[passType] = pass
		}
	}
}

// WithBlendState is an option builder that makes the material blend, placing it in the
// transparent buckets.
//
// Parameters:
//   - state: the blend state; use AlphaBlend or AdditiveBlend for the common cases
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blend state option to a material
func WithBlendState(state wgpu.BlendState) MaterialBuilderOption {
	return func(m *material) {
		m.blendState = &state
		if p := m.passes[PassColor]; p != nil {
			p.BlendState = m.blendState
		}
	}
}

// WithRenderOrder is an option builder that sets the explicit render order override.
//
// Parameters:
//   - order: lower values draw first
//
// Returns:
//   - MaterialBuilderOption: a function that applies the render order option to a material
func WithRenderOrder(order int) MaterialBuilderOption {
	return func(m *material) {
		m.renderOrder = order
	}
}

// WithRenderOrderHint is an option builder that overrides the generated render order hint.
//
// Parameters:
//   - hint: the secondary ordering key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the hint option to a material
func WithRenderOrderHint(hint int64) MaterialBuilderOption {
	return func(m *material) {
		m.renderOrderHint = hint
	}
}

// WithNeedsNormalDepth is an option builder that marks the material as reading the normal+depth buffer.
//
// Parameters:
//   - needs: true if the buffer is required
//
// Returns:
//   - MaterialBuilderOption: a function that applies the option to a material
func WithNeedsNormalDepth(needs bool) MaterialBuilderOption {
	return func(m *material) {
		m.needsNormalDepth = needs
		if needs && m.passes[PassNormalDepth] == nil {
			m.passes[PassNormalDepth] = &Pass{}
		}
	}
}

// WithNeedsBackbuffer is an option builder that marks the material as sampling the scene color
// behind it (refraction, translucency). Such materials are always transparent.
//
// Parameters:
//   - needs: true if the backbuffer copy is required
//
// Returns:
//   - MaterialBuilderOption: a function that applies the option to a material
func WithNeedsBackbuffer(needs bool) MaterialBuilderOption {
	return func(m *material) {
		m.needsBackbuffer = needs
	}
}

// WithDynamicLighting is an option builder that selects dynamic (true, default) or static lighting.
//
// Parameters:
//   - dynamic: true for per-frame dynamic lighting
//
// Returns:
//   - MaterialBuilderOption: a function that applies the lighting option to a material
func WithDynamicLighting(dynamic bool) MaterialBuilderOption {
	return func(m *material) {
		m.dynamicLighting = dynamic
	}
}

// WithDoubleSided is an option builder that disables face culling on every pass.
//
// Parameters:
//   - doubleSided: true to draw back faces
//
// Returns:
//   - MaterialBuilderOption: a function that applies the option to a material
func WithDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.doubleSided = doubleSided
	}
}
