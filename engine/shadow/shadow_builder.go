package shadow

import (
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
)

// CascadeShadowMapRendererBuilderOption is a functional option applied to a renderer during
// construction via NewCascadeShadowMapRenderer.
type CascadeShadowMapRendererBuilderOption func(*cascadeShadowMapRenderer)

// WithCascadeCount sets the number of cascades, clamped to [1, MaxCascades].
//
// Parameters:
//   - n: the cascade count
//
// Returns:
//   - CascadeShadowMapRendererBuilderOption: a function that applies the cascade count option
func WithCascadeCount(n int) CascadeShadowMapRendererBuilderOption {
	return func(r *cascadeShadowMapRenderer) {
		r.cascadeCount = n
	}
}

// WithShadowMapSize sets the width and height of one cascade tile.
//
// Parameters:
//   - size: the tile size in texels; zero keeps the context default
//
// Returns:
//   - CascadeShadowMapRendererBuilderOption: a function that applies the size option
func WithShadowMapSize(size uint32) CascadeShadowMapRendererBuilderOption {
	return func(r *cascadeShadowMapRenderer) {
		if size > 0 {
			r.tileSize = size
		}
	}
}

// WithDepthAtlas draws the cascades into the given atlas instead of one created from the context.
//
// Parameters:
//   - atlas: the depth atlas
//
// Returns:
//   - CascadeShadowMapRendererBuilderOption: a function that applies the atlas option
func WithDepthAtlas(atlas renderer.DepthAtlas) CascadeShadowMapRendererBuilderOption {
	return func(r *cascadeShadowMapRenderer) {
		r.atlas = atlas
	}
}

// WithCasterCollector replaces the default caster collector.
//
// Parameters:
//   - c: the collector
//
// Returns:
//   - CascadeShadowMapRendererBuilderOption: a function that applies the collector option
func WithCasterCollector(c CascadeCasterCollector) CascadeShadowMapRendererBuilderOption {
	return func(r *cascadeShadowMapRenderer) {
		r.casters = c
	}
}
