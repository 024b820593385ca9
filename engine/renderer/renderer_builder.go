package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

type depthAtlasConfig struct {
	label     string
	backend   BackendType
	pipelines map[string]*wgpu.RenderPipeline
}

func newDepthAtlasConfig(options []DepthAtlasBuilderOption) *depthAtlasConfig {
	cfg := &depthAtlasConfig{
		label:     "Shadow Atlas",
		pipelines: make(map[string]*wgpu.RenderPipeline),
	}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

// DepthAtlasBuilderOption is a functional option applied to a depth atlas during construction via NewDepthAtlas.
type DepthAtlasBuilderOption func(*depthAtlasConfig)

// WithLabel sets the label given to GPU objects created by the atlas.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - DepthAtlasBuilderOption: a function that applies the label option
func WithLabel(label string) DepthAtlasBuilderOption {
	return func(c *depthAtlasConfig) {
		c.label = label
	}
}

// WithBackend forces a backend instead of choosing one from the render context.
// Forcing BackendTypeWGPU on a context without a device panics at construction.
//
// Parameters:
//   - backend: the backend type
//
// Returns:
//   - DepthAtlasBuilderOption: a function that applies the backend option
func WithBackend(backend BackendType) DepthAtlasBuilderOption {
	return func(c *depthAtlasConfig) {
		c.backend = backend
	}
}

// WithGeometryPipeline pre-registers a depth-only render pipeline under a material pipeline key.
// The pipeline must use the atlas draw bind group layout at group 0. Ignored by the headless backend.
//
// Parameters:
//   - key: the material geometry pass pipeline key
//   - p: the render pipeline
//
// Returns:
//   - DepthAtlasBuilderOption: a function that applies the pipeline option
func WithGeometryPipeline(key string, p *wgpu.RenderPipeline) DepthAtlasBuilderOption {
	return func(c *depthAtlasConfig) {
		c.pipelines[key] = p
	}
}
