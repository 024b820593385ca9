package render_context

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RenderContextBuilderOption is a functional option applied to a RenderContext during NewRenderContext.
type RenderContextBuilderOption func(*RenderContext)

// WithLogger sets the logger shared by all components built from the context.
//
// Parameters:
//   - logger: the zap logger (nil keeps the no-op logger)
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the logger option
func WithLogger(logger *zap.Logger) RenderContextBuilderOption {
	return func(rc *RenderContext) {
		if logger != nil {
			rc.logger = logger
		}
	}
}

// WithGPU attaches the WebGPU device and queue used to allocate and fill shadow atlases.
//
// Parameters:
//   - device: the GPU device
//   - queue: the device queue used for command submission
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the GPU option
func WithGPU(device *wgpu.Device, queue *wgpu.Queue) RenderContextBuilderOption {
	return func(rc *RenderContext) {
		rc.device = device
		rc.queue = queue
	}
}

// WithCascades sets the default cascade count. Values are clamped to [1, MaxCascades].
//
// Parameters:
//   - n: the cascade count
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the cascade option
func WithCascades(n int) RenderContextBuilderOption {
	return func(rc *RenderContext) {
		rc.cascades = min(max(n, 1), MaxCascades)
	}
}

// WithShadowMapSize sets the default per-cascade tile size in texels. Zero keeps the default.
//
// Parameters:
//   - size: the tile width and height
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the size option
func WithShadowMapSize(size uint32) RenderContextBuilderOption {
	return func(rc *RenderContext) {
		if size > 0 {
			rc.shadowMapSize = size
		}
	}
}

// WithItemCapacity sets the initial slot count for render item arenas. Values below 1 keep the default.
//
// Parameters:
//   - capacity: the slot count
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the capacity option
func WithItemCapacity(capacity int) RenderContextBuilderOption {
	return func(rc *RenderContext) {
		if capacity > 0 {
			rc.itemCapacity = capacity
		}
	}
}
