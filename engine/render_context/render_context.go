// Package render_context defines the immutable value every engine component receives at
// construction time in place of process-wide globals.
package render_context

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// MaxCascades is the largest number of shadow cascades the 2x2 atlas tiling can hold.
const MaxCascades = 4

// DefaultCascades is the cascade count used when none is configured.
const DefaultCascades = 3

// DefaultShadowMapSize is the default width and height in texels of one cascade tile.
const DefaultShadowMapSize = 1024

// DefaultItemCapacity is the number of render item slots an arena preallocates.
const DefaultItemCapacity = 256

// RenderContext carries the shared rendering configuration. It is a value type: copies are
// independent and components never mutate the copy they hold.
type RenderContext struct {
	logger *zap.Logger

	device *wgpu.Device
	queue  *wgpu.Queue

	cascades      int
	shadowMapSize uint32
	itemCapacity  int
}

// NewRenderContext creates a RenderContext with defaults and any provided options applied.
//
// Parameters:
//   - options: functional options to configure the context
//
// Returns:
//   - RenderContext: the configured context
func NewRenderContext(options ...RenderContextBuilderOption) RenderContext {
	rc := RenderContext{
		logger:        zap.NewNop(),
		cascades:      DefaultCascades,
		shadowMapSize: DefaultShadowMapSize,
		itemCapacity:  DefaultItemCapacity,
	}
	for _, option := range options {
		option(&rc)
	}
	return rc
}

// Logger returns the context logger. Never nil.
func (rc RenderContext) Logger() *zap.Logger {
	if rc.logger == nil {
		return zap.NewNop()
	}
	return rc.logger
}

// Device returns the GPU device, or nil for CPU-only (headless) contexts.
func (rc RenderContext) Device() *wgpu.Device {
	return rc.device
}

// Queue returns the GPU queue, or nil for CPU-only (headless) contexts.
func (rc RenderContext) Queue() *wgpu.Queue {
	return rc.queue
}

// HasGPU reports whether both a device and a queue are available.
func (rc RenderContext) HasGPU() bool {
	return rc.device != nil && rc.queue != nil
}

// Cascades returns the default cascade count for new shadow renderers.
func (rc RenderContext) Cascades() int {
	return rc.cascades
}

// ShadowMapSize returns the default per-cascade tile size in texels.
func (rc RenderContext) ShadowMapSize() uint32 {
	return rc.shadowMapSize
}

// ItemCapacity returns the initial slot count of render item arenas.
func (rc RenderContext) ItemCapacity() int {
	return rc.itemCapacity
}
