package engine

import (
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/render"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics logging.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithView sets the camera and scene Run renders.
//
// Parameters:
//   - view: the view camera
//   - s: the scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithView(view camera.Camera, s *scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.view = view
		e.scene = s
	}
}

// WithPassExecutor sets the consumer of completed frames.
//
// Parameters:
//   - executor: the pass executor
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPassExecutor(executor PassExecutor) EngineBuilderOption {
	return func(e *engine) {
		e.executor = executor
	}
}

// WithCollector replaces the render collector built from the render context.
//
// Parameters:
//   - c: the collector
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCollector(c render.Collector) EngineBuilderOption {
	return func(e *engine) {
		e.collector = c
	}
}

// WithShadowWorkers prepares shadow-casting lights on a worker pool of n workers.
// Values <= 0 prepare serially on the render goroutine (default).
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShadowWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		e.shadowWorkers = max(n, 0)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}

// WithOptions applies the engine section of a loaded configuration.
//
// Parameters:
//   - opts: the validated options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOptions(opts config.Options) EngineBuilderOption {
	return func(e *engine) {
		WithShadowWorkers(opts.Engine.ParallelShadowWorkers)(e)
		WithRenderFrameLimit(opts.Engine.FrameLimit)(e)
	}
}
