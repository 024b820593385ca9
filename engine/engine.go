package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/render"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/Carmen-Shannon/oxy-render/engine/shadow"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrNoView is returned by Run when no camera or scene has been configured.
var ErrNoView = errors.New("engine: no camera or scene configured")

// PassExecutor consumes a completed frame: the sorted draw lists, lights, shadow uniforms and
// effects. Implementations record the color, lighting and post passes.
type PassExecutor interface {
	// ExecuteFrame draws one frame.
	//
	// Parameters:
	//   - frame: the frame, valid until the next RenderFrame
	//
	// Returns:
	//   - error: error if drawing fails
	ExecuteFrame(frame *render.Frame) error
}

// PassExecutorFunc adapts a function to the PassExecutor interface.
type PassExecutorFunc func(frame *render.Frame) error

// ExecuteFrame calls f(frame).
func (f PassExecutorFunc) ExecuteFrame(frame *render.Frame) error {
	return f(frame)
}

// ShadowPass is the part of a shadow renderer the frame driver runs. Casters that do not
// implement it are expected to be rendered by the caller and only contribute their uniforms.
type ShadowPass interface {
	// Prepare fits the cascades and collects the casters. It only reads the scene.
	//
	// Parameters:
	//   - view: the view camera, already updated
	//   - s: the scene, with resolved world transforms
	Prepare(view camera.Camera, s *scene.Scene)

	// Execute renders the prepared cascades.
	//
	// Returns:
	//   - error: error if GPU work fails
	Execute() error

	// AtlasSize returns the shadow atlas size in texels.
	//
	// Returns:
	//   - uint32: the width
	//   - uint32: the height
	AtlasSize() (uint32, uint32)
}

// casterSource is implemented by shadow renderers that expose their caster collector.
type casterSource interface {
	Casters() shadow.CascadeCasterCollector
}

// engine implements the Engine interface.
// Drives collection, shadow rendering and pass execution for one view.
type engine struct {
	rc     render_context.RenderContext
	logger *zap.Logger

	collector render.Collector
	executor  PassExecutor

	view  camera.Camera
	scene *scene.Scene

	shadowWorkers int
	shadowPool    worker.DynamicWorkerPool
	prepareErrs   []error

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback     func(deltaTime float32)
	renderFrameLimit time.Duration

	frame render.Frame
	mu    sync.Mutex
}

// Engine is the main entry point for rendering.
// It resolves scene transforms, collects render items, renders shadow cascades and hands the
// finished frame to a PassExecutor.
type Engine interface {
	// RenderFrame renders one frame of a scene seen through a camera.
	//
	// The frame runs in a fixed order: world transforms are resolved, the camera is updated,
	// render items are collected, every shadow-casting light is prepared (in parallel when
	// shadow workers are configured) and then executed serially, and the frame is passed to
	// the PassExecutor. A failing shadow light does not stop the frame.
	//
	// Parameters:
	//   - view: the view camera
	//   - s: the scene
	//
	// Returns:
	//   - *render.Frame: the frame, valid until the next call
	//   - error: the joined shadow and pass executor errors
	RenderFrame(view camera.Camera, s *scene.Scene) (*render.Frame, error)

	// Run renders the configured view until ctx is cancelled, calling the tick callback
	// before every frame. Frame errors are logged and do not stop the loop; a panic does.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: ErrNoView, a recovered panic, or nil after cancellation
	Run(ctx context.Context) error

	// SetView sets the camera and scene Run renders.
	//
	// Parameters:
	//   - view: the view camera
	//   - s: the scene
	SetView(view camera.Camera, s *scene.Scene)

	// SetPassExecutor replaces the frame consumer. Nil drops frames after shadow rendering.
	//
	// Parameters:
	//   - executor: the pass executor
	SetPassExecutor(executor PassExecutor)

	// SetTickCallback registers the function called before every frame of Run.
	// Use this for game logic and animation updates.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap for Run.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// EnableProfiler enables frame statistics logging.
	EnableProfiler()

	// DisableProfiler disables frame statistics logging.
	DisableProfiler()

	// Collector returns the engine's render collector.
	//
	// Returns:
	//   - render.Collector: the collector
	Collector() render.Collector

	// Close stops the shadow worker pool.
	Close()
}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - rc: the render context
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(rc render_context.RenderContext, options ...EngineBuilderOption) Engine {
	e := &engine{
		rc:     rc,
		logger: rc.Logger().Named("engine"),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.collector == nil {
		e.collector = render.NewCollector(rc)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(rc.Logger())
	}
	if e.shadowWorkers > 0 {
		e.shadowPool = worker.NewDynamicWorkerPool(e.shadowWorkers, 256, 1*time.Second)
	}
	return e
}

func (e *engine) RenderFrame(view camera.Camera, s *scene.Scene) (*render.Frame, error) {
	if view == nil || s == nil {
		return nil, ErrNoView
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.UpdateWorldTransforms()
	view.Update()
	e.collector.Collect(view, s)
	uniforms := e.frame.CascadeUniforms[:0]
	e.frame = e.collector.Snapshot()

	err := e.renderShadows(view, s)

	e.frame.LightBuffer = light.MarshalLightBuffer(e.frame.Lights, e.frame.Ambient)
	e.frame.CascadeUniforms = uniforms
	for _, caster := range e.frame.ShadowCasters {
		var atlasWidth uint32
		if pass, ok := caster.(ShadowPass); ok {
			atlasWidth, _ = pass.AtlasSize()
		}
		u := light.NewGPUCascadeUniform(caster, atlasWidth)
		e.frame.CascadeUniforms = append(e.frame.CascadeUniforms, u.Marshal())
	}

	if e.executor != nil {
		if execErr := e.executor.ExecuteFrame(&e.frame); execErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to execute frame: %w", execErr))
		}
	}
	return &e.frame, err
}

// renderShadows prepares every shadow pass, fanned out to the worker pool when one exists, then
// executes them in caster order.
func (e *engine) renderShadows(view camera.Camera, s *scene.Scene) error {
	casters := e.frame.ShadowCasters
	passes := make([]ShadowPass, len(casters))
	for i, c := range casters {
		passes[i], _ = c.(ShadowPass)
	}

	var err error
	prepared := e.prepareShadows(passes, view, s)
	for i, pass := range passes {
		if pass == nil {
			continue
		}
		if prepared[i] != nil {
			err = multierr.Append(err, prepared[i])
			continue
		}
		if execErr := pass.Execute(); execErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to render shadows for caster %d: %w", i, execErr))
		}
	}
	return err
}

// prepareShadows runs Prepare on every pass and returns one error slot per pass, set when the
// preparation panicked.
func (e *engine) prepareShadows(passes []ShadowPass, view camera.Camera, s *scene.Scene) []error {
	e.prepareErrs = e.prepareErrs[:0]
	for range passes {
		e.prepareErrs = append(e.prepareErrs, nil)
	}

	if e.shadowPool == nil || len(passes) < 2 {
		for i, pass := range passes {
			if pass != nil {
				e.prepareErrs[i] = e.safePrepare(i, pass, view, s)
			}
		}
		return e.prepareErrs
	}

	// A WaitGroup gives the per-frame barrier; pool.Wait only returns once workers go idle.
	var wg sync.WaitGroup
	for i, pass := range passes {
		if pass == nil {
			continue
		}
		wg.Add(1)
		idx, p := i, pass
		e.shadowPool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				err := e.safePrepare(idx, p, view, s)
				e.prepareErrs[idx] = err
				return nil, err
			},
		})
	}
	wg.Wait()
	return e.prepareErrs
}

func (e *engine) safePrepare(i int, pass ShadowPass, view camera.Camera, s *scene.Scene) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to prepare shadows for caster %d: panic: %v", i, r)
		}
	}()
	pass.Prepare(view, s)
	return nil
}

func (e *engine) Run(ctx context.Context) (err error) {
	if view, s := e.currentView(); view == nil || s == nil {
		return ErrNoView
	}

	// Recover from panics inside the render loop to report them instead of crashing the process.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render loop recovered from panic", zap.Any("panic", r))
			err = fmt.Errorf("render loop panicked: %v", r)
		}
	}()

	lastRender := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if e.tickCallback != nil {
			e.tickCallback(dt)
		}

		view, s := e.currentView()
		frame, frameErr := e.RenderFrame(view, s)
		if frameErr != nil {
			e.logger.Error("frame failed", zap.Error(frameErr))
		}

		if e.profilingEnabled {
			e.profiler.Tick(e.frameStats(frame, frameErr))
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(lastRender); remaining > 0 {
				timer := time.NewTimer(remaining)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil
				case <-timer.C:
				}
			}
		}
	}
}

func (e *engine) frameStats(frame *render.Frame, err error) profiler.FrameStats {
	stats := profiler.FrameStats{Errors: len(multierr.Errors(err))}
	if frame == nil {
		return stats
	}
	stats.Items = frame.ItemCount()
	stats.Lights = len(frame.Lights)
	stats.Casters = len(frame.ShadowCasters)
	for _, c := range frame.ShadowCasters {
		if src, ok := c.(casterSource); ok {
			stats.CasterItems += src.Casters().ItemCount()
		}
	}
	return stats
}

func (e *engine) currentView() (camera.Camera, *scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view, e.scene
}

func (e *engine) SetView(view camera.Camera, s *scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = view
	e.scene = s
}

func (e *engine) SetPassExecutor(executor PassExecutor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executor = executor
}

// SetTickCallback registers the function called before every frame.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Collector() render.Collector {
	return e.collector
}

func (e *engine) Close() {
	if e.shadowPool != nil {
		e.shadowPool.Stop()
		e.shadowPool = nil
	}
}

// frameDuration converts a frame rate to the minimum frame duration; 0 means uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
