// Package config loads engine options from TOML documents.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// MinShadowMapSize is the smallest accepted cascade tile size in texels.
	MinShadowMapSize = 16

	// MaxShadowMapSize is the largest accepted cascade tile size. Two tiles side by side must
	// still fit the 8192 texel texture limit of baseline WebGPU adapters.
	MaxShadowMapSize = 4096

	// MaxParallelShadowWorkers bounds the shadow preparation worker pool.
	MaxParallelShadowWorkers = 64
)

// ShadowOptions configures cascade shadow rendering.
type ShadowOptions struct {
	Cascades int    `toml:"cascades"`
	MapSize  uint32 `toml:"map_size"`
}

// RenderOptions configures render collection.
type RenderOptions struct {
	ItemCapacity int `toml:"item_capacity"`
}

// EngineOptions configures the frame driver.
type EngineOptions struct {
	// ParallelShadowWorkers is the worker count for shadow preparation. 0 prepares serially.
	ParallelShadowWorkers int `toml:"parallel_shadow_workers"`

	// FrameLimit caps the frames per second of Run. 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit"`
}

// LogOptions configures the zap logger built by RenderContext.
type LogOptions struct {
	// Level is a zap level name: debug, info, warn, error. Empty disables logging.
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Options is the root of a configuration document.
type Options struct {
	Shadow ShadowOptions `toml:"shadow"`
	Render RenderOptions `toml:"render"`
	Engine EngineOptions `toml:"engine"`
	Log    LogOptions    `toml:"log"`
}

// Default returns the options every missing key falls back to.
//
// Returns:
//   - Options: the defaults
func Default() Options {
	return Options{
		Shadow: ShadowOptions{
			Cascades: render_context.DefaultCascades,
			MapSize:  render_context.DefaultShadowMapSize,
		},
		Render: RenderOptions{
			ItemCapacity: render_context.DefaultItemCapacity,
		},
	}
}

// Load reads and parses a TOML file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Options: the validated options
//   - error: error if the file cannot be read or decoded
func Load(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	opts, err := Decode(f)
	if err != nil {
		return Options{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return opts, nil
}

// Parse decodes a TOML document held in memory.
//
// Parameters:
//   - data: the document
//
// Returns:
//   - Options: the validated options
//   - error: error if decoding fails
func Parse(data []byte) (Options, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a TOML document from r. Keys the document omits keep their defaults, unknown
// keys are rejected and the result is validated.
//
// Parameters:
//   - r: the document reader
//
// Returns:
//   - Options: the validated options
//   - error: error if decoding fails
func Decode(r io.Reader) (Options, error) {
	opts := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Options{}, fmt.Errorf("failed to decode config: unknown keys:\n%s", strict.String())
		}
		return Options{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate clamps numeric options into their supported ranges and checks the log level.
//
// Returns:
//   - error: error if the log level is not a zap level name
func (o *Options) Validate() error {
	o.Shadow.Cascades = min(max(o.Shadow.Cascades, 1), render_context.MaxCascades)
	o.Shadow.MapSize = common.Coalesce(o.Shadow.MapSize, render_context.DefaultShadowMapSize)
	o.Shadow.MapSize = min(max(o.Shadow.MapSize, MinShadowMapSize), MaxShadowMapSize)
	o.Render.ItemCapacity = max(common.Coalesce(o.Render.ItemCapacity, render_context.DefaultItemCapacity), 1)
	o.Engine.ParallelShadowWorkers = min(max(o.Engine.ParallelShadowWorkers, 0), MaxParallelShadowWorkers)
	o.Engine.FrameLimit = max(o.Engine.FrameLimit, 0)

	o.Log.Level = strings.ToLower(strings.TrimSpace(o.Log.Level))
	if o.Log.Level != "" {
		if _, err := zapcore.ParseLevel(o.Log.Level); err != nil {
			return fmt.Errorf("failed to parse log level: %w", err)
		}
	}
	return nil
}

// Logger builds the zap logger the options describe. An empty level yields a no-op logger.
//
// Returns:
//   - *zap.Logger: the logger
//   - error: error if the logger cannot be built
func (o Options) Logger() (*zap.Logger, error) {
	if o.Log.Level == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(o.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if o.Log.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// RenderContext builds the immutable render context of the options. Extra options are applied
// last, which is how a GPU device is attached.
//
// Parameters:
//   - options: additional render context options
//
// Returns:
//   - render_context.RenderContext: the context
//   - error: error if the logger cannot be built
func (o Options) RenderContext(options ...render_context.RenderContextBuilderOption) (render_context.RenderContext, error) {
	logger, err := o.Logger()
	if err != nil {
		return render_context.RenderContext{}, err
	}

	all := []render_context.RenderContextBuilderOption{
		render_context.WithLogger(logger),
		render_context.WithCascades(o.Shadow.Cascades),
		render_context.WithShadowMapSize(o.Shadow.MapSize),
		render_context.WithItemCapacity(o.Render.ItemCapacity),
	}
	return render_context.NewRenderContext(append(all, options...)...), nil
}
