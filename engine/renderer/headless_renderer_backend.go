package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// RecordedTile is what the headless atlas saw for one tile of a frame.
type RecordedTile struct {
	Viewport       Viewport
	ViewProjection mgl32.Mat4
	// Draws counts the items that had a geometry pass.
	Draws int
	// Skipped counts the items without one.
	Skipped int
}

// RecordedFrame is one RenderTiles call on the headless atlas.
type RecordedFrame struct {
	Width  uint32
	Height uint32
	Clears int
	Tiles  []RecordedTile
}

// HeadlessDepthAtlas is a DepthAtlas that keeps a record of its allocations and of the last frame
// instead of issuing GPU work. It backs CPU-only runs and tests.
type HeadlessDepthAtlas interface {
	DepthAtlas

	// Allocations returns how many times storage was (re)created.
	//
	// Returns:
	//   - int: the allocation count
	Allocations() int

	// FrameCount returns how many frames were rendered since construction.
	//
	// Returns:
	//   - int: the frame count
	FrameCount() int

	// LastFrame returns the record of the most recent RenderTiles call.
	//
	// Returns:
	//   - RecordedFrame: the frame record
	//   - bool: false if no frame was rendered yet
	LastFrame() (RecordedFrame, bool)
}

type headlessDepthAtlas struct {
	mu     sync.Mutex
	logger *zap.Logger

	width     uint32
	height    uint32
	allocated bool

	allocations int
	frames      int
	last        RecordedFrame
}

var _ HeadlessDepthAtlas = &headlessDepthAtlas{}

// NewHeadlessDepthAtlas creates the recording atlas directly.
//
// Parameters:
//   - rc: the render context
//   - options: functional options to configure the atlas
//
// Returns:
//   - HeadlessDepthAtlas: the atlas
func NewHeadlessDepthAtlas(rc render_context.RenderContext, options ...DepthAtlasBuilderOption) HeadlessDepthAtlas {
	return newHeadlessDepthAtlas(rc, newDepthAtlasConfig(options))
}

func newHeadlessDepthAtlas(rc render_context.RenderContext, _ *depthAtlasConfig) *headlessDepthAtlas {
	return &headlessDepthAtlas{logger: rc.Logger().Named("depth_atlas")}
}

func (h *headlessDepthAtlas) Backend() BackendType {
	return BackendTypeHeadless
}

func (h *headlessDepthAtlas) Allocate(width, height uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.allocated && h.width == width && h.height == height {
		return nil
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("failed to allocate depth atlas: invalid size %dx%d", width, height)
	}
	h.width, h.height = width, height
	h.allocated = true
	h.allocations++
	h.logger.Debug("depth atlas allocated", zap.Uint32("width", width), zap.Uint32("height", height))
	return nil
}

func (h *headlessDepthAtlas) Allocated() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocated
}

func (h *headlessDepthAtlas) Size() (uint32, uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.allocated {
		return 0, 0
	}
	return h.width, h.height
}

func (h *headlessDepthAtlas) RenderTiles(tiles []Tile) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.allocated {
		return errors.New("depth atlas has not been allocated")
	}

	frame := RecordedFrame{
		Width:  h.width,
		Height: h.height,
		Clears: 1,
		Tiles:  make([]RecordedTile, 0, len(tiles)),
	}
	for _, tile := range tiles {
		rec := RecordedTile{Viewport: tile.Viewport, ViewProjection: tile.ViewProjection}
		for _, item := range tile.Items {
			if item.Material.HasPass(material.PassGeometry) {
				rec.Draws++
			} else {
				rec.Skipped++
			}
		}
		frame.Tiles = append(frame.Tiles, rec)
	}
	h.last = frame
	h.frames++
	return nil
}

func (h *headlessDepthAtlas) Allocations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocations
}

func (h *headlessDepthAtlas) FrameCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

func (h *headlessDepthAtlas) LastFrame() (RecordedFrame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.frames > 0
}

func (h *headlessDepthAtlas) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allocated = false
	h.width, h.height = 0, 0
}
