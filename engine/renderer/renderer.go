package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/render"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewport is a rectangle of the atlas in texels, origin at the top-left corner.
type Viewport struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

// Tile is one depth-only pass into a region of the atlas: the geometry items are drawn with the
// tile's view-projection matrix and clipped to its viewport.
type Tile struct {
	Viewport       Viewport
	ViewProjection mgl32.Mat4
	Items          []*render.RenderItem
}

// AtlasDimensions returns the atlas size for a cascade count: one tile wide for a single cascade,
// two tiles wide otherwise, and as many rows as needed for two tiles per row.
//
// Parameters:
//   - tiles: the number of tiles (1 to 4)
//   - tileSize: the width and height of one tile in texels
//
// Returns:
//   - uint32: the atlas width in texels
//   - uint32: the atlas height in texels
func AtlasDimensions(tiles int, tileSize uint32) (uint32, uint32) {
	tiles = max(tiles, 1)
	cols := uint32(1)
	if tiles > 1 {
		cols = 2
	}
	rows := uint32((tiles + 1) / 2)
	return cols * tileSize, rows * tileSize
}

// TileViewport returns the viewport of tile i in a two-column atlas.
//
// Parameters:
//   - i: the tile index
//   - tileSize: the width and height of one tile in texels
//
// Returns:
//   - Viewport: the tile rectangle
func TileViewport(i int, tileSize uint32) Viewport {
	return Viewport{
		X:      uint32(i%2) * tileSize,
		Y:      uint32(i/2) * tileSize,
		Width:  tileSize,
		Height: tileSize,
	}
}

// DepthAtlas is a depth texture split into tiles, one per shadow cascade.
//
// The atlas is allocated lazily by its owner and reallocated only when its size changes. Each
// RenderTiles call is one frame: the whole atlas is cleared once, then every tile's geometry is
// drawn into its viewport.
type DepthAtlas interface {
	// Backend returns the implementation type.
	//
	// Returns:
	//   - BackendType: the backend
	Backend() BackendType

	// Allocate (re)creates the atlas storage. Allocating the size already held is a no-op.
	//
	// Parameters:
	//   - width: the atlas width in texels
	//   - height: the atlas height in texels
	//
	// Returns:
	//   - error: an error if the storage could not be created
	Allocate(width, height uint32) error

	// Allocated reports whether the atlas currently holds storage.
	//
	// Returns:
	//   - bool: true after a successful Allocate and before Release
	Allocated() bool

	// Size returns the allocated atlas size, or zeros when unallocated.
	//
	// Returns:
	//   - uint32: the width in texels
	//   - uint32: the height in texels
	Size() (uint32, uint32)

	// RenderTiles clears the atlas depth once and draws each tile's geometry into its viewport.
	// Items whose material has no geometry pass are skipped.
	//
	// Parameters:
	//   - tiles: the tiles in draw order
	//
	// Returns:
	//   - error: an error if the atlas is unallocated or command submission failed
	RenderTiles(tiles []Tile) error

	// Release frees the atlas storage and any cached GPU resources.
	Release()
}

// NewDepthAtlas creates a DepthAtlas. With BackendTypeAuto the backend follows the render
// context: WebGPU when it carries a device, headless otherwise.
//
// Parameters:
//   - rc: the render context
//   - options: functional options to configure the atlas
//
// Returns:
//   - DepthAtlas: the atlas
func NewDepthAtlas(rc render_context.RenderContext, options ...DepthAtlasBuilderOption) DepthAtlas {
	cfg := newDepthAtlasConfig(options)
	backend := cfg.backend
	if backend == BackendTypeAuto {
		backend = BackendTypeHeadless
		if rc.HasGPU() {
			backend = BackendTypeWGPU
		}
	}

	switch backend {
	case BackendTypeWGPU:
		return newWGPUDepthAtlas(rc, cfg)
	case BackendTypeHeadless:
		return newHeadlessDepthAtlas(rc, cfg)
	default:
		panic(fmt.Sprintf("renderer: unknown backend type %d", backend))
	}
}
