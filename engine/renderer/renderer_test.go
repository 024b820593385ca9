package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/render"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtlasDimensions(t *testing.T) {
	tests := []struct {
		tiles int
		w, h  uint32
	}{
		{0, 512, 512},
		{1, 512, 512},
		{2, 1024, 512},
		{3, 1024, 1024},
		{4, 1024, 1024},
	}
	for _, tt := range tests {
		w, h := AtlasDimensions(tt.tiles, 512)
		assert.Equal(t, tt.w, w, "tiles=%d", tt.tiles)
		assert.Equal(t, tt.h, h, "tiles=%d", tt.tiles)
	}
}

func TestTileViewport(t *testing.T) {
	assert.Equal(t, Viewport{X: 0, Y: 0, Width: 256, Height: 256}, TileViewport(0, 256))
	assert.Equal(t, Viewport{X: 256, Y: 0, Width: 256, Height: 256}, TileViewport(1, 256))
	assert.Equal(t, Viewport{X: 0, Y: 256, Width: 256, Height: 256}, TileViewport(2, 256))
	assert.Equal(t, Viewport{X: 256, Y: 256, Width: 256, Height: 256}, TileViewport(3, 256))
}

func TestNewDepthAtlasPicksHeadlessWithoutGPU(t *testing.T) {
	atlas := NewDepthAtlas(render_context.NewRenderContext())
	assert.Equal(t, BackendTypeHeadless, atlas.Backend())
	assert.Equal(t, "headless", atlas.Backend().String())

	assert.Panics(t, func() {
		NewDepthAtlas(render_context.NewRenderContext(), WithBackend(BackendTypeWGPU))
	})
}

func TestHeadlessAllocateIsLazy(t *testing.T) {
	atlas := NewHeadlessDepthAtlas(render_context.NewRenderContext())
	assert.False(t, atlas.Allocated())
	w, h := atlas.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)

	require.NoError(t, atlas.Allocate(1024, 512))
	require.NoError(t, atlas.Allocate(1024, 512))
	assert.Equal(t, 1, atlas.Allocations())

	require.NoError(t, atlas.Allocate(1024, 1024))
	assert.Equal(t, 2, atlas.Allocations())
	w, h = atlas.Size()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(1024), h)

	assert.Error(t, atlas.Allocate(0, 16))

	atlas.Release()
	assert.False(t, atlas.Allocated())
}

func TestHeadlessRenderTiles(t *testing.T) {
	atlas := NewHeadlessDepthAtlas(render_context.NewRenderContext())
	assert.Error(t, atlas.RenderTiles(nil), "unallocated atlas")

	require.NoError(t, atlas.Allocate(512, 512))

	mesh := model.NewMesh(model.WithName("cube"))
	caster := &render.RenderItem{
		Material:     material.NewMaterial(),
		MeshInstance: model.NewMeshInstance(mesh, material.NewMaterial()),
		WorldMatrix:  mgl32.Ident4(),
	}
	noShadow := &render.RenderItem{
		Material:     material.NewMaterial(material.WithPass(material.PassGeometry, nil)),
		MeshInstance: model.NewMeshInstance(mesh, material.NewMaterial()),
		WorldMatrix:  mgl32.Ident4(),
	}

	vp := mgl32.Scale3D(2, 2, 2)
	tiles := []Tile{
		{Viewport: TileViewport(0, 256), ViewProjection: vp, Items: []*render.RenderItem{caster, noShadow}},
		{Viewport: TileViewport(1, 256), ViewProjection: vp, Items: []*render.RenderItem{caster}},
	}
	require.NoError(t, atlas.RenderTiles(tiles))

	frame, ok := atlas.LastFrame()
	require.True(t, ok)
	assert.Equal(t, 1, frame.Clears)
	require.Len(t, frame.Tiles, 2)
	assert.Equal(t, 1, frame.Tiles[0].Draws)
	assert.Equal(t, 1, frame.Tiles[0].Skipped)
	assert.Equal(t, 1, frame.Tiles[1].Draws)
	assert.Equal(t, TileViewport(1, 256), frame.Tiles[1].Viewport)
	assert.Equal(t, vp, frame.Tiles[1].ViewProjection)
	assert.Equal(t, 1, atlas.FrameCount())
}

func TestPutMat4LittleEndian(t *testing.T) {
	buf := make([]byte, drawUniformSize)
	putMat4(buf, mgl32.Ident4())
	// 1.0f == 0x3f800000
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[0:4])
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[4:8])
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[60:64])
}
