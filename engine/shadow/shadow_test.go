package shadow

import (
	"math"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/render"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitBox = common.NewAABB(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5})

func casterAt(name string, pos mgl32.Vec3, options ...model.InstanceBuilderOption) *scene.Node {
	mesh := model.NewMesh(model.WithName(name), model.WithBounds(unitBox))
	options = append([]model.InstanceBuilderOption{model.WithMesh(mesh, material.NewMaterial())}, options...)
	inst := model.NewInstance(options...)
	return scene.NewNode(scene.WithName(name), scene.WithTranslation(pos[0], pos[1], pos[2]),
		scene.WithPayload(scene.ModelPayload(inst)))
}

func names(items []*render.RenderItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.MeshInstance.Mesh().Name()
	}
	slices.Sort(out)
	return out
}

func sunLight() light.Light {
	return light.NewLight(light.LightTypeDirectional,
		light.WithPose(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}),
		light.WithCastsShadows(true))
}

func newTestRenderer(t *testing.T, options ...CascadeShadowMapRendererBuilderOption) (CascadeShadowMapRenderer, renderer.HeadlessDepthAtlas) {
	t.Helper()
	rc := render_context.NewRenderContext()
	atlas := renderer.NewHeadlessDepthAtlas(rc)
	options = append([]CascadeShadowMapRendererBuilderOption{WithDepthAtlas(atlas)}, options...)
	return NewCascadeShadowMapRenderer(rc, sunLight(), options...), atlas
}

// testScene holds casters along the view axis of a camera at the origin looking down -Z, lit
// from straight above.
func testScene() *scene.Scene {
	s := scene.NewScene("shadows", scene.WithNodes(
		casterAt("near", mgl32.Vec3{0, 0, -5}),
		casterAt("mid", mgl32.Vec3{0, 0, -30}),
		casterAt("far", mgl32.Vec3{0, 0, -80}),
		casterAt("above", mgl32.Vec3{0, 50, -10}),
		casterAt("side", mgl32.Vec3{200, 0, -10}),
		casterAt("behind", mgl32.Vec3{0, 0, 50}),
		casterAt("below", mgl32.Vec3{0, -50, -10}),
		casterAt("no-cast", mgl32.Vec3{0, 0, -6}, model.WithCastShadows(false)),
	))
	s.UpdateWorldTransforms()
	return s
}

func project(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	return v.Vec3().Mul(1 / v[3])
}

func TestSplitDistances(t *testing.T) {
	r, _ := newTestRenderer(t, WithCascadeCount(3))
	impl := r.(*cascadeShadowMapRenderer)

	impl.updateSplitDistances(0, 100)
	want := []float32{16, 40, 100}
	got := r.SplitDistances()
	require.Len(t, got, 3)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "split %d", i)
		assert.InDelta(t, want[i], r.SplitDistance(i), 1e-4, "split %d", i)
	}
	assert.Zero(t, r.SplitDistance(3))
	assert.Zero(t, r.SplitDistance(-1))
}

func TestSplitRatiosDecreaseGeometrically(t *testing.T) {
	ratios := SplitRatios(4)
	require.Len(t, ratios, 4)
	assert.InDelta(t, 1.0, ratios[3], 1e-6)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0.4, ratios[i]/ratios[i+1], 1e-5)
	}
}

func TestCascadeCountClamped(t *testing.T) {
	r, _ := newTestRenderer(t, WithCascadeCount(7))
	assert.Equal(t, MaxCascades, r.CascadeCount())

	r.SetCascadeCount(0)
	assert.Equal(t, 1, r.CascadeCount())
	assert.Len(t, r.SplitDistances(), 1)
}

func TestAtlasLayout(t *testing.T) {
	r, atlas := newTestRenderer(t, WithCascadeCount(3), WithShadowMapSize(512))

	w, h := r.AtlasSize()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(1024), h)
	assert.Equal(t, AtlasInvalid, r.AtlasState())
	assert.Error(t, r.Execute(), "settings never prepared")

	cam := camera.NewCamera()
	s := testScene()
	require.NoError(t, r.Render(cam, s))
	assert.Equal(t, AtlasClean, r.AtlasState())
	assert.Equal(t, renderer.Viewport{X: 0, Y: 512, Width: 512, Height: 512}, r.Viewport(2))
	assert.Equal(t, renderer.Viewport{}, r.Viewport(3))

	require.NoError(t, r.Render(cam, s))
	assert.Equal(t, 1, atlas.Allocations(), "atlas is not reallocated between frames")

	r.SetCascadeCount(1)
	assert.Equal(t, AtlasInvalid, r.AtlasState())
	require.NoError(t, r.Render(cam, s))
	assert.Equal(t, 2, atlas.Allocations())
	aw, ah := atlas.Size()
	assert.Equal(t, uint32(512), aw)
	assert.Equal(t, uint32(512), ah)

	r.SetShadowMapSize(256)
	require.NoError(t, r.Render(cam, s))
	assert.Equal(t, 3, atlas.Allocations())
}

func TestCascadeCasterMembership(t *testing.T) {
	r, atlas := newTestRenderer(t, WithCascadeCount(3))
	require.NoError(t, r.Render(camera.NewCamera(), testScene()))

	casters := r.Casters()
	assert.Equal(t, []string{"above", "near"}, names(casters.Items(0)))
	assert.Equal(t, []string{"above", "mid", "near"}, names(casters.Items(1)))
	assert.Equal(t, []string{"above", "far", "mid", "near"}, names(casters.Items(2)))
	assert.Nil(t, casters.Items(3))
	assert.Equal(t, 9, casters.ItemCount())

	bounds := casters.Bounds()
	assert.InDelta(t, -80.5, bounds.Min[2], 1e-4)
	assert.InDelta(t, -4.5, bounds.Max[2], 1e-4)
	assert.InDelta(t, 50.5, bounds.Max[1], 1e-4)
	assert.InDelta(t, -0.5, bounds.Min[1], 1e-4)

	for i := 0; i < 3; i++ {
		for _, it := range casters.Items(i) {
			assert.Same(t, r.CascadeCamera(i), it.Camera)
		}
	}

	frame, ok := atlas.LastFrame()
	require.True(t, ok)
	assert.Equal(t, 1, frame.Clears)
	require.Len(t, frame.Tiles, 3)
	for i, tile := range frame.Tiles {
		assert.Equal(t, len(casters.Items(i)), tile.Draws)
		assert.Equal(t, r.Viewport(i), tile.Viewport)
	}
}

func TestCasterWithoutGeometryPassSkipped(t *testing.T) {
	mesh := model.NewMesh(model.WithName("decal"), model.WithBounds(unitBox))
	noShadow := material.NewMaterial(material.WithPass(material.PassGeometry, nil))
	s := scene.NewScene("decals", scene.WithNodes(
		scene.NewNode(scene.WithTranslation(0, 0, -5),
			scene.WithPayload(scene.ModelPayload(model.NewInstance(model.WithMesh(mesh, noShadow))))),
	))
	s.UpdateWorldTransforms()

	r, _ := newTestRenderer(t, WithCascadeCount(2))
	require.NoError(t, r.Render(camera.NewCamera(), s))
	assert.Empty(t, r.Casters().Items(0))
	assert.Empty(t, r.Casters().Items(1))
}

func TestShadowMatricesMapIntoTiles(t *testing.T) {
	r, _ := newTestRenderer(t, WithCascadeCount(3))
	require.NoError(t, r.Render(camera.NewCamera(), testScene()))

	inTile := func(cascade int, p mgl32.Vec3) {
		uvw := project(r.ShadowMatrix(cascade), p)
		vp := r.Viewport(cascade)
		u0, v0 := float32(vp.X)/2048, float32(vp.Y)/2048
		assert.GreaterOrEqual(t, uvw[0], u0, "cascade %d u", cascade)
		assert.LessOrEqual(t, uvw[0], u0+0.5, "cascade %d u", cascade)
		assert.GreaterOrEqual(t, uvw[1], v0, "cascade %d v", cascade)
		assert.LessOrEqual(t, uvw[1], v0+0.5, "cascade %d v", cascade)
		assert.GreaterOrEqual(t, uvw[2], float32(0), "cascade %d depth", cascade)
		assert.LessOrEqual(t, uvw[2], float32(1), "cascade %d depth", cascade)
	}
	inTile(0, mgl32.Vec3{0, 0, -5})
	inTile(1, mgl32.Vec3{0, 0, -30})
	inTile(2, mgl32.Vec3{0, 0, -80})

	assert.Equal(t, mgl32.Ident4(), r.ShadowMatrix(3))
}

func TestCascadeLeftEdgeOnTexelGrid(t *testing.T) {
	r, _ := newTestRenderer(t, WithCascadeCount(3), WithShadowMapSize(1024))
	s := testScene()
	cam := camera.NewCamera()

	for _, dx := range []float32{0, 0.001, 0.37, 2.5} {
		cam.SetWorldMatrix(mgl32.Translate3D(dx, 0, 0))
		cam.Update()
		require.NoError(t, r.Render(cam, s))

		for i := 0; i < r.CascadeCount(); i++ {
			b := r.CascadeCamera(i).OrthoBounds()
			width := b.Right - b.Left
			texels := float64(b.Left * 1024 / width)
			assert.InDelta(t, math.Round(texels), texels, 1e-2, "cascade %d dx %v", i, dx)
			assert.InDelta(t, math.Round(float64(width)), float64(width), 1e-3, "whole world units")
		}
	}
}

func TestSnapToTexelSubTexelStability(t *testing.T) {
	// 64 world units over 1024 texels: one texel is 1/16 of a unit.
	a := SnapToTexel(3.01, 64, 1024)
	b := SnapToTexel(3.05, 64, 1024)
	assert.Equal(t, a, b)
	assert.InDelta(t, 3.0, a, 1e-6)

	assert.InDelta(t, 3.0625, SnapToTexel(3.07, 64, 1024), 1e-6)
	assert.Equal(t, float32(1.5), SnapToTexel(1.5, 0, 1024))
}

func TestCascadeOffsetsStableWithinTexel(t *testing.T) {
	const tile = 1024
	r, _ := newTestRenderer(t, WithCascadeCount(3), WithShadowMapSize(tile))
	s := scene.NewScene("empty")
	cam := camera.NewCamera()
	lightInverse := common.InverseAffine(r.Light().WorldMatrix())
	ratios := SplitRatios(3)

	// cell returns the texel cell the unclipped slice edge falls in along one light-space axis.
	cell := func(lo, hi float32) (float32, float32) {
		extent := math32.Max(math32.Ceil(hi-lo), minCascadeExtent)
		return math32.Floor(lo * (float32(tile) / extent)), extent
	}

	type cascadeState struct {
		leftCell, leftExtent     float32
		bottomCell, bottomExtent float32
		bounds                   camera.OrthoBounds
	}
	var prev [3]cascadeState
	stable, crossed := 0, 0

	for step := 0; step <= 200; step++ {
		d := float32(step) * 0.0005
		cam.SetWorldMatrix(mgl32.Translate3D(d, 0, -d))
		cam.Update()
		require.NoError(t, r.Render(cam, s))
		frustum := cam.Frustum()

		for i := 0; i < 3; i++ {
			slice := SliceBounds(frustum.Corners, lightInverse, ratios[i])
			var cur cascadeState
			cur.leftCell, cur.leftExtent = cell(slice.Min[0], slice.Max[0])
			cur.bottomCell, cur.bottomExtent = cell(slice.Min[1], slice.Max[1])
			cur.bounds = r.CascadeCamera(i).OrthoBounds()

			if step > 0 {
				p := prev[i]
				if p.leftCell == cur.leftCell && p.leftExtent == cur.leftExtent {
					assert.Equal(t, p.bounds.Left, cur.bounds.Left, "cascade %d step %d", i, step)
					stable++
				} else {
					crossed++
				}
				if p.bottomCell == cur.bottomCell && p.bottomExtent == cur.bottomExtent {
					assert.Equal(t, p.bounds.Bottom, cur.bounds.Bottom, "cascade %d step %d", i, step)
				}
			}
			assert.InDelta(t, cur.leftCell*cur.leftExtent/tile, cur.bounds.Left, 1e-3, "cascade %d step %d", i, step)
			prev[i] = cur
		}
	}
	assert.Positive(t, stable)
	assert.Positive(t, crossed, "the walk should cross at least one texel boundary")
}

func TestFitCascadeBoxDegenerate(t *testing.T) {
	point := common.NewAABB(mgl32.Vec3{2, 3, -4}, mgl32.Vec3{2, 3, -4})
	box := FitCascadeBox(point, common.EmptyAABB(), -10, 1024)

	assert.Equal(t, float32(1), box.Right-box.Left)
	assert.Equal(t, float32(1), box.Top-box.Bottom)
	assert.GreaterOrEqual(t, box.Far-box.Near, float32(1))

	// casters disjoint from the slice leave a negative extent that is floored as well
	slice := common.NewAABB(mgl32.Vec3{0, 0, -10}, mgl32.Vec3{4, 4, 0})
	casters := common.NewAABB(mgl32.Vec3{10, 10, -5}, mgl32.Vec3{12, 12, -1})
	box = FitCascadeBox(slice, casters, -10, 1024)
	assert.Equal(t, float32(1), box.Right-box.Left)
	assert.Equal(t, float32(1), box.Top-box.Bottom)

	proj := common.Ortho(box.Left, box.Right, box.Bottom, box.Top, box.Near, box.Far)
	assert.NotZero(t, proj.Det())
}

func TestFitCascadeBoxClipsToCasters(t *testing.T) {
	slice := common.NewAABB(mgl32.Vec3{-20, -20, -50}, mgl32.Vec3{20, 20, -1})
	casters := common.NewAABB(mgl32.Vec3{-4, -30, -30}, mgl32.Vec3{4, 30, 10})

	box := FitCascadeBox(slice, casters, -40, 1024)
	assert.InDelta(t, -4, box.Left, 1e-4)
	assert.InDelta(t, 4, box.Right, 1e-4)
	assert.InDelta(t, -20, box.Bottom, 1e-4)
	assert.InDelta(t, 20, box.Top, 1e-4)
	assert.InDelta(t, -10, box.Near, 1e-4, "near reaches the casters closest to the light")
	assert.InDelta(t, 40, box.Far, 1e-4, "far clamped to the view frustum")
}

func TestAtlasUVTransform(t *testing.T) {
	m := AtlasUVTransform(3, 2, 2)
	assert.InDelta(t, 0.5, project(m, mgl32.Vec3{-1, 1, 0})[0], 1e-6)
	assert.InDelta(t, 0.5, project(m, mgl32.Vec3{-1, 1, 0})[1], 1e-6)
	assert.InDelta(t, 1.0, project(m, mgl32.Vec3{1, -1, 0})[0], 1e-6)
	assert.InDelta(t, 1.0, project(m, mgl32.Vec3{1, -1, 0})[1], 1e-6)

	single := AtlasUVTransform(0, 1, 1)
	uv := project(single, mgl32.Vec3{0, 0, 0.25})
	assert.InDelta(t, 0.5, uv[0], 1e-6)
	assert.InDelta(t, 0.5, uv[1], 1e-6)
	assert.InDelta(t, 0.25, uv[2], 1e-6)
}

func TestRendererAttachesToLight(t *testing.T) {
	l := sunLight()
	assert.False(t, l.CastsShadows())

	r := NewCascadeShadowMapRenderer(render_context.NewRenderContext(), l)
	assert.True(t, l.CastsShadows())
	assert.Same(t, r, l.ShadowMapRenderer())
	assert.Equal(t, l, r.Light())
	assert.Equal(t, renderer.BackendTypeHeadless, r.Atlas().Backend())
	assert.Equal(t, render_context.DefaultCascades, r.CascadeCount())
	assert.Equal(t, uint32(render_context.DefaultShadowMapSize), r.ShadowMapSize())

	assert.Panics(t, func() { NewCascadeShadowMapRenderer(render_context.NewRenderContext(), nil) })
}

func TestEmptySceneProducesFiniteMatrices(t *testing.T) {
	r, _ := newTestRenderer(t)
	s := scene.NewScene("empty")
	require.NoError(t, r.Render(camera.NewCamera(), s))
	assert.True(t, r.Casters().Bounds().IsEmpty())

	for i := 0; i < r.CascadeCount(); i++ {
		for _, v := range r.ShadowMatrix(i) {
			assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
		}
	}
}
