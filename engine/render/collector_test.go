package render

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/effect"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubShadowRenderer struct{ l light.Light }

func (s *stubShadowRenderer) Light() light.Light          { return s.l }
func (s *stubShadowRenderer) CascadeCount() int           { return 1 }
func (s *stubShadowRenderer) ShadowMatrix(int) mgl32.Mat4 { return mgl32.Ident4() }
func (s *stubShadowRenderer) SplitDistance(int) float32   { return 0 }

var unitBox = common.NewAABB(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5})

func objectAt(name string, mat material.Material, pos mgl32.Vec3) *scene.Node {
	mesh := model.NewMesh(model.WithName(name), model.WithBounds(unitBox))
	inst := model.NewInstance(model.WithMesh(mesh, mat))
	return scene.NewNode(scene.WithName(name), scene.WithTranslation(pos[0], pos[1], pos[2]),
		scene.WithPayload(scene.ModelPayload(inst)))
}

func meshNames(items []*RenderItem) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.MeshInstance.Mesh().Name()
	}
	return names
}

func newTestCollector(options ...CollectorBuilderOption) Collector {
	return NewCollector(render_context.NewRenderContext(), options...)
}

func TestOpaqueCubeAndTransparentQuad(t *testing.T) {
	opaque := material.NewMaterial()
	glass := material.NewMaterial(material.WithBlendState(material.AlphaBlend))

	quad := objectAt("quad", glass, mgl32.Vec3{0, 0, -5})
	s := scene.NewScene("e2e", scene.WithNodes(
		objectAt("cube", opaque, mgl32.Vec3{0, 0, -10}),
		quad,
	))
	cam := camera.NewCamera()
	c := newTestCollector()

	c.Collect(cam, s)
	assert.Equal(t, []string{"cube"}, meshNames(c.OpaqueDynamic()))
	assert.Equal(t, []string{"quad"}, meshNames(c.TransparentDynamic()))
	assert.Empty(t, c.OpaqueStatic())
	assert.Empty(t, c.TransparentStatic())
	assert.InDelta(t, 10, c.OpaqueDynamic()[0].RenderOrderHint, 1e-5)

	quad.SetLocalTransform(mgl32.Translate3D(0, 0, -15))
	s.Add(objectAt("pane", glass, mgl32.Vec3{0, 0, -8}))
	c.Collect(cam, s)
	assert.Equal(t, []string{"quad", "pane"}, meshNames(c.TransparentDynamic()))
}

func TestOnlyFrustumItemsAreCollected(t *testing.T) {
	mat := material.NewMaterial()
	s := scene.NewScene("cull", scene.WithNodes(
		objectAt("front", mat, mgl32.Vec3{0, 0, -20}),
		objectAt("behind", mat, mgl32.Vec3{0, 0, 20}),
		objectAt("left", mat, mgl32.Vec3{-200, 0, -20}),
		objectAt("beyond far", mat, mgl32.Vec3{0, 0, -500}),
		objectAt("edge", mat, mgl32.Vec3{0, 0, -100.3}),
	))
	cam := camera.NewCamera()
	c := newTestCollector()
	c.Collect(cam, s)

	assert.ElementsMatch(t, []string{"front", "edge"}, meshNames(c.OpaqueDynamic()))
	assert.Equal(t, 2, c.ItemCount(), "culled objects take no arena slot")
	frustum := cam.Frustum()
	for _, it := range c.OpaqueDynamic() {
		assert.True(t, common.IntersectsPlanes(it.WorldBounds, frustum.Planes[:]))
	}

	all := newTestCollector(WithCullingDisabled(true))
	all.Collect(cam, s)
	assert.Len(t, all.OpaqueDynamic(), 5)
}

func TestBucketSelection(t *testing.T) {
	tests := []struct {
		name string
		mat  material.Material
		want Bucket
	}{
		{"opaque static", material.NewMaterial(material.WithDynamicLighting(false)), BucketOpaqueStatic},
		{"opaque dynamic", material.NewMaterial(), BucketOpaqueDynamic},
		{"blended static", material.NewMaterial(material.WithDynamicLighting(false), material.WithBlendState(material.AdditiveBlend)), BucketTransparentStatic},
		{"backbuffer dynamic", material.NewMaterial(material.WithNeedsBackbuffer(true)), BucketTransparentDynamic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketFor(tt.mat))

			s := scene.NewScene("bucket", scene.WithNodes(objectAt("obj", tt.mat, mgl32.Vec3{0, 0, -10})))
			c := newTestCollector()
			c.Collect(camera.NewCamera(), s)
			assert.Len(t, c.Bucket(tt.want), 1)
			assert.Equal(t, 1, c.ItemCount())
		})
	}
}

func TestSortOrder(t *testing.T) {
	shared := material.NewMaterial()
	first := material.NewMaterial(material.WithRenderOrder(-1))
	glass := material.NewMaterial(material.WithBlendState(material.AlphaBlend))
	overlay := material.NewMaterial(material.WithBlendState(material.AlphaBlend), material.WithRenderOrder(1))

	s := scene.NewScene("sort", scene.WithNodes(
		objectAt("far", shared, mgl32.Vec3{0, 0, -30}),
		objectAt("near", shared, mgl32.Vec3{0, 0, -3}),
		objectAt("first", first, mgl32.Vec3{0, 0, -50}),
		objectAt("glass near", glass, mgl32.Vec3{0, 0, -4}),
		objectAt("overlay", overlay, mgl32.Vec3{0, 0, -60}),
		objectAt("glass far", glass, mgl32.Vec3{0, 0, -40}),
	))
	c := newTestCollector()
	c.Collect(camera.NewCamera(), s)

	assert.Equal(t, []string{"first", "near", "far"}, meshNames(c.OpaqueDynamic()))
	assert.Equal(t, []string{"glass far", "glass near", "overlay"}, meshNames(c.TransparentDynamic()))
}

func TestOpaqueGroupsByMaterialHint(t *testing.T) {
	a := material.NewMaterial(material.WithRenderOrderHint(1))
	b := material.NewMaterial(material.WithRenderOrderHint(2))
	items := []*RenderItem{
		{Material: b, RenderOrderHint: 1},
		{Material: a, RenderOrderHint: 9},
	}
	assert.Positive(t, CompareOpaque(items[0], items[1]))

	same := material.NewMaterial()
	x := &RenderItem{Material: same, RenderOrderHint: 3}
	y := &RenderItem{Material: same, RenderOrderHint: 3}
	assert.Zero(t, CompareOpaque(x, y))
	assert.Zero(t, CompareTransparent(x, y))
}

func TestCollectIsIdempotent(t *testing.T) {
	mat := material.NewMaterial()
	glass := material.NewMaterial(material.WithBlendState(material.AlphaBlend))
	var nodes []*scene.Node
	for i := range 6 {
		nodes = append(nodes, objectAt("o", mat, mgl32.Vec3{float32(i % 2), 0, -float32(5 + i%3)}))
		nodes = append(nodes, objectAt("t", glass, mgl32.Vec3{0, float32(i % 2), -float32(5 + i%2)}))
	}
	s := scene.NewScene("idem", scene.WithNodes(nodes...))
	cam := camera.NewCamera()
	c := newTestCollector(WithItemCapacity(4))

	order := func() [][]*model.MeshInstance {
		var out [][]*model.MeshInstance
		for b := BucketOpaqueStatic; b < numBuckets; b++ {
			var mis []*model.MeshInstance
			for _, it := range c.Bucket(b) {
				mis = append(mis, it.MeshInstance)
			}
			out = append(out, mis)
		}
		return out
	}

	c.Collect(cam, s)
	first := order()
	c.Collect(cam, s)
	assert.Equal(t, first, order())
	assert.Equal(t, 12, c.ItemCount())
}

func TestLightsAmbientAndEffects(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional, light.WithCastsShadows(true))
	sun.SetShadowMapRenderer(&stubShadowRenderer{l: sun})
	moon := light.NewLight(light.LightTypeDirectional)
	lamp := light.NewLight(light.LightTypePoint, light.WithRange(2))
	off := light.NewLight(light.LightTypeSpot, light.WithEnabled(false))
	hiddenLamp := light.NewLight(light.LightTypePoint, light.WithRange(2))

	s := scene.NewScene("lights", scene.WithNodes(
		scene.NewNode(scene.WithTranslation(0, 0, -10), scene.WithPayload(scene.LightPayload(lamp))),
		scene.NewNode(scene.WithPayload(scene.LightPayload(sun))),
		scene.NewNode(scene.WithPayload(scene.LightPayload(moon))),
		scene.NewNode(scene.WithPayload(scene.LightPayload(off))),
		scene.NewNode(scene.WithTranslation(0, 0, 50), scene.WithPayload(scene.LightPayload(hiddenLamp))),
		scene.NewNode(scene.WithPayload(scene.AmbientLightPayload(light.NewAmbientLight(mgl32.Vec3{0.1, 0.1, 0.1}, 1)))),
		scene.NewNode(scene.WithPayload(scene.AmbientLightPayload(light.NewAmbientLight(mgl32.Vec3{0.2, 0, 0}, 2)))),
		scene.NewNode(scene.WithPayload(scene.EffectsPayload(effect.NewEffect(effect.WithName("node"))))),
	))
	cam := camera.NewCamera(camera.WithEffects(effect.Fog(), effect.NewEffect(effect.WithEnabled(false))))
	c := newTestCollector()
	c.Collect(cam, s)

	require.Len(t, c.Lights(), 3)
	assert.Same(t, moon, c.Lights()[0])
	assert.Same(t, sun, c.Lights()[1])
	assert.Same(t, lamp, c.Lights()[2])

	require.Len(t, c.ShadowCasters(), 1)
	assert.Same(t, sun, c.ShadowCasters()[0].Light())

	assert.True(t, c.AmbientColor().ApproxEqualThreshold(mgl32.Vec3{0.5, 0.1, 0.1}, 1e-6))

	require.Len(t, c.Effects(), 2)
	assert.Equal(t, "node", c.Effects()[0].Name())
	assert.Equal(t, "fog", c.Effects()[1].Name())
	assert.True(t, c.NeedsNormalDepth())
	assert.False(t, c.NeedsBackbuffer())

	// flags and ambient are recomputed every frame
	c.Collect(camera.NewCamera(), scene.NewScene("empty"))
	assert.False(t, c.NeedsNormalDepth())
	assert.Equal(t, mgl32.Vec3{}, c.AmbientColor())
	assert.Empty(t, c.Lights())
	assert.Empty(t, c.ShadowCasters())
}

func TestMaterialFlagsAndMissingPass(t *testing.T) {
	refract := material.NewMaterial(material.WithNeedsBackbuffer(true))
	noColor := material.NewMaterial(material.WithPass(material.PassColor, nil))
	s := scene.NewScene("flags", scene.WithNodes(
		objectAt("refract", refract, mgl32.Vec3{0, 0, -5}),
		objectAt("depth only", noColor, mgl32.Vec3{0, 0, -5}),
	))
	c := newTestCollector()
	c.Collect(camera.NewCamera(), s)

	assert.True(t, c.NeedsBackbuffer())
	assert.Equal(t, 1, c.ItemCount())
	assert.Equal(t, []string{"refract"}, meshNames(c.TransparentDynamic()))
}

func TestSkyboxIsCollected(t *testing.T) {
	sky := model.NewInstance(model.WithMesh(model.NewMesh(model.WithName("sky")),
		material.NewMaterial(material.WithDynamicLighting(false), material.WithRenderOrder(100))))
	s := scene.NewScene("sky", scene.WithSkybox(sky))
	c := newTestCollector()
	c.Collect(camera.NewCamera(), s)

	assert.Equal(t, []string{"sky"}, meshNames(c.OpaqueStatic()))
	f := c.Snapshot()
	assert.Equal(t, 1, f.ItemCount())
}

func TestArenaGrowsAndWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	arena := NewItemArena(2, zap.New(core))

	a := arena.Alloc()
	a.RenderOrderHint = 7
	arena.Alloc()
	arena.Alloc()
	assert.Equal(t, 4, arena.Cap())
	assert.Equal(t, 3, arena.Len())
	assert.Equal(t, float32(7), a.RenderOrderHint, "growth keeps earlier slots")
	assert.Equal(t, 1, logs.Len())

	arena.Reset()
	reused := arena.Alloc()
	assert.Same(t, a, reused)
	assert.Zero(t, reused.RenderOrderHint)
}
