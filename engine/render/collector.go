package render

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/effect"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Bucket selects one of the four draw lists.
type Bucket int

const (
	BucketOpaqueStatic Bucket = iota
	BucketOpaqueDynamic
	BucketTransparentStatic
	BucketTransparentDynamic

	numBuckets
)

// BucketFor returns the draw list a material belongs to: dynamic or static lighting, crossed with
// transparent (blends or samples the backbuffer) or opaque.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - Bucket: the bucket
func BucketFor(m material.Material) Bucket {
	b := BucketOpaqueStatic
	if m.Transparent() {
		b = BucketTransparentStatic
	}
	if m.DynamicLighting() {
		b++
	}
	return b
}

// Transparent reports whether the bucket is sorted back to front.
func (b Bucket) Transparent() bool {
	return b == BucketTransparentStatic || b == BucketTransparentDynamic
}

// collector is the implementation of the Collector interface. It is also the scene.Visitor used
// for its own traversal.
type collector struct {
	logger *zap.Logger
	arena  *ItemArena

	cullingDisabled bool

	cam     camera.Camera
	forward mgl32.Vec3
	frustum common.Frustum

	buckets          [numBuckets][]*RenderItem
	lights           []light.Light
	casters          []light.ShadowMapRenderer
	effects          []effect.Effect
	ambient          mgl32.Vec3
	needsNormalDepth bool
	needsBackbuffer  bool
}

// Collector defines the per-frame visible set extraction for one camera.
//
// Collect walks a scene, culls against the camera frustum and fills four sorted draw lists plus
// the frame's lights, shadow caster renderers and post effects. Everything returned by the
// accessors is owned by the collector and is only valid until the next Collect.
type Collector interface {
	// Collect replaces the collector's contents with the visible set of a scene.
	// The camera must have been updated for this frame.
	//
	// Parameters:
	//   - cam: the viewing camera
	//   - s: the scene
	Collect(cam camera.Camera, s *scene.Scene)

	// Camera returns the camera of the last Collect.
	//
	// Returns:
	//   - camera.Camera: the camera, or nil before the first Collect
	Camera() camera.Camera

	// Bucket returns one sorted draw list.
	//
	// Parameters:
	//   - b: the bucket
	//
	// Returns:
	//   - []*RenderItem: the items in draw order
	Bucket(b Bucket) []*RenderItem

	// OpaqueStatic returns the opaque, statically lit items, front to back.
	//
	// Returns:
	//   - []*RenderItem: the items in draw order
	OpaqueStatic() []*RenderItem

	// OpaqueDynamic returns the opaque, dynamically lit items, front to back.
	//
	// Returns:
	//   - []*RenderItem: the items in draw order
	OpaqueDynamic() []*RenderItem

	// TransparentStatic returns the transparent, statically lit items, back to front.
	//
	// Returns:
	//   - []*RenderItem: the items in draw order
	TransparentStatic() []*RenderItem

	// TransparentDynamic returns the transparent, dynamically lit items, back to front.
	//
	// Returns:
	//   - []*RenderItem: the items in draw order
	TransparentDynamic() []*RenderItem

	// Lights returns the enabled, non-ambient lights in view, ordered by type with shadow
	// casters last within each type.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// ShadowCasters returns the shadow map renderers of the shadow-casting lights, in light order.
	//
	// Returns:
	//   - []light.ShadowMapRenderer: the renderers
	ShadowCasters() []light.ShadowMapRenderer

	// Effects returns the enabled post effects: those attached to scene nodes in view, then
	// those attached to the camera.
	//
	// Returns:
	//   - []effect.Effect: the effects
	Effects() []effect.Effect

	// AmbientColor returns the summed irradiance of every ambient light in view.
	//
	// Returns:
	//   - mgl32.Vec3: the ambient color
	AmbientColor() mgl32.Vec3

	// NeedsNormalDepth reports whether any collected effect or material reads the normal+depth buffer.
	//
	// Returns:
	//   - bool: true if the buffer must be generated this frame
	NeedsNormalDepth() bool

	// NeedsBackbuffer reports whether any collected effect or material samples the scene color.
	//
	// Returns:
	//   - bool: true if a scene color copy must be made this frame
	NeedsBackbuffer() bool

	// ItemCount returns the number of render items collected.
	//
	// Returns:
	//   - int: the item count
	ItemCount() int

	// Snapshot bundles the accessors into one value for a pass executor.
	//
	// Returns:
	//   - Frame: the frame, valid until the next Collect
	Snapshot() Frame
}

var _ Collector = &collector{}
var _ scene.Visitor = &collector{}

// NewCollector creates a Collector whose item arena is sized from the render context.
//
// Parameters:
//   - rc: the render context
//   - options: functional options to configure the collector
//
// Returns:
//   - Collector: the collector
func NewCollector(rc render_context.RenderContext, options ...CollectorBuilderOption) Collector {
	c := &collector{logger: rc.Logger().Named("collector")}
	capacity := rc.ItemCapacity()
	for _, option := range options {
		option(c, &capacity)
	}
	c.arena = NewItemArena(capacity, c.logger)
	return c
}

func (c *collector) Collect(cam camera.Camera, s *scene.Scene) {
	if cam == nil || s == nil {
		panic("render: Collect requires a camera and a scene")
	}
	c.cam = cam
	c.forward = cam.Forward()
	c.frustum = cam.Frustum()
	c.reset()

	s.Accept(c)

	for _, e := range cam.Effects() {
		c.addEffect(e)
	}

	for b := range c.buckets {
		if Bucket(b).Transparent() {
			slices.SortStableFunc(c.buckets[b], CompareTransparent)
		} else {
			slices.SortStableFunc(c.buckets[b], CompareOpaque)
		}
	}
	slices.SortStableFunc(c.lights, CompareLights)

	// Casters follow the sorted light order so light i's shadow slot matches its caster index.
	c.casters = c.casters[:0]
	for _, l := range c.lights {
		if l.CastsShadows() {
			c.casters = append(c.casters, l.ShadowMapRenderer())
		}
	}
}

func (c *collector) reset() {
	c.arena.Reset()
	for b := range c.buckets {
		clear(c.buckets[b])
		c.buckets[b] = c.buckets[b][:0]
	}
	clear(c.lights)
	c.lights = c.lights[:0]
	clear(c.casters)
	c.casters = c.casters[:0]
	clear(c.effects)
	c.effects = c.effects[:0]
	c.ambient = mgl32.Vec3{}
	c.needsNormalDepth = false
	c.needsBackbuffer = false
}

func (c *collector) intersects(bounds common.AABB) bool {
	return c.cullingDisabled || common.IntersectsPlanes(bounds, c.frustum.Planes[:])
}

func (c *collector) addEffect(e effect.Effect) {
	if e == nil || !e.Enabled() {
		return
	}
	c.effects = append(c.effects, e)
	c.needsNormalDepth = c.needsNormalDepth || e.NeedsNormalDepth()
	c.needsBackbuffer = c.needsBackbuffer || e.NeedsBackbuffer()
}

func (c *collector) Qualifies(n *scene.Node) bool {
	return n.Visible() && c.intersects(n.WorldBounds())
}

func (c *collector) VisitScene(s *scene.Scene, world mgl32.Mat4, _ common.AABB) {
	if sky := s.Skybox(); sky != nil {
		c.VisitModelInstance(sky, world, common.InfiniteAABB())
	}
}

func (c *collector) VisitModelInstance(inst model.Instance, world mgl32.Mat4, bounds common.AABB) {
	if !inst.Visible() || !c.intersects(bounds) {
		return
	}
	hint := bounds.Center().Dot(c.forward)

	for _, mi := range inst.MeshInstances() {
		if !mi.Visible() {
			continue
		}
		mat := mi.Material()
		if !mat.HasPass(material.PassColor) {
			continue
		}

		item := c.arena.Alloc()
		item.Material = mat
		item.MeshInstance = mi
		item.SkeletonMatrices = inst.SkeletonMatrices(mi)
		item.WorldMatrix = world
		item.WorldBounds = bounds
		item.Camera = c.cam
		item.RenderOrderHint = hint

		b := BucketFor(mat)
		c.buckets[b] = append(c.buckets[b], item)
		c.needsNormalDepth = c.needsNormalDepth || mat.NeedsNormalDepth()
		c.needsBackbuffer = c.needsBackbuffer || mat.NeedsBackbuffer()
	}
}

func (c *collector) VisitLight(l light.Light, _ mgl32.Mat4, _ common.AABB) {
	if l.Enabled() {
		c.lights = append(c.lights, l)
	}
}

func (c *collector) VisitAmbientLight(a *light.AmbientLight) {
	c.ambient = c.ambient.Add(a.ScaledIrradiance())
}

func (c *collector) VisitEffects(effects []effect.Effect) {
	for _, e := range effects {
		c.addEffect(e)
	}
}

func (c *collector) Camera() camera.Camera {
	return c.cam
}

func (c *collector) Bucket(b Bucket) []*RenderItem {
	if b < 0 || b >= numBuckets {
		return nil
	}
	return c.buckets[b]
}

func (c *collector) OpaqueStatic() []*RenderItem {
	return c.buckets[BucketOpaqueStatic]
}

func (c *collector) OpaqueDynamic() []*RenderItem {
	return c.buckets[BucketOpaqueDynamic]
}

func (c *collector) TransparentStatic() []*RenderItem {
	return c.buckets[BucketTransparentStatic]
}

func (c *collector) TransparentDynamic() []*RenderItem {
	return c.buckets[BucketTransparentDynamic]
}

func (c *collector) Lights() []light.Light {
	return c.lights
}

func (c *collector) ShadowCasters() []light.ShadowMapRenderer {
	return c.casters
}

func (c *collector) Effects() []effect.Effect {
	return c.effects
}

func (c *collector) AmbientColor() mgl32.Vec3 {
	return c.ambient
}

func (c *collector) NeedsNormalDepth() bool {
	return c.needsNormalDepth
}

func (c *collector) NeedsBackbuffer() bool {
	return c.needsBackbuffer
}

func (c *collector) ItemCount() int {
	return c.arena.Len()
}

func (c *collector) Snapshot() Frame {
	return Frame{
		Camera:             c.cam,
		OpaqueStatic:       c.buckets[BucketOpaqueStatic],
		OpaqueDynamic:      c.buckets[BucketOpaqueDynamic],
		TransparentStatic:  c.buckets[BucketTransparentStatic],
		TransparentDynamic: c.buckets[BucketTransparentDynamic],
		Lights:             c.lights,
		ShadowCasters:      c.casters,
		Effects:            c.effects,
		Ambient:            c.ambient,
		NeedsNormalDepth:   c.needsNormalDepth,
		NeedsBackbuffer:    c.needsBackbuffer,
	}
}
