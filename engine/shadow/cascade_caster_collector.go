package shadow

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/render"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// CascadeCull is the input of one cascade to a caster collection: the camera its items are drawn
// with and the planes an object must intersect to land in its list.
type CascadeCull struct {
	Camera camera.Camera
	Planes []common.Plane
}

// CascadeCasterCollector gathers the shadow-casting geometry of a scene for every cascade of one
// light.
//
// Cascades are given nearest first and are expected to be nested: every cascade's volume lies
// inside the volume of the cascade after it. Objects are tested from the farthest cascade to the
// nearest, and the walk stops for an object at the first cascade it misses.
type CascadeCasterCollector interface {
	// Collect replaces the per-cascade lists with the casters of a scene.
	//
	// Parameters:
	//   - s: the scene, with resolved world transforms
	//   - aggregate: the planes bounding every cascade; subtrees outside them are pruned
	//   - cascades: the per-cascade cameras and plane sets, nearest first
	//   - lightDir: the light travel direction, used to order items front to back
	Collect(s *scene.Scene, aggregate []common.Plane, cascades []CascadeCull, lightDir mgl32.Vec3)

	// CascadeCount returns the number of cascades of the last Collect.
	//
	// Returns:
	//   - int: the cascade count
	CascadeCount() int

	// Items returns the geometry pass items of one cascade, grouped by material and ordered
	// front to back along the light.
	//
	// Parameters:
	//   - cascade: the cascade index
	//
	// Returns:
	//   - []*render.RenderItem: the items; nil for an out-of-range index
	Items(cascade int) []*render.RenderItem

	// Bounds returns the world-space union of every collected caster's bounds.
	//
	// Returns:
	//   - common.AABB: the bounds, empty when nothing casts into any cascade
	Bounds() common.AABB

	// ItemCount returns the number of items over all cascades.
	//
	// Returns:
	//   - int: the item count
	ItemCount() int
}

type cascadeCasterCollector struct {
	scene.BaseVisitor

	arena *render.ItemArena

	aggregate []common.Plane
	cascades  []CascadeCull
	lightDir  mgl32.Vec3

	lists  [][]*render.RenderItem
	bounds common.AABB
}

var _ CascadeCasterCollector = &cascadeCasterCollector{}
var _ scene.Visitor = &cascadeCasterCollector{}

// NewCascadeCasterCollector creates a caster collector with its own item arena.
//
// Parameters:
//   - capacity: the initial arena capacity
//   - logger: receives arena growth warnings
//
// Returns:
//   - CascadeCasterCollector: the collector
func NewCascadeCasterCollector(capacity int, logger *zap.Logger) CascadeCasterCollector {
	return &cascadeCasterCollector{
		arena:  render.NewItemArena(capacity, logger),
		bounds: common.EmptyAABB(),
	}
}

func (c *cascadeCasterCollector) Collect(s *scene.Scene, aggregate []common.Plane, cascades []CascadeCull, lightDir mgl32.Vec3) {
	c.arena.Reset()
	c.bounds = common.EmptyAABB()
	c.aggregate = aggregate
	c.cascades = cascades
	c.lightDir = lightDir

	for len(c.lists) < len(cascades) {
		c.lists = append(c.lists, nil)
	}
	for i := range c.lists {
		clear(c.lists[i])
		c.lists[i] = c.lists[i][:0]
	}

	s.Accept(c)

	for i := range cascades {
		slices.SortStableFunc(c.lists[i], render.CompareOpaque)
	}
	c.aggregate = nil
}

func (c *cascadeCasterCollector) CascadeCount() int {
	return len(c.cascades)
}

func (c *cascadeCasterCollector) Items(cascade int) []*render.RenderItem {
	if cascade < 0 || cascade >= len(c.cascades) {
		return nil
	}
	return c.lists[cascade]
}

func (c *cascadeCasterCollector) Bounds() common.AABB {
	return c.bounds
}

func (c *cascadeCasterCollector) ItemCount() int {
	return c.arena.Len()
}

func (c *cascadeCasterCollector) Qualifies(n *scene.Node) bool {
	return n.Visible() && common.IntersectsPlanes(n.WorldBounds(), c.aggregate)
}

func (c *cascadeCasterCollector) VisitModelInstance(inst model.Instance, world mgl32.Mat4, bounds common.AABB) {
	if !inst.Visible() || !inst.CastShadows() || len(c.cascades) == 0 {
		return
	}
	if !common.IntersectsPlanes(bounds, c.aggregate) {
		return
	}
	c.bounds = c.bounds.Grow(bounds)
	hint := bounds.Center().Dot(c.lightDir)

	last := len(c.cascades) - 1
	for cascade := last; cascade >= 0; cascade-- {
		// The farthest cascade spans the aggregate volume, which the object already passed.
		if cascade != last && !common.IntersectsPlanes(bounds, c.cascades[cascade].Planes) {
			break
		}
		c.appendItems(cascade, inst, world, bounds, hint)
	}
}

func (c *cascadeCasterCollector) appendItems(cascade int, inst model.Instance, world mgl32.Mat4, bounds common.AABB, hint float32) {
	cam := c.cascades[cascade].Camera
	for _, mi := range inst.MeshInstances() {
		if !mi.Visible() || !mi.Material().HasPass(material.PassGeometry) {
			continue
		}
		item := c.arena.Alloc()
		item.Material = mi.Material()
		item.MeshInstance = mi
		item.SkeletonMatrices = inst.SkeletonMatrices(mi)
		item.WorldMatrix = world
		item.WorldBounds = bounds
		item.Camera = cam
		item.RenderOrderHint = hint
		c.lists[cascade] = append(c.lists[cascade], item)
	}
}
