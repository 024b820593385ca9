package scene

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/effect"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// nodeCount generates unique node IDs.
var nodeCount atomic.Uint64

// TransformState tracks whether a node's cached world state can be read.
type TransformState int

const (
	// StateClean means the world matrix and bounds are up to date.
	StateClean TransformState = iota

	// StateChildDirty means the node's own world matrix is valid but a descendant changed, so the
	// subtree bounds are stale.
	StateChildDirty

	// StateDirty means the world matrix must be recomputed from the parent.
	StateDirty
)

// PayloadKind tags the variant held by a Payload.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadModel
	PayloadLight
	PayloadAmbientLight
	PayloadEffects
)

// Payload is the zero-or-one renderable or light carried by a node.
type Payload struct {
	kind     PayloadKind
	instance model.Instance
	light    light.Light
	ambient  *light.AmbientLight
	effects  []effect.Effect
}

// ModelPayload wraps a model instance.
func ModelPayload(inst model.Instance) Payload {
	return Payload{kind: PayloadModel, instance: inst}
}

// LightPayload wraps a directional, point or spot light.
func LightPayload(l light.Light) Payload {
	return Payload{kind: PayloadLight, light: l}
}

// AmbientLightPayload wraps an ambient light.
func AmbientLightPayload(a *light.AmbientLight) Payload {
	return Payload{kind: PayloadAmbientLight, ambient: a}
}

// EffectsPayload wraps post effects that apply while the node is in view.
func EffectsPayload(effects ...effect.Effect) Payload {
	return Payload{kind: PayloadEffects, effects: effects}
}

// Kind returns the variant tag.
func (p Payload) Kind() PayloadKind { return p.kind }

// Instance returns the model instance, or nil.
func (p Payload) Instance() model.Instance { return p.instance }

// Light returns the light, or nil.
func (p Payload) Light() light.Light { return p.light }

// AmbientLight returns the ambient light, or nil.
func (p Payload) AmbientLight() *light.AmbientLight { return p.ambient }

// Effects returns the post effects, or nil.
func (p Payload) Effects() []effect.Effect { return p.effects }

// localBounds returns the payload's extent in node-local space.
func (p Payload) localBounds() common.AABB {
	switch p.kind {
	case PayloadModel:
		return p.instance.LocalBounds()
	case PayloadAmbientLight, PayloadEffects:
		return common.InfiniteAABB()
	}
	return common.EmptyAABB()
}

// Node is a scene graph entity: a local transform, a cached world transform and bounds, children,
// and an optional payload. A node is owned by its parent.
//
// World state is recomputed only by an explicit UpdateWorldTransform (or Scene.UpdateWorldTransforms)
// call. Changing the local transform marks the node and its subtree Dirty and its ancestors
// ChildDirty so the next update walks exactly the affected paths.
type Node struct {
	id      uint64
	name    string
	visible bool

	local mgl32.Mat4
	world mgl32.Mat4
	state TransformState

	payload       Payload
	payloadBounds common.AABB
	worldBounds   common.AABB

	parent   *Node
	children []*Node
}

// NewNode creates a visible node with an identity transform.
//
// Parameters:
//   - options: variadic list of NodeBuilderOption functions
//
// Returns:
//   - *Node: the node, in the Dirty state
func NewNode(options ...NodeBuilderOption) *Node {
	n := &Node{
		id:            nodeCount.Add(1),
		visible:       true,
		local:         mgl32.Ident4(),
		world:         mgl32.Ident4(),
		state:         StateDirty,
		payloadBounds: common.EmptyAABB(),
		worldBounds:   common.EmptyAABB(),
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

// ID returns the node's unique identifier.
func (n *Node) ID() uint64 { return n.id }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Visible reports whether the node and its subtree take part in traversal.
func (n *Node) Visible() bool { return n.visible }

// SetVisible toggles the node and its subtree.
func (n *Node) SetVisible(visible bool) { n.visible = visible }

// State returns the node's transform state.
func (n *Node) State() TransformState { return n.state }

// Payload returns the node's payload.
func (n *Node) Payload() Payload { return n.payload }

// LocalTransform returns the transform relative to the parent.
func (n *Node) LocalTransform() mgl32.Mat4 { return n.local }

// WorldMatrix returns the world transform resolved by the last update.
func (n *Node) WorldMatrix() mgl32.Mat4 { return n.world }

// WorldBounds returns the world-space bounds of the node's payload and its whole subtree, resolved
// by the last update. Traversal prunes against these bounds.
func (n *Node) WorldBounds() common.AABB { return n.worldBounds }

// PayloadBounds returns the world-space bounds of the node's own payload.
func (n *Node) PayloadBounds() common.AABB { return n.payloadBounds }

// SetLocalTransform replaces the local transform.
//
// Parameters:
//   - m: the transform relative to the parent
func (n *Node) SetLocalTransform(m mgl32.Mat4) {
	n.local = m
	n.markDirty()
}

// SetPayload replaces the payload. The node's bounds change, so it is marked Dirty.
//
// Parameters:
//   - p: the new payload
func (n *Node) SetPayload(p Payload) {
	n.payload = p
	n.markDirty()
}

// AddChild attaches a child, detaching it from any previous parent first.
//
// Parameters:
//   - child: the node to attach
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n {
		return
	}
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
	child.markDirty()
}

// RemoveChild detaches a direct child. Unknown nodes are ignored.
//
// Parameters:
//   - child: the node to detach
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			child.markDirty()
			n.markChildDirty()
			return
		}
	}
}

// Detach removes the node from its parent.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// markDirty flags the subtree Dirty and the ancestors ChildDirty.
func (n *Node) markDirty() {
	n.markSubtreeDirty()
	if n.parent != nil {
		n.parent.markChildDirty()
	}
}

func (n *Node) markSubtreeDirty() {
	if n.state == StateDirty {
		return
	}
	n.state = StateDirty
	for _, c := range n.children {
		c.markSubtreeDirty()
	}
}

func (n *Node) markChildDirty() {
	for p := n; p != nil && p.state == StateClean; p = p.parent {
		p.state = StateChildDirty
	}
}

// UpdateWorldTransform resolves the world matrix and bounds of this node and every stale
// descendant. The parent's world state must be clean.
func (n *Node) UpdateWorldTransform() {
	parentWorld := mgl32.Ident4()
	if n.parent != nil {
		parentWorld = n.parent.world
	}
	n.update(parentWorld)
}

func (n *Node) update(parentWorld mgl32.Mat4) {
	if n.state == StateClean {
		return
	}
	if n.state == StateDirty {
		n.world = parentWorld.Mul4(n.local)
		n.resolvePayload()
	}

	bounds := n.payloadBounds
	for _, c := range n.children {
		c.update(n.world)
		bounds = bounds.Grow(c.worldBounds)
	}
	n.worldBounds = bounds
	n.state = StateClean
}

// resolvePayload pushes the world matrix into the payload and recomputes its world bounds.
func (n *Node) resolvePayload() {
	switch n.payload.kind {
	case PayloadLight:
		l := n.payload.light
		l.SetWorldMatrix(n.world)
		if l.Type() == light.LightTypeDirectional {
			n.payloadBounds = common.InfiniteAABB()
		} else {
			r := l.Range()
			n.payloadBounds = common.AABBFromCenter(l.Position(), mgl32.Vec3{r, r, r})
		}
	default:
		n.payloadBounds = n.payload.localBounds().Transform(n.world)
	}
}
