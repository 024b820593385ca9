package scene

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/effect"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Visitor defines the callbacks of a depth-first scene traversal.
//
// Qualifies is evaluated for every node before its payload is visited or its children are
// entered; a node that does not qualify is skipped together with its whole subtree. Visit
// callbacks receive the resolved world matrix and bounds rather than the node itself.
type Visitor interface {
	// Qualifies reports whether a node and its subtree should be visited.
	//
	// Parameters:
	//   - n: the node, with clean world state
	//
	// Returns:
	//   - bool: false to prune the subtree
	Qualifies(n *Node) bool

	// VisitScene is called once per traversal, before any node, with the root's world state.
	//
	// Parameters:
	//   - s: the scene being traversed
	//   - world: the root world matrix
	//   - bounds: the root world bounds
	VisitScene(s *Scene, world mgl32.Mat4, bounds common.AABB)

	// VisitModelInstance is called for every qualifying node holding a model instance.
	//
	// Parameters:
	//   - inst: the model instance
	//   - world: the node's world matrix
	//   - bounds: the instance's world bounds
	VisitModelInstance(inst model.Instance, world mgl32.Mat4, bounds common.AABB)

	// VisitLight is called for every qualifying node holding a directional, point or spot light.
	//
	// Parameters:
	//   - l: the light, already posed by the node
	//   - world: the node's world matrix
	//   - bounds: the light's area of effect
	VisitLight(l light.Light, world mgl32.Mat4, bounds common.AABB)

	// VisitAmbientLight is called for every qualifying node holding an ambient light.
	//
	// Parameters:
	//   - a: the ambient light
	VisitAmbientLight(a *light.AmbientLight)

	// VisitEffects is called for every qualifying node holding post effects.
	//
	// Parameters:
	//   - effects: the node's effects
	VisitEffects(effects []effect.Effect)
}

// BaseVisitor implements every Visitor callback as a no-op and qualifies visible nodes.
// Embed it to implement only the callbacks a traversal needs.
type BaseVisitor struct{}

func (BaseVisitor) Qualifies(n *Node) bool {
	return n.Visible()
}

func (BaseVisitor) VisitScene(*Scene, mgl32.Mat4, common.AABB) {}

func (BaseVisitor) VisitModelInstance(model.Instance, mgl32.Mat4, common.AABB) {}

func (BaseVisitor) VisitLight(light.Light, mgl32.Mat4, common.AABB) {}

func (BaseVisitor) VisitAmbientLight(*light.AmbientLight) {}

func (BaseVisitor) VisitEffects([]effect.Effect) {}

// Traverse walks the subtree rooted at n depth-first, dispatching each qualifying node's payload
// to the visitor.
//
// Parameters:
//   - n: the subtree root
//   - v: the visitor
func Traverse(n *Node, v Visitor) {
	if n == nil || !v.Qualifies(n) {
		return
	}

	p := n.payload
	switch p.kind {
	case PayloadModel:
		v.VisitModelInstance(p.instance, n.world, n.payloadBounds)
	case PayloadLight:
		v.VisitLight(p.light, n.world, n.payloadBounds)
	case PayloadAmbientLight:
		v.VisitAmbientLight(p.ambient)
	case PayloadEffects:
		v.VisitEffects(p.effects)
	}

	for _, c := range n.children {
		Traverse(c, v)
	}
}
