package scene

import (
	"github.com/Carmen-Shannon/oxy-render/engine/model"
)

// Scene is the root of a node hierarchy plus scene-wide renderables.
//
// A Scene is not safe for concurrent mutation. The frame loop mutates it between frames and
// treats it as read-only while collecting and preparing shadows.
type Scene struct {
	name   string
	root   *Node
	skybox model.Instance
}

// NewScene creates a scene with an empty root node.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - *Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) *Scene {
	s := &Scene{
		name: name,
		root: NewNode(WithName(name + "_root")),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Name returns the scene name.
func (s *Scene) Name() string {
	return s.name
}

// Root returns the root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Add attaches nodes to the root.
//
// Parameters:
//   - nodes: the nodes to attach
func (s *Scene) Add(nodes ...*Node) {
	for _, n := range nodes {
		s.root.AddChild(n)
	}
}

// Remove detaches a node from wherever it sits in the hierarchy.
//
// Parameters:
//   - n: the node to detach
func (s *Scene) Remove(n *Node) {
	if n != nil && n != s.root {
		n.Detach()
	}
}

// Skybox returns the scene's skybox instance, or nil.
func (s *Scene) Skybox() model.Instance {
	return s.skybox
}

// SetSkybox sets the instance drawn around the whole scene.
//
// Parameters:
//   - inst: the skybox, or nil to remove it
func (s *Scene) SetSkybox(inst model.Instance) {
	s.skybox = inst
}

// UpdateWorldTransforms resolves every stale world matrix and bound in the hierarchy.
// The frame driver calls it once per frame before any traversal.
func (s *Scene) UpdateWorldTransforms() {
	s.root.UpdateWorldTransform()
}

// NodeCount returns the number of nodes in the hierarchy, root included.
func (s *Scene) NodeCount() int {
	count := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		count++
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(s.root)
	return count
}

// Accept runs a depth-first traversal of the scene. Pending transforms are resolved first, so
// visitors never observe stale world state.
//
// Parameters:
//   - v: the visitor
func (s *Scene) Accept(v Visitor) {
	if s.root.state != StateClean {
		s.UpdateWorldTransforms()
	}
	v.VisitScene(s, s.root.world, s.root.worldBounds)
	Traverse(s.root, v)
}
