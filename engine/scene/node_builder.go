package scene

import "github.com/go-gl/mathgl/mgl32"

// NodeBuilderOption is a functional option for configuring a Node via NewNode.
type NodeBuilderOption func(n *Node)

// WithName sets the node's name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithName(name string) NodeBuilderOption {
	return func(n *Node) {
		n.name = name
	}
}

// WithTransform sets the node's local transform.
//
// Parameters:
//   - m: the transform relative to the parent
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithTransform(m mgl32.Mat4) NodeBuilderOption {
	return func(n *Node) {
		n.local = m
	}
}

// WithTranslation sets the node's local transform to a translation.
//
// Parameters:
//   - x, y, z: the offset from the parent
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithTranslation(x, y, z float32) NodeBuilderOption {
	return func(n *Node) {
		n.local = mgl32.Translate3D(x, y, z)
	}
}

// WithPayload sets the node's payload.
//
// Parameters:
//   - p: the payload
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithPayload(p Payload) NodeBuilderOption {
	return func(n *Node) {
		n.payload = p
	}
}

// WithVisible sets the node's initial visibility.
//
// Parameters:
//   - visible: whether the subtree is traversed
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithVisible(visible bool) NodeBuilderOption {
	return func(n *Node) {
		n.visible = visible
	}
}

// WithChildren attaches initial children.
//
// Parameters:
//   - children: the nodes to attach
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithChildren(children ...*Node) NodeBuilderOption {
	return func(n *Node) {
		for _, c := range children {
			n.AddChild(c)
		}
	}
}
