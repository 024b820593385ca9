package scene

import "github.com/Carmen-Shannon/oxy-render/engine/model"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *Scene)

// WithNodes attaches initial nodes to the scene root.
//
// Parameters:
//   - nodes: the nodes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithNodes(nodes ...*Node) SceneBuilderOption {
	return func(s *Scene) {
		s.Add(nodes...)
	}
}

// WithSkybox sets the scene's skybox instance.
//
// Parameters:
//   - inst: the skybox
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSkybox(inst model.Instance) SceneBuilderOption {
	return func(s *Scene) {
		s.skybox = inst
	}
}
