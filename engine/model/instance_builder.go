package model

import "github.com/Carmen-Shannon/oxy-render/engine/renderer/material"

// InstanceBuilderOption is a functional option for configuring an Instance via NewInstance.
type InstanceBuilderOption func(*instance)

// WithMesh is an option builder that appends a mesh drawn with a material.
//
// Parameters:
//   - mesh: the geometry
//   - mat: the material
//
// Returns:
//   - InstanceBuilderOption: a function that appends the mesh instance
func WithMesh(mesh Mesh, mat material.Material) InstanceBuilderOption {
	return func(i *instance) {
		i.meshInstances = append(i.meshInstances, NewMeshInstance(mesh, mat))
	}
}

// WithSkeletonPose is an option builder that sets the shared skeleton pose.
//
// Parameters:
//   - pose: the pose
//
// Returns:
//   - InstanceBuilderOption: a function that applies the pose option
func WithSkeletonPose(pose *SkeletonPose) InstanceBuilderOption {
	return func(i *instance) {
		i.pose = pose
	}
}

// WithVisible is an option builder that sets the initial visibility.
//
// Parameters:
//   - visible: true to draw
//
// Returns:
//   - InstanceBuilderOption: a function that applies the visibility option
func WithVisible(visible bool) InstanceBuilderOption {
	return func(i *instance) {
		i.visible = visible
	}
}

// WithCastShadows is an option builder that sets whether the instance casts shadows.
//
// Parameters:
//   - cast: true to cast shadows
//
// Returns:
//   - InstanceBuilderOption: a function that applies the shadow option
func WithCastShadows(cast bool) InstanceBuilderOption {
	return func(i *instance) {
		i.castShadows = cast
	}
}
