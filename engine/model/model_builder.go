package model

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName is an option builder that sets the name of the Mesh.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithBounds is an option builder that sets the local-space bounding box of the Mesh.
//
// Parameters:
//   - bounds: the local bounds
//
// Returns:
//   - MeshBuilderOption: a function that applies the bounds option to a mesh
func WithBounds(bounds common.AABB) MeshBuilderOption {
	return func(m *mesh) {
		m.bounds = bounds
	}
}

// WithBoundsFromPositions is an option builder that computes the local bounds from vertex positions.
//
// Parameters:
//   - positions: the vertex positions in mesh-local space
//
// Returns:
//   - MeshBuilderOption: a function that applies the computed bounds to a mesh
func WithBoundsFromPositions(positions []mgl32.Vec3) MeshBuilderOption {
	return func(m *mesh) {
		b := common.EmptyAABB()
		for _, p := range positions {
			b = b.GrowPoint(p)
		}
		m.bounds = b
	}
}

// WithSkeleton is an option builder that sets the bone hierarchy of the Mesh, making it skinned.
//
// Parameters:
//   - skeleton: the skeleton to set
//
// Returns:
//   - MeshBuilderOption: a function that applies the skeleton option to a mesh
func WithSkeleton(skeleton *Skeleton) MeshBuilderOption {
	return func(m *mesh) {
		m.skeleton = skeleton
	}
}

// WithVertexData is an option builder that sets the raw vertex data for this mesh.
//
// Parameters:
//   - data: the vertex data to set
//
// Returns:
//   - MeshBuilderOption: a function that applies the vertex data option to a mesh
func WithVertexData(data []byte) MeshBuilderOption {
	return func(m *mesh) {
		m.vertexData = data
	}
}

// WithIndexData is an option builder that sets the raw index data and index count for this mesh.
//
// Parameters:
//   - data: the index data to set
//   - count: the number of indices in data
//
// Returns:
//   - MeshBuilderOption: a function that applies the index data option to a mesh
func WithIndexData(data []byte, count int) MeshBuilderOption {
	return func(m *mesh) {
		m.indexData = data
		m.indexCount = count
	}
}
