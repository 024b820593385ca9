package model

import (
	"github.com/Carmen-Shannon/oxy-render/common"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name                  string
	bounds                common.AABB
	skeleton              *Skeleton
	vertexData, indexData []byte
	indexCount            int
}

// Mesh defines the interface for GPU-ready geometry: vertex and index data plus the local-space
// bounding box used for culling. Meshes are shared between any number of instances.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Bounds retrieves the axis-aligned bounding box in mesh-local space.
	//
	// Returns:
	//   - common.AABB: the local bounds
	Bounds() common.AABB

	// Skinned reports whether this mesh is deformed by a skeleton.
	//
	// Returns:
	//   - bool: true if the mesh has a skeleton
	Skinned() bool

	// Skeleton retrieves the bone hierarchy for this mesh.
	// Returns nil for static (non-skinned) meshes.
	//
	// Returns:
	//   - *Skeleton: the skeleton or nil
	Skeleton() *Skeleton

	// VertexData returns the raw vertex data for this mesh.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the raw index data for this mesh.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh configured with the provided options.
// Without WithBounds the mesh is unbounded and is never culled.
//
// Parameters:
//   - options: variadic list of MeshBuilderOption functions
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{bounds: common.InfiniteAABB()}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Bounds() common.AABB {
	return m.bounds
}

func (m *mesh) Skinned() bool {
	return m.skeleton != nil
}

func (m *mesh) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *mesh) VertexData() []byte {
	return m.vertexData
}

func (m *mesh) IndexData() []byte {
	return m.indexData
}

func (m *mesh) IndexCount() int {
	return m.indexCount
}
