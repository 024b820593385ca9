package model

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshInstance pairs a shared mesh with the material it is drawn with inside one model instance.
type MeshInstance struct {
	mesh     Mesh
	material material.Material
	visible  bool
}

// NewMeshInstance creates a visible mesh instance.
//
// Parameters:
//   - mesh: the geometry to draw
//   - mat: the material to draw it with
//
// Returns:
//   - *MeshInstance: the mesh instance
func NewMeshInstance(mesh Mesh, mat material.Material) *MeshInstance {
	if mesh == nil || mat == nil {
		panic("model: mesh instance requires a mesh and a material")
	}
	return &MeshInstance{mesh: mesh, material: mat, visible: true}
}

// Mesh returns the geometry of the mesh instance.
func (mi *MeshInstance) Mesh() Mesh { return mi.mesh }

// Material returns the material the mesh is drawn with.
func (mi *MeshInstance) Material() material.Material { return mi.material }

// Visible reports whether the mesh instance is drawn.
func (mi *MeshInstance) Visible() bool { return mi.visible }

// SetVisible toggles drawing of the mesh instance.
func (mi *MeshInstance) SetVisible(visible bool) { mi.visible = visible }

// SetMaterial replaces the material.
func (mi *MeshInstance) SetMaterial(mat material.Material) {
	if mat != nil {
		mi.material = mat
	}
}

// instance is the implementation of the Instance interface.
type instance struct {
	meshInstances []*MeshInstance
	pose          *SkeletonPose
	visible       bool
	castShadows   bool
}

// Instance defines the interface for a renderable attached to a scene node: one or more
// mesh + material pairs, an optional shared skeleton pose, and visibility / shadow flags.
type Instance interface {
	// MeshInstances retrieves the mesh + material pairs of the instance.
	//
	// Returns:
	//   - []*MeshInstance: the mesh instances, in draw submission order
	MeshInstances() []*MeshInstance

	// SkeletonPose retrieves the pose shared with the animation system.
	//
	// Returns:
	//   - *SkeletonPose: the pose, or nil for unskinned instances
	SkeletonPose() *SkeletonPose

	// SkeletonMatrices retrieves the skinning matrices to use for one mesh instance.
	//
	// Parameters:
	//   - mi: the mesh instance
	//
	// Returns:
	//   - []mgl32.Mat4: the matrices, or nil if the mesh is not skinned or no pose is set
	SkeletonMatrices(mi *MeshInstance) []mgl32.Mat4

	// Visible reports whether the instance is drawn at all.
	//
	// Returns:
	//   - bool: true if visible
	Visible() bool

	// CastShadows reports whether the instance contributes to shadow maps.
	//
	// Returns:
	//   - bool: true if the instance is a shadow caster
	CastShadows() bool

	// LocalBounds retrieves the union of every mesh's local bounds.
	//
	// Returns:
	//   - common.AABB: the bounds in instance-local space
	LocalBounds() common.AABB

	// AddMeshInstance appends a mesh instance.
	//
	// Parameters:
	//   - mi: the mesh instance to add
	AddMeshInstance(mi *MeshInstance)

	// SetSkeletonPose sets the shared skeleton pose.
	//
	// Parameters:
	//   - pose: the pose, or nil
	SetSkeletonPose(pose *SkeletonPose)

	// SetVisible toggles drawing of the whole instance.
	//
	// Parameters:
	//   - visible: true to draw
	SetVisible(visible bool)

	// SetCastShadows toggles shadow casting.
	//
	// Parameters:
	//   - cast: true to cast shadows
	SetCastShadows(cast bool)
}

var _ Instance = &instance{}

// NewInstance creates a visible, shadow-casting model instance.
//
// Parameters:
//   - options: variadic list of InstanceBuilderOption functions
//
// Returns:
//   - Instance: the new instance
func NewInstance(options ...InstanceBuilderOption) Instance {
	inst := &instance{visible: true, castShadows: true}
	for _, opt := range options {
		opt(inst)
	}
	return inst
}

func (i *instance) MeshInstances() []*MeshInstance {
	return i.meshInstances
}

func (i *instance) SkeletonPose() *SkeletonPose {
	return i.pose
}

func (i *instance) SkeletonMatrices(mi *MeshInstance) []mgl32.Mat4 {
	if i.pose == nil || mi == nil || !mi.mesh.Skinned() {
		return nil
	}
	return i.pose.Matrices
}

func (i *instance) Visible() bool {
	return i.visible
}

func (i *instance) CastShadows() bool {
	return i.castShadows
}

func (i *instance) LocalBounds() common.AABB {
	b := common.EmptyAABB()
	for _, mi := range i.meshInstances {
		b = b.Grow(mi.mesh.Bounds())
	}
	return b
}

func (i *instance) AddMeshInstance(mi *MeshInstance) {
	if mi != nil {
		i.meshInstances = append(i.meshInstances, mi)
	}
}

func (i *instance) SetSkeletonPose(pose *SkeletonPose) {
	i.pose = pose
}

func (i *instance) SetVisible(visible bool) {
	i.visible = visible
}

func (i *instance) SetCastShadows(cast bool) {
	i.castShadows = cast
}
