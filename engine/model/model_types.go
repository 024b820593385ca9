package model

import "github.com/go-gl/mathgl/mgl32"

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier (for debugging and animation targeting).
	Name string

	// ParentIndex is the index of the parent bone (-1 for root bones).
	ParentIndex int32

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	InverseBindMatrix mgl32.Mat4
}

// Skeleton represents a bone hierarchy shared by every instance of a skinned mesh.
type Skeleton struct {
	// Bones is the array of all bones in the skeleton.
	Bones []Bone

	// BoneNameToIndex maps bone names to their indices for quick lookup.
	BoneNameToIndex map[string]int32
}

// NewSkeleton creates a skeleton and builds its name lookup table.
//
// Parameters:
//   - bones: the bones, parents listed before children
//
// Returns:
//   - *Skeleton: the skeleton
func NewSkeleton(bones []Bone) *Skeleton {
	s := &Skeleton{Bones: bones, BoneNameToIndex: make(map[string]int32, len(bones))}
	for i, b := range bones {
		s.BoneNameToIndex[b.Name] = int32(i)
	}
	return s
}

// SkeletonPose holds the skinning matrices of one posed skeleton. Poses are produced by an
// animation system and shared by reference; render items never copy or own them.
type SkeletonPose struct {
	// Skeleton is the hierarchy the pose belongs to.
	Skeleton *Skeleton

	// Matrices are the final per-bone skinning matrices (bone world * inverse bind).
	Matrices []mgl32.Mat4
}

// NewSkeletonPose creates a pose in bind position: every skinning matrix is the identity.
//
// Parameters:
//   - skeleton: the skeleton to pose
//
// Returns:
//   - *SkeletonPose: the pose
func NewSkeletonPose(skeleton *Skeleton) *SkeletonPose {
	p := &SkeletonPose{Skeleton: skeleton}
	if skeleton != nil {
		p.Matrices = make([]mgl32.Mat4, len(skeleton.Bones))
		for i := range p.Matrices {
			p.Matrices[i] = mgl32.Ident4()
		}
	}
	return p
}

// SetBone sets the skinning matrix of one bone. Out-of-range indices are ignored.
func (p *SkeletonPose) SetBone(index int, m mgl32.Mat4) {
	if index < 0 || index >= len(p.Matrices) {
		return
	}
	p.Matrices[index] = m
}
