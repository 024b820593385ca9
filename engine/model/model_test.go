package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceLocalBounds(t *testing.T) {
	mat := material.NewMaterial()
	a := NewMesh(WithBounds(common.NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})))
	b := NewMesh(WithBoundsFromPositions([]mgl32.Vec3{{2, 0, 0}, {3, 4, 0}}))

	inst := NewInstance(WithMesh(a, mat), WithMesh(b, mat))
	bounds := inst.LocalBounds()

	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, bounds.Min)
	assert.Equal(t, mgl32.Vec3{3, 4, 1}, bounds.Max)
	assert.True(t, inst.Visible())
	assert.True(t, inst.CastShadows())
}

func TestSkeletonMatricesOnlyForSkinnedMeshes(t *testing.T) {
	skel := NewSkeleton([]Bone{{Name: "root", ParentIndex: -1}, {Name: "arm", ParentIndex: 0}})
	require.Equal(t, int32(1), skel.BoneNameToIndex["arm"])

	pose := NewSkeletonPose(skel)
	pose.SetBone(1, mgl32.Translate3D(0, 1, 0))
	pose.SetBone(7, mgl32.Translate3D(0, 9, 0))

	mat := material.NewMaterial()
	skinned := NewMesh(WithSkeleton(skel))
	rigid := NewMesh()
	inst := NewInstance(WithMesh(skinned, mat), WithMesh(rigid, mat), WithSkeletonPose(pose))

	mis := inst.MeshInstances()
	require.Len(t, mis, 2)
	got := inst.SkeletonMatrices(mis[0])
	require.Len(t, got, 2)
	assert.Equal(t, mgl32.Ident4(), got[0])
	assert.Equal(t, mgl32.Translate3D(0, 1, 0), got[1])
	assert.Nil(t, inst.SkeletonMatrices(mis[1]))
}

func TestUnboundedMeshByDefault(t *testing.T) {
	assert.True(t, NewMesh().Bounds().IsInfinite())
}
