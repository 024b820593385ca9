package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/effect"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCube() model.Instance {
	mesh := model.NewMesh(model.WithBounds(common.NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})))
	return model.NewInstance(model.WithMesh(mesh, material.NewMaterial()))
}

type recordingVisitor struct {
	BaseVisitor
	pruneName string
	models    []mgl32.Vec3
	lights    []light.Light
	ambient   int
	effects   int
	scenes    int
}

func (r *recordingVisitor) Qualifies(n *Node) bool {
	return n.Visible() && n.Name() != r.pruneName
}

func (r *recordingVisitor) VisitScene(*Scene, mgl32.Mat4, common.AABB) { r.scenes++ }

func (r *recordingVisitor) VisitModelInstance(_ model.Instance, _ mgl32.Mat4, bounds common.AABB) {
	r.models = append(r.models, bounds.Center())
}

func (r *recordingVisitor) VisitLight(l light.Light, _ mgl32.Mat4, _ common.AABB) {
	r.lights = append(r.lights, l)
}

func (r *recordingVisitor) VisitAmbientLight(*light.AmbientLight) { r.ambient++ }

func (r *recordingVisitor) VisitEffects(e []effect.Effect) { r.effects += len(e) }

func TestWorldTransformPropagation(t *testing.T) {
	child := NewNode(WithTranslation(0, 2, 0), WithPayload(ModelPayload(unitCube())))
	parent := NewNode(WithTranslation(10, 0, 0), WithChildren(child))
	s := NewScene("test", WithNodes(parent))

	assert.Equal(t, StateDirty, child.State())
	s.UpdateWorldTransforms()
	require.Equal(t, StateClean, child.State())
	assert.Equal(t, mgl32.Vec3{10, 2, 0}, common.Translation(child.WorldMatrix()))
	assert.Equal(t, mgl32.Vec3{10, 2, 0}, child.PayloadBounds().Center())

	parent.SetLocalTransform(mgl32.Translate3D(-5, 0, 0))
	assert.Equal(t, StateDirty, child.State())
	assert.Equal(t, StateChildDirty, s.Root().State())

	s.UpdateWorldTransforms()
	assert.Equal(t, mgl32.Vec3{-5, 2, 0}, common.Translation(child.WorldMatrix()))
	assert.Equal(t, mgl32.Vec3{-6, 1, -1}, s.Root().WorldBounds().Min)
}

func TestSubtreeBoundsIncludeChildren(t *testing.T) {
	far := NewNode(WithTranslation(0, 0, -50), WithPayload(ModelPayload(unitCube())))
	group := NewNode(WithChildren(far))
	s := NewScene("bounds", WithNodes(group))
	s.UpdateWorldTransforms()

	assert.True(t, group.PayloadBounds().IsEmpty())
	assert.Equal(t, mgl32.Vec3{0, 0, -50}, group.WorldBounds().Center())
}

func TestTraversalPrunesSubtrees(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional)
	lamp := light.NewLight(light.LightTypePoint, light.WithRange(3))

	kept := NewNode(WithName("kept"), WithTranslation(1, 0, 0), WithPayload(ModelPayload(unitCube())),
		WithChildren(NewNode(WithPayload(LightPayload(lamp)))))
	pruned := NewNode(WithName("pruned"), WithPayload(ModelPayload(unitCube())),
		WithChildren(NewNode(WithPayload(LightPayload(sun)))))
	hidden := NewNode(WithVisible(false), WithPayload(AmbientLightPayload(light.NewAmbientLight(mgl32.Vec3{1, 1, 1}, 1))))

	s := NewScene("traverse", WithNodes(kept, pruned, hidden,
		NewNode(WithPayload(AmbientLightPayload(light.NewAmbientLight(mgl32.Vec3{1, 1, 1}, 1)))),
		NewNode(WithPayload(EffectsPayload(effect.Fog(), effect.NewEffect()))),
	))

	v := &recordingVisitor{pruneName: "pruned"}
	s.Accept(v)

	assert.Equal(t, 1, v.scenes)
	assert.Equal(t, []mgl32.Vec3{{1, 0, 0}}, v.models)
	require.Len(t, v.lights, 1)
	assert.Same(t, lamp, v.lights[0])
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, lamp.Position(), "light posed by its node")
	assert.Equal(t, 1, v.ambient)
	assert.Equal(t, 2, v.effects)
}

func TestReparenting(t *testing.T) {
	a := NewNode(WithTranslation(1, 0, 0))
	b := NewNode(WithTranslation(0, 1, 0))
	c := NewNode(WithTranslation(0, 0, 1))
	a.AddChild(c)
	s := NewScene("reparent", WithNodes(a, b))
	s.UpdateWorldTransforms()
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, common.Translation(c.WorldMatrix()))

	b.AddChild(c)
	assert.Empty(t, a.Children())
	assert.Same(t, b, c.Parent())
	s.UpdateWorldTransforms()
	assert.Equal(t, mgl32.Vec3{0, 1, 1}, common.Translation(c.WorldMatrix()))
	assert.Equal(t, 4, s.NodeCount())

	s.Remove(c)
	assert.Nil(t, c.Parent())
	assert.Equal(t, 3, s.NodeCount())
}
