package render

import (
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/effect"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame is the complete CPU-side description of one frame handed to the pass executor.
// Slices alias collector-owned storage and are valid until the next collection.
type Frame struct {
	Camera camera.Camera

	OpaqueStatic       []*RenderItem
	OpaqueDynamic      []*RenderItem
	TransparentStatic  []*RenderItem
	TransparentDynamic []*RenderItem

	Lights        []light.Light
	ShadowCasters []light.ShadowMapRenderer
	Effects       []effect.Effect
	Ambient       mgl32.Vec3

	NeedsNormalDepth bool
	NeedsBackbuffer  bool

	// LightBuffer is the marshaled light list for the lighting pass.
	LightBuffer []byte

	// CascadeUniforms holds one marshaled cascade uniform block per shadow caster.
	CascadeUniforms [][]byte
}

// ItemCount returns the number of items across the four draw lists.
func (f *Frame) ItemCount() int {
	return len(f.OpaqueStatic) + len(f.OpaqueDynamic) + len(f.TransparentStatic) + len(f.TransparentDynamic)
}
