package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShadowRenderer struct {
	light     Light
	cascades  int
	matrices  []mgl32.Mat4
	distances []float32
}

func (f *fakeShadowRenderer) Light() Light                  { return f.light }
func (f *fakeShadowRenderer) CascadeCount() int             { return f.cascades }
func (f *fakeShadowRenderer) ShadowMatrix(i int) mgl32.Mat4 { return f.matrices[i] }
func (f *fakeShadowRenderer) SplitDistance(i int) float32   { return f.distances[i] }

func readF32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestPoseDerivesPositionAndDirection(t *testing.T) {
	l := NewLight(LightTypeSpot, WithPose(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, -2}))

	assert.True(t, l.Position().ApproxEqualThreshold(mgl32.Vec3{1, 2, 3}, 1e-5))
	assert.True(t, l.Direction().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5))

	down := NewLight(LightTypeDirectional)
	assert.True(t, down.Direction().ApproxEqualThreshold(mgl32.Vec3{0, -1, 0}, 1e-5))
}

func TestCastsShadowsNeedsRenderer(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithCastsShadows(true))
	assert.False(t, l.CastsShadows())

	l.SetShadowMapRenderer(&fakeShadowRenderer{light: l})
	assert.True(t, l.CastsShadows())

	l.SetCastsShadows(false)
	assert.False(t, l.CastsShadows())
}

func TestScaledIrradiance(t *testing.T) {
	l := NewLight(LightTypePoint, WithColor(mgl32.Vec3{1, 0.5, 0}), WithIntensity(4))
	assert.Equal(t, mgl32.Vec3{4, 2, 0}, l.ScaledIrradiance())

	a := NewAmbientLight(mgl32.Vec3{0.2, 0.2, 0.2}, 0.5)
	assert.InDelta(t, 0.1, a.ScaledIrradiance()[0], 1e-6)
}

func TestMarshalLightBuffer(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithCastsShadows(true), WithIntensity(2))
	sun.SetShadowMapRenderer(&fakeShadowRenderer{light: sun})
	lamp := NewLight(LightTypePoint, WithPose(mgl32.Vec3{5, 1, 0}, mgl32.Vec3{0, -1, 0}))
	off := NewLight(LightTypePoint, WithEnabled(false))

	buf := MarshalLightBuffer([]Light{lamp, off, sun}, mgl32.Vec3{0.1, 0.2, 0.3})
	require.Len(t, buf, 16+2*64)

	assert.InDelta(t, 0.2, readF32(buf, 4), 1e-6)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[12:]))

	// first light: the lamp
	assert.InDelta(t, 5, readF32(buf, 16), 1e-5)
	assert.Equal(t, uint32(LightTypePoint), binary.LittleEndian.Uint32(buf[16+12:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[16+52:]))

	// second light: the sun, shadowed
	sunOff := 16 + 64
	assert.InDelta(t, 2, readF32(buf, sunOff+16), 1e-6)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[sunOff+52:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[sunOff+56:]))
}

func TestCascadeUniform(t *testing.T) {
	r := &fakeShadowRenderer{
		cascades:  2,
		matrices:  []mgl32.Mat4{mgl32.Scale3D(2, 2, 2), mgl32.Translate3D(1, 0, 0)},
		distances: []float32{10, 50},
	}
	u := NewGPUCascadeUniform(r, 2048)
	buf := u.Marshal()
	require.Len(t, buf, u.Size())

	assert.InDelta(t, 2, readF32(buf, 0), 1e-6)
	assert.InDelta(t, 1, readF32(buf, 64+12*4), 1e-6)
	assert.InDelta(t, 1, readF32(buf, 128), 1e-6, "unused cascades hold identity")
	assert.InDelta(t, 50, readF32(buf, 256+4), 1e-6)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[272:]))
	assert.InDelta(t, 1.0/2048, readF32(buf, 276), 1e-9)
}
