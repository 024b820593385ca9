package light

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxGPULights is the maximum number of lights marshaled into the light storage buffer per frame.
// The CPU-side light list is unbounded; lights past the budget are dropped in list order, so the
// collector's type ordering decides what survives.
const MaxGPULights = 1024

const (
	gpuLightHeaderSize     = 16
	gpuLightSize           = 64
	gpuCascadeUniformSize  = MaxShadowCascades*64 + 16 + 16
	shadowTypeFlagNone     = 0
	shadowTypeFlagCascaded = 1
)

// GPULight is the GPU-aligned representation of a single light source.
// Size: 64 bytes (std430 / WGSL aligned).
//
// Layout:
//
//	vec3<f32> position       (offset  0)
//	u32       light_type     (offset 12)
//	vec3<f32> irradiance     (offset 16) color * intensity
//	f32       range          (offset 28)
//	vec3<f32> direction      (offset 32)
//	f32       inner_cone     (offset 44)
//	f32       outer_cone     (offset 48)
//	u32       shadow         (offset 52) 0 = none, 1 = cascaded
//	u32       shadow_index   (offset 56) index into the cascade uniform array
//	u32       _pad           (offset 60)
type GPULight struct {
	Position    mgl32.Vec3
	LightType   uint32
	Irradiance  mgl32.Vec3
	Range       float32
	Direction   mgl32.Vec3
	InnerCone   float32
	OuterCone   float32
	Shadow      uint32
	ShadowIndex uint32
}

// Size returns the size of the marshaled GPULight in bytes.
//
// Returns:
//   - int: the size in bytes (64)
func (g *GPULight) Size() int {
	return gpuLightSize
}

// MarshalInto writes the light into buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the destination
func (g *GPULight) MarshalInto(buf []byte) {
	putVec3(buf[0:12], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putVec3(buf[16:28], g.Irradiance)
	putF32(buf[28:32], g.Range)
	putVec3(buf[32:44], g.Direction)
	putF32(buf[44:48], g.InnerCone)
	putF32(buf[48:52], g.OuterCone)
	binary.LittleEndian.PutUint32(buf[52:56], g.Shadow)
	binary.LittleEndian.PutUint32(buf[56:60], g.ShadowIndex)
	binary.LittleEndian.PutUint32(buf[60:64], 0)
}

// ToGPULight converts a Light into its GPU-aligned representation.
//
// Parameters:
//   - l: the Light to convert
//   - shadowIndex: the light's slot in the cascade uniform array, ignored for non-casters
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light, shadowIndex int) GPULight {
	g := GPULight{
		Position:   l.Position(),
		LightType:  uint32(l.Type()),
		Irradiance: l.ScaledIrradiance(),
		Range:      l.Range(),
		Direction:  l.Direction(),
		InnerCone:  l.InnerCone(),
		OuterCone:  l.OuterCone(),
		Shadow:     shadowTypeFlagNone,
	}
	if l.CastsShadows() {
		g.Shadow = shadowTypeFlagCascaded
		g.ShadowIndex = uint32(shadowIndex)
	}
	return g
}

// MarshalLightBuffer marshals the enabled lights of a frame into a byte buffer suitable for
// GPU upload. The buffer layout is:
//
//	[header: ambient irradiance vec3 + u32 count (16 bytes)] [GPULight × count (64 bytes each)]
//
// Shadow-casting lights are numbered in list order, matching the order their renderers appear
// in the frame's caster list.
//
// Parameters:
//   - lights: the sorted frame light list
//   - ambient: the summed ambient irradiance
//
// Returns:
//   - []byte: the marshaled buffer ready for GPU upload
func MarshalLightBuffer(lights []Light, ambient mgl32.Vec3) []byte {
	count := 0
	for _, l := range lights {
		if l.Enabled() && count < MaxGPULights {
			count++
		}
	}

	buf := make([]byte, gpuLightHeaderSize+count*gpuLightSize)
	putVec3(buf[0:12], ambient)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(count))

	offset := gpuLightHeaderSize
	written, shadowIndex := 0, 0
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		if written >= count {
			break
		}
		g := ToGPULight(l, shadowIndex)
		if l.CastsShadows() {
			shadowIndex++
		}
		g.MarshalInto(buf[offset : offset+gpuLightSize])
		offset += gpuLightSize
		written++
	}
	return buf
}

// GPUCascadeUniform is the per-light cascade block read by the lighting pass.
// Size: 288 bytes (std140 / WGSL uniform aligned).
//
// Layout:
//
//	mat4x4<f32> shadow_matrices[4] (offset   0) world to atlas UV
//	vec4<f32>   split_distances    (offset 256)
//	u32         cascade_count      (offset 272)
//	f32         texel_size         (offset 276) 1 / atlas width
//	f32         bias               (offset 280)
//	f32         normal_bias        (offset 284)
type GPUCascadeUniform struct {
	ShadowMatrices [MaxShadowCascades]mgl32.Mat4
	SplitDistances [MaxShadowCascades]float32
	CascadeCount   uint32
	TexelSize      float32
	Bias           float32
	NormalBias     float32
}

// NewGPUCascadeUniform captures a shadow renderer's finalized cascade state.
//
// Parameters:
//   - r: the shadow renderer, after its frame preparation
//   - atlasWidth: the atlas width in texels
//
// Returns:
//   - GPUCascadeUniform: the uniform block
func NewGPUCascadeUniform(r ShadowMapRenderer, atlasWidth uint32) GPUCascadeUniform {
	u := GPUCascadeUniform{Bias: DefaultShadowBias}
	n := min(r.CascadeCount(), MaxShadowCascades)
	u.CascadeCount = uint32(n)
	for i := range MaxShadowCascades {
		u.ShadowMatrices[i] = mgl32.Ident4()
	}
	for i := range n {
		u.ShadowMatrices[i] = r.ShadowMatrix(i)
		u.SplitDistances[i] = r.SplitDistance(i)
	}
	if atlasWidth > 0 {
		u.TexelSize = 1 / float32(atlasWidth)
		u.NormalBias = u.TexelSize * DefaultShadowNormalBiasScale
	}
	return u
}

// Size returns the size of the marshaled uniform in bytes.
//
// Returns:
//   - int: the size in bytes (288)
func (u *GPUCascadeUniform) Size() int {
	return gpuCascadeUniformSize
}

// Marshal serializes the uniform block for GPU upload.
//
// Returns:
//   - []byte: 288-byte buffer ready for GPU upload
func (u *GPUCascadeUniform) Marshal() []byte {
	buf := make([]byte, gpuCascadeUniformSize)
	for c, m := range u.ShadowMatrices {
		for i, v := range m {
			putF32(buf[c*64+i*4:], v)
		}
	}
	base := MaxShadowCascades * 64
	for i, d := range u.SplitDistances {
		putF32(buf[base+i*4:], d)
	}
	binary.LittleEndian.PutUint32(buf[base+16:], u.CascadeCount)
	putF32(buf[base+20:], u.TexelSize)
	putF32(buf[base+24:], u.Bias)
	putF32(buf[base+28:], u.NormalBias)
	return buf
}

func putF32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

func putVec3(buf []byte, v mgl32.Vec3) {
	putF32(buf[0:], v[0])
	putF32(buf[4:], v[1])
	putF32(buf[8:], v[2])
}
