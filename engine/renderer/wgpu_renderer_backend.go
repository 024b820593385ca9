package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	// drawUniformSize is one clip-from-model matrix.
	drawUniformSize = 64

	// drawUniformStride is the dynamic offset step, WebGPU's default minUniformBufferOffsetAlignment.
	drawUniformStride = 256
)

// GeometryPipelineDescriptor describes a depth-only pipeline compiled by RegisterGeometryPipeline.
type GeometryPipelineDescriptor struct {
	Key                 string
	Source              string
	EntryPoint          string
	VertexLayouts       []wgpu.VertexBufferLayout
	CullMode            wgpu.CullMode
	DepthBias           int32
	DepthBiasSlopeScale float32
}

// WGPUDepthAtlas is the WebGPU DepthAtlas. Besides the atlas texture it owns the comparison sampler
// the lighting pass samples it with and the per-draw uniform buffer bound at group 0 of every
// geometry pipeline.
type WGPUDepthAtlas interface {
	DepthAtlas

	// View returns the atlas texture view for binding in the lighting pass.
	//
	// Returns:
	//   - *wgpu.TextureView: the view, or nil when unallocated
	View() *wgpu.TextureView

	// Sampler returns the depth comparison sampler, creating it on first use.
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: an error if the sampler could not be created
	Sampler() (*wgpu.Sampler, error)

	// DrawLayout returns the bind group layout geometry pipelines must declare at group 0:
	// a single vertex-visible uniform with a dynamic offset holding the clip-from-model matrix.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	//   - error: an error if the layout could not be created
	DrawLayout() (*wgpu.BindGroupLayout, error)

	// RegisterPipeline adds a prebuilt depth-only pipeline under a material pipeline key.
	//
	// Parameters:
	//   - key: the material geometry pass pipeline key
	//   - p: the render pipeline
	RegisterPipeline(key string, p *wgpu.RenderPipeline)

	// RegisterGeometryPipeline compiles a vertex-only WGSL module into a depth-only pipeline and
	// registers it under the descriptor key.
	//
	// Parameters:
	//   - desc: the pipeline description
	//
	// Returns:
	//   - error: an error if shader or pipeline creation failed
	RegisterGeometryPipeline(desc GeometryPipelineDescriptor) error
}

var emptySlot [drawUniformStride]byte

type meshBuffers struct {
	vertex *wgpu.Buffer
	index  *wgpu.Buffer
	count  uint32
}

type drawCommand struct {
	pipeline *wgpu.RenderPipeline
	mesh     *meshBuffers
	offset   uint32
}

type wgpuDepthAtlas struct {
	mu     sync.Mutex
	logger *zap.Logger
	label  string
	device *wgpu.Device
	queue  *wgpu.Queue

	width   uint32
	height  uint32
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler

	drawLayout    *wgpu.BindGroupLayout
	drawBuffer    *wgpu.Buffer
	drawBindGroup *wgpu.BindGroup
	drawCapacity  int

	pipelines map[string]*wgpu.RenderPipeline
	meshes    map[model.Mesh]*meshBuffers

	commands [][]drawCommand
	scratch  []byte
}

var _ WGPUDepthAtlas = &wgpuDepthAtlas{}

// NewWGPUDepthAtlas creates the WebGPU atlas directly.
//
// Parameters:
//   - rc: the render context; must carry a device and queue
//   - options: functional options to configure the atlas
//
// Returns:
//   - WGPUDepthAtlas: the atlas
func NewWGPUDepthAtlas(rc render_context.RenderContext, options ...DepthAtlasBuilderOption) WGPUDepthAtlas {
	return newWGPUDepthAtlas(rc, newDepthAtlasConfig(options))
}

func newWGPUDepthAtlas(rc render_context.RenderContext, cfg *depthAtlasConfig) *wgpuDepthAtlas {
	if !rc.HasGPU() {
		panic("renderer: the wgpu depth atlas requires a render context with a device and queue")
	}
	return &wgpuDepthAtlas{
		logger:    rc.Logger().Named("depth_atlas"),
		label:     cfg.label,
		device:    rc.Device(),
		queue:     rc.Queue(),
		pipelines: cfg.pipelines,
		meshes:    make(map[model.Mesh]*meshBuffers),
	}
}

func (b *wgpuDepthAtlas) Backend() BackendType {
	return BackendTypeWGPU
}

func (b *wgpuDepthAtlas) Allocate(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.view != nil && b.width == width && b.height == height {
		return nil
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("failed to allocate depth atlas: invalid size %dx%d", width, height)
	}
	b.releaseTexture()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: b.label + " Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth atlas texture: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("failed to create depth atlas texture view: %w", err)
	}

	b.texture = tex
	b.view = view
	b.width = width
	b.height = height
	b.logger.Debug("depth atlas allocated", zap.Uint32("width", width), zap.Uint32("height", height))
	return nil
}

func (b *wgpuDepthAtlas) Allocated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view != nil
}

func (b *wgpuDepthAtlas) Size() (uint32, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view == nil {
		return 0, 0
	}
	return b.width, b.height
}

func (b *wgpuDepthAtlas) View() *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

func (b *wgpuDepthAtlas) Sampler() (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sampler != nil {
		return b.sampler, nil
	}
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         b.label + " Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison sampler: %w", err)
	}
	b.sampler = samp
	return samp, nil
}

func (b *wgpuDepthAtlas) DrawLayout() (*wgpu.BindGroupLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ensureDrawLayout()
}

func (b *wgpuDepthAtlas) ensureDrawLayout() (*wgpu.BindGroupLayout, error) {
	if b.drawLayout != nil {
		return b.drawLayout, nil
	}
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: b.label + " Draw Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   drawUniformSize,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draw bind group layout: %w", err)
	}
	b.drawLayout = layout
	return layout, nil
}

func (b *wgpuDepthAtlas) RegisterPipeline(key string, p *wgpu.RenderPipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pipelines[key] = p
}

func (b *wgpuDepthAtlas) RegisterGeometryPipeline(desc GeometryPipelineDescriptor) error {
	if desc.Key == "" || desc.Source == "" {
		return errors.New("geometry pipeline requires a key and a vertex shader source")
	}
	entry := desc.EntryPoint
	if entry == "" {
		entry = "vs_main"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	layout, err := b.ensureDrawLayout()
	if err != nil {
		return err
	}

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Source,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shader module %q: %w", desc.Key, err)
	}
	defer vs.Release()

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Key,
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout %q: %w", desc.Key, err)
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Key + " Geometry Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: entry,
			Buffers:    desc.VertexLayouts,
		},
		// depth only
		Fragment: nil,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  desc.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			DepthBias:           desc.DepthBias,
			DepthBiasSlopeScale: desc.DepthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create geometry pipeline %q: %w", desc.Key, err)
	}

	b.pipelines[desc.Key] = created
	return nil
}

func (b *wgpuDepthAtlas) RenderTiles(tiles []Tile) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.view == nil {
		return errors.New("depth atlas has not been allocated")
	}

	draws, err := b.resolveDraws(tiles)
	if err != nil {
		return err
	}
	if err := b.ensureDrawBuffer(draws); err != nil {
		return err
	}
	if draws > 0 {
		b.queue.WriteBuffer(b.drawBuffer, 0, b.scratch)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create depth atlas command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: nil,
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})

	for i, tile := range tiles {
		vp := tile.Viewport
		pass.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height), 0, 1)
		pass.SetScissorRect(vp.X, vp.Y, vp.Width, vp.Height)

		for _, cmd := range b.commands[i] {
			pass.SetPipeline(cmd.pipeline)
			pass.SetBindGroup(0, b.drawBindGroup, []uint32{cmd.offset})
			pass.SetVertexBuffer(0, cmd.mesh.vertex, 0, wgpu.WholeSize)
			pass.SetIndexBuffer(cmd.mesh.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(cmd.mesh.count, 1, 0, 0, 0)
		}
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("failed to finish depth atlas commands: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	return nil
}

// resolveDraws turns the tiles into draw commands and fills scratch with one uniform slot per draw.
func (b *wgpuDepthAtlas) resolveDraws(tiles []Tile) (int, error) {
	for len(b.commands) < len(tiles) {
		b.commands = append(b.commands, nil)
	}
	b.scratch = b.scratch[:0]
	draws := 0

	for i, tile := range tiles {
		b.commands[i] = b.commands[i][:0]
		for _, item := range tile.Items {
			pass := item.Material.Pass(material.PassGeometry)
			if pass == nil {
				continue
			}
			pipeline, ok := b.pipelines[pass.PipelineKey]
			if !ok {
				continue
			}
			mesh := item.MeshInstance.Mesh()
			buffers, err := b.meshBuffers(mesh)
			if err != nil {
				return 0, err
			}
			if buffers == nil {
				continue
			}

			offset := draws * drawUniformStride
			b.scratch = append(b.scratch, emptySlot[:]...)
			putMat4(b.scratch[offset:], tile.ViewProjection.Mul4(item.WorldMatrix))

			b.commands[i] = append(b.commands[i], drawCommand{
				pipeline: pipeline,
				mesh:     buffers,
				offset:   uint32(offset),
			})
			draws++
		}
	}
	return draws, nil
}

func (b *wgpuDepthAtlas) meshBuffers(mesh model.Mesh) (*meshBuffers, error) {
	if buffers, ok := b.meshes[mesh]; ok {
		return buffers, nil
	}
	vertexData, indexData := mesh.VertexData(), mesh.IndexData()
	if len(vertexData) == 0 || len(indexData) == 0 || mesh.IndexCount() == 0 {
		b.meshes[mesh] = nil
		return nil, nil
	}

	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: mesh.Name() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer for mesh %q: %w", mesh.Name(), err)
	}
	b.queue.WriteBuffer(vb, 0, vertexData)

	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: mesh.Name() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("failed to create index buffer for mesh %q: %w", mesh.Name(), err)
	}
	b.queue.WriteBuffer(ib, 0, indexData)

	buffers := &meshBuffers{vertex: vb, index: ib, count: uint32(mesh.IndexCount())}
	b.meshes[mesh] = buffers
	return buffers, nil
}

// ensureDrawBuffer grows the per-draw uniform buffer to hold draws slots, doubling each time.
func (b *wgpuDepthAtlas) ensureDrawBuffer(draws int) error {
	if draws <= b.drawCapacity && b.drawBindGroup != nil {
		return nil
	}
	layout, err := b.ensureDrawLayout()
	if err != nil {
		return err
	}
	capacity := max(b.drawCapacity, 64)
	for capacity < draws {
		capacity *= 2
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: b.label + " Draw Uniforms",
		Size:  uint64(capacity * drawUniformStride),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create draw uniform buffer: %w", err)
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  b.label + " Draw Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    drawUniformSize,
		}},
	})
	if err != nil {
		buf.Release()
		return fmt.Errorf("failed to create draw bind group: %w", err)
	}

	if b.drawBindGroup != nil {
		b.drawBindGroup.Release()
	}
	if b.drawBuffer != nil {
		b.drawBuffer.Release()
	}
	if b.drawCapacity > 0 {
		b.logger.Debug("draw uniform buffer grew", zap.Int("from", b.drawCapacity), zap.Int("to", capacity))
	}
	b.drawBuffer = buf
	b.drawBindGroup = bindGroup
	b.drawCapacity = capacity
	return nil
}

func (b *wgpuDepthAtlas) releaseTexture() {
	if b.view != nil {
		b.view.Release()
		b.view = nil
	}
	if b.texture != nil {
		b.texture.Release()
		b.texture = nil
	}
	b.width, b.height = 0, 0
}

func (b *wgpuDepthAtlas) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTexture()
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.drawBindGroup != nil {
		b.drawBindGroup.Release()
		b.drawBindGroup = nil
	}
	if b.drawBuffer != nil {
		b.drawBuffer.Release()
		b.drawBuffer = nil
	}
	b.drawCapacity = 0
	if b.drawLayout != nil {
		b.drawLayout.Release()
		b.drawLayout = nil
	}
	for mesh, buffers := range b.meshes {
		if buffers != nil {
			buffers.vertex.Release()
			buffers.index.Release()
		}
		delete(b.meshes, mesh)
	}
}

func putMat4(dst []byte, m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
