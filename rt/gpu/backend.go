// Package gpu implements the shadow pipeline's GPU collaborators on WebGPU:
// target allocation, the depth pass, the blur kernel and the published uniforms.
package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadows"
	"github.com/gekko3d/shadows/rt/core"
)

// ErrUnknownTarget is returned for handles this backend never allocated or already freed.
var ErrUnknownTarget = errors.New("unknown shadow target")

type gpuTarget struct {
	desc    core.TargetDesc
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

func (t *gpuTarget) release() {
	if t.sampler != nil {
		t.sampler.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

type blurKey struct {
	read, write core.TextureHandle
}

type Backend struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	// Float32Filterable is set when the device was created with the
	// float32-filterable feature; color target samplers then honor the filter mode.
	Float32Filterable bool

	keywords *core.Keywords
	logger   shadows.Logger

	targets map[core.TextureHandle]*gpuTarget

	CameraBuf *wgpu.Buffer
	ShadowBuf *wgpu.Buffer

	VertexBuf   *wgpu.Buffer
	VertexCount uint32

	depthModule    *wgpu.ShaderModule
	cameraBGL      *wgpu.BindGroupLayout
	cameraBG       *wgpu.BindGroup
	depthLayout    *wgpu.PipelineLayout
	depthPipelines map[core.TargetFormat]*wgpu.RenderPipeline

	// depth attachment shared by color-target depth passes, sized to the last target
	scratchDepth     *wgpu.Texture
	scratchDepthView *wgpu.TextureView
	scratchRes       uint32

	blurBGLs      map[core.TargetFormat]*wgpu.BindGroupLayout
	blurPipelines map[core.TargetFormat]*wgpu.ComputePipeline
	blurGroups    map[blurKey]*wgpu.BindGroup
}

// New creates the uniform buffers and the depth program. keywords may be nil,
// in which case the published keyword bits are always zero.
func New(device *wgpu.Device, keywords *core.Keywords, logger shadows.Logger) (*Backend, error) {
	if logger == nil {
		logger = shadows.NewNopLogger()
	}
	b := &Backend{
		Device:         device,
		Queue:          device.GetQueue(),
		keywords:       keywords,
		logger:         logger,
		targets:        make(map[core.TextureHandle]*gpuTarget),
		depthPipelines: make(map[core.TargetFormat]*wgpu.RenderPipeline),
		blurBGLs:       make(map[core.TargetFormat]*wgpu.BindGroupLayout),
		blurPipelines:  make(map[core.TargetFormat]*wgpu.ComputePipeline),
		blurGroups:     make(map[blurKey]*wgpu.BindGroup),
	}

	var err error
	b.CameraBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Shadow Camera UB",
		Size:  UniformBufferSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("shadow camera buffer: %w", err)
	}
	b.ShadowBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Shadow Data UB",
		Size:  UniformBufferSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("shadow data buffer: %w", err)
	}

	if err := b.initDepthProgram(); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// AllocateTarget creates a square texture with a view and a clamped sampler.
func (b *Backend) AllocateTarget(desc core.TargetDesc) (core.TextureHandle, error) {
	format, err := textureFormat(desc.Format)
	if err != nil {
		return core.TextureHandle{}, err
	}
	if desc.Resolution == 0 {
		return core.TextureHandle{}, fmt.Errorf("zero resolution")
	}

	t := &gpuTarget{desc: desc}
	t.texture, err = b.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Shadow Target " + desc.String(),
		Size:          wgpu.Extent3D{Width: desc.Resolution, Height: desc.Resolution, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         textureUsage(desc),
	})
	if err != nil {
		return core.TextureHandle{}, fmt.Errorf("create texture: %w", err)
	}
	t.view, err = t.texture.CreateView(nil)
	if err != nil {
		t.release()
		return core.TextureHandle{}, fmt.Errorf("create texture view: %w", err)
	}
	t.sampler, err = b.Device.CreateSampler(samplerDescriptor(desc, b.Float32Filterable))
	if err != nil {
		t.release()
		return core.TextureHandle{}, fmt.Errorf("create sampler: %w", err)
	}

	h := core.NewTextureHandle()
	b.targets[h] = t
	b.logger.Debugf("allocated shadow target %s (%s)", h, desc)
	return h, nil
}

// FreeTarget releases the texture and every cached blur binding that used it.
func (b *Backend) FreeTarget(h core.TextureHandle) {
	t, ok := b.targets[h]
	if !ok {
		return
	}
	for k, bg := range b.blurGroups {
		if k.read == h || k.write == h {
			bg.Release()
			delete(b.blurGroups, k)
		}
	}
	t.release()
	delete(b.targets, h)
	b.logger.Debugf("freed shadow target %s", h)
}

// LiveTargets is the number of targets currently allocated.
func (b *Backend) LiveTargets() int {
	return len(b.targets)
}

// View returns the texture view and sampler for h.
func (b *Backend) View(h core.TextureHandle) (*wgpu.TextureView, *wgpu.Sampler, bool) {
	t, ok := b.targets[h]
	if !ok {
		return nil, nil, false
	}
	return t.view, t.sampler, true
}

// Desc returns the description h was allocated with.
func (b *Backend) Desc(h core.TextureHandle) (core.TargetDesc, bool) {
	t, ok := b.targets[h]
	if !ok {
		return core.TargetDesc{}, false
	}
	return t.desc, true
}

func (b *Backend) target(h core.TextureHandle) (*gpuTarget, error) {
	t, ok := b.targets[h]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownTarget, h)
	}
	return t, nil
}

// SetCasters uploads the caster geometry drawn by the next depth passes.
func (b *Backend) SetCasters(casters []*core.Caster) error {
	vertices := BuildCasterMesh(casters)
	b.VertexCount = uint32(len(vertices))
	if len(vertices) == 0 {
		return nil
	}

	data := wgpu.ToBytes(vertices)
	size := uint64(len(data))
	if b.VertexBuf == nil || b.VertexBuf.GetSize() < size {
		if b.VertexBuf != nil {
			b.VertexBuf.Release()
		}
		var err error
		b.VertexBuf, err = b.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Shadow Caster VB",
			Size:  size + size/2, // headroom for growing scenes
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			b.VertexBuf = nil
			b.VertexCount = 0
			return fmt.Errorf("caster vertex buffer: %w", err)
		}
	}
	return b.Queue.WriteBuffer(b.VertexBuf, 0, data)
}

// PublishUniforms writes the shadow block consumers bind.
func (b *Backend) PublishUniforms(state core.ShadowState) error {
	var bits uint32
	if b.keywords != nil {
		bits = b.keywords.Bits()
	}
	data, err := packShadowUniforms(state, bits)
	if err != nil {
		return err
	}
	if err := b.Queue.WriteBuffer(b.ShadowBuf, 0, data); err != nil {
		return err
	}
	return nil
}

// Release frees every GPU object the backend owns, targets included.
func (b *Backend) Release() {
	for h := range b.targets {
		b.FreeTarget(h)
	}
	for k, bg := range b.blurGroups {
		bg.Release()
		delete(b.blurGroups, k)
	}
	for f, p := range b.blurPipelines {
		p.Release()
		delete(b.blurPipelines, f)
	}
	for f, l := range b.blurBGLs {
		l.Release()
		delete(b.blurBGLs, f)
	}
	for f, p := range b.depthPipelines {
		p.Release()
		delete(b.depthPipelines, f)
	}
	b.releaseScratchDepth()

	if b.cameraBG != nil {
		b.cameraBG.Release()
		b.cameraBG = nil
	}
	if b.depthLayout != nil {
		b.depthLayout.Release()
		b.depthLayout = nil
	}
	if b.cameraBGL != nil {
		b.cameraBGL.Release()
		b.cameraBGL = nil
	}
	if b.depthModule != nil {
		b.depthModule.Release()
		b.depthModule = nil
	}
	for _, buf := range []**wgpu.Buffer{&b.VertexBuf, &b.ShadowBuf, &b.CameraBuf} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	b.VertexCount = 0
}

func (b *Backend) submit(encoder *wgpu.CommandEncoder) error {
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmd.Release()
	b.Queue.Submit(cmd)
	return nil
}
