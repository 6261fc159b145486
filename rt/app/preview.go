package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadows/rt/core"
	"github.com/gekko3d/shadows/rt/shaders"
)

// preview blits the published shadow texture to the swapchain. Depth targets and
// float color targets need different bind group layouts, so there is one
// pipeline per kind.
type preview struct {
	device *wgpu.Device
	format wgpu.TextureFormat

	pipelines map[bool]*wgpu.RenderPipeline
	layouts   map[bool]*wgpu.BindGroupLayout

	bindGroup *wgpu.BindGroup
	bound     core.TextureHandle
}

func newPreview(device *wgpu.Device, surfaceFormat wgpu.TextureFormat) *preview {
	return &preview{
		device:    device,
		format:    surfaceFormat,
		pipelines: make(map[bool]*wgpu.RenderPipeline),
		layouts:   make(map[bool]*wgpu.BindGroupLayout),
	}
}

func (p *preview) pipeline(depth bool) (*wgpu.RenderPipeline, *wgpu.BindGroupLayout, error) {
	if rp, ok := p.pipelines[depth]; ok {
		return rp, p.layouts[depth], nil
	}

	code := shaders.PreviewWGSL
	sampleType := wgpu.TextureSampleTypeUnfilterableFloat
	if depth {
		code = shaders.PreviewDepthWGSL
		sampleType = wgpu.TextureSampleTypeDepth
	}

	module, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Shadow Preview",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("preview shader: %w", err)
	}
	defer module.Release()

	bgl, err := p.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Preview BGL",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    sampleType,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("preview layout: %w", err)
	}

	layout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		bgl.Release()
		return nil, nil, fmt.Errorf("preview pipeline layout: %w", err)
	}
	defer layout.Release()

	rp, err := p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shadow Preview Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    p.format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		bgl.Release()
		return nil, nil, fmt.Errorf("preview pipeline: %w", err)
	}
	p.pipelines[depth] = rp
	p.layouts[depth] = bgl
	return rp, bgl, nil
}

// bind returns the pipeline and bind group for h, rebuilding the group when the
// published texture changed (resolution switch or ping-pong parity).
func (p *preview) bind(h core.TextureHandle, view *wgpu.TextureView, depth bool) (*wgpu.RenderPipeline, *wgpu.BindGroup, error) {
	rp, bgl, err := p.pipeline(depth)
	if err != nil {
		return nil, nil, err
	}
	if p.bindGroup != nil && p.bound == h {
		return rp, p.bindGroup, nil
	}
	p.releaseBindGroup()

	bg, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Shadow Preview BG",
		Layout:  bgl,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, TextureView: view}},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("preview bind group: %w", err)
	}
	p.bindGroup = bg
	p.bound = h
	return rp, bg, nil
}

func (p *preview) releaseBindGroup() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	p.bound = core.TextureHandle{}
}

func (p *preview) release() {
	p.releaseBindGroup()
	for k, rp := range p.pipelines {
		rp.Release()
		delete(p.pipelines, k)
	}
	for k, bgl := range p.layouts {
		bgl.Release()
		delete(p.layouts, k)
	}
}
