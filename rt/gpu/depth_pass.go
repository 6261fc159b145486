package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadows/rt/core"
	"github.com/gekko3d/shadows/rt/shaders"
	"github.com/gekko3d/shadows/rt/target"
)

func (b *Backend) initDepthProgram() error {
	var err error
	b.depthModule, err = b.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Shadow Depth Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.DepthWGSL},
	})
	if err != nil {
		return fmt.Errorf("shadow depth shader: %w", err)
	}

	b.cameraBGL, err = b.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Camera BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: UniformBufferSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("shadow camera layout: %w", err)
	}

	b.depthLayout, err = b.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Depth Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.cameraBGL},
	})
	if err != nil {
		return fmt.Errorf("shadow depth pipeline layout: %w", err)
	}

	b.cameraBG, err = b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Shadow Camera BG",
		Layout: b.cameraBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.CameraBuf, Size: UniformBufferSize},
		},
	})
	if err != nil {
		return fmt.Errorf("shadow camera bind group: %w", err)
	}
	return nil
}

// depthPipeline returns the depth-capture pipeline for a target format. Depth
// targets render depth only; color targets receive the moments and test against
// the scratch depth buffer.
func (b *Backend) depthPipeline(f core.TargetFormat) (*wgpu.RenderPipeline, error) {
	if p, ok := b.depthPipelines[f]; ok {
		return p, nil
	}
	format, err := textureFormat(f)
	if err != nil {
		return nil, err
	}
	layout, err := vertexBufferLayout(CasterVertex{})
	if err != nil {
		return nil, err
	}

	var fragment *wgpu.FragmentState
	if !f.IsDepth() {
		fragment = &wgpu.FragmentState{
			Module:     b.depthModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		}
	}

	p, err := b.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shadow Depth Pipeline " + f.String(),
		Layout: b.depthLayout,
		Vertex: wgpu.VertexState{
			Module:     b.depthModule,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{layout},
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            scratchDepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shadow depth pipeline %s: %w", f, err)
	}
	b.depthPipelines[f] = p
	return p, nil
}

func (b *Backend) ensureScratchDepth(res uint32) error {
	if b.scratchDepth != nil && b.scratchRes == res {
		return nil
	}
	b.releaseScratchDepth()

	tex, err := b.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Shadow Scratch Depth",
		Size:          wgpu.Extent3D{Width: res, Height: res, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        scratchDepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("shadow scratch depth: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("shadow scratch depth view: %w", err)
	}
	b.scratchDepth, b.scratchDepthView, b.scratchRes = tex, view, res
	return nil
}

func (b *Backend) releaseScratchDepth() {
	if b.scratchDepthView != nil {
		b.scratchDepthView.Release()
		b.scratchDepthView = nil
	}
	if b.scratchDepth != nil {
		b.scratchDepth.Release()
		b.scratchDepth = nil
	}
	b.scratchRes = 0
}

// RenderDepth clears dst to the camera clear color and draws every uploaded
// caster from cam.
func (b *Backend) RenderDepth(cam *core.LightCamera, dst target.Target) error {
	t, err := b.target(dst.Handle)
	if err != nil {
		return err
	}
	res := t.desc.Resolution

	uniforms, err := packCameraUniforms(cam, res)
	if err != nil {
		return err
	}
	if err := b.Queue.WriteBuffer(b.CameraBuf, 0, uniforms); err != nil {
		return fmt.Errorf("shadow camera upload: %w", err)
	}

	pipeline, err := b.depthPipeline(t.desc.Format)
	if err != nil {
		return err
	}

	desc := &wgpu.RenderPassDescriptor{}
	if t.desc.Format.IsDepth() {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            t.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	} else {
		if err := b.ensureScratchDepth(res); err != nil {
			return err
		}
		cc := cam.ClearColor
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{
			{
				View:    t.view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(cc[0]), G: float64(cc[1]), B: float64(cc[2]), A: float64(cc[3]),
				},
			},
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            b.scratchDepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		}
	}

	encoder, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("shadow depth encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(desc)
	if b.VertexCount > 0 && b.VertexBuf != nil {
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, b.cameraBG, nil)
		pass.SetVertexBuffer(0, b.VertexBuf, 0, wgpu.WholeSize)
		pass.Draw(b.VertexCount, 1, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("shadow depth pass: %w", err)
	}
	return b.submit(encoder)
}
