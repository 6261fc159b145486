package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadows/rt/core"
	"github.com/gekko3d/shadows/rt/shaders"
	"github.com/gekko3d/shadows/rt/target"
)

func (b *Backend) blurPipeline(f core.TargetFormat) (*wgpu.ComputePipeline, *wgpu.BindGroupLayout, error) {
	if p, ok := b.blurPipelines[f]; ok {
		return p, b.blurBGLs[f], nil
	}
	name, err := storageFormatName(f)
	if err != nil {
		return nil, nil, err
	}
	format, err := textureFormat(f)
	if err != nil {
		return nil, nil, err
	}

	module, err := b.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Shadow Blur CS " + name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.BlurWGSL(name)},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("shadow blur shader %s: %w", name, err)
	}
	defer module.Release()

	bgl, err := b.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Blur BGL " + name,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        format,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("shadow blur layout %s: %w", name, err)
	}

	layout, err := b.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Blur Layout " + name,
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		bgl.Release()
		return nil, nil, fmt.Errorf("shadow blur pipeline layout %s: %w", name, err)
	}
	defer layout.Release()

	p, err := b.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "Shadow Blur Pipeline " + name,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		bgl.Release()
		return nil, nil, fmt.Errorf("shadow blur pipeline %s: %w", name, err)
	}
	b.blurPipelines[f] = p
	b.blurBGLs[f] = bgl
	return p, bgl, nil
}

func (b *Backend) blurBindGroup(bgl *wgpu.BindGroupLayout, read, write *gpuTarget, key blurKey) (*wgpu.BindGroup, error) {
	if bg, ok := b.blurGroups[key]; ok {
		return bg, nil
	}
	bg, err := b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Shadow Blur BG",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: read.view},
			{Binding: 1, TextureView: write.view},
		},
	})
	if err != nil {
		return nil, err
	}
	b.blurGroups[key] = bg
	return bg, nil
}

// BlurDispatch runs one blur pass sampling read and storing into write.
func (b *Backend) BlurDispatch(read, write target.Target, groupsX, groupsY uint32) error {
	src, err := b.target(read.Handle)
	if err != nil {
		return err
	}
	dst, err := b.target(write.Handle)
	if err != nil {
		return err
	}
	if !src.desc.Matches(dst.desc) {
		return fmt.Errorf("%w: %s vs %s", target.ErrMismatchedTargets, src.desc, dst.desc)
	}
	if !dst.desc.RandomWrite {
		return fmt.Errorf("%w: %s is not writable from compute", target.ErrMismatchedTargets, dst.desc)
	}

	pipeline, bgl, err := b.blurPipeline(dst.desc.Format)
	if err != nil {
		return err
	}
	bg, err := b.blurBindGroup(bgl, src, dst, blurKey{read: read.Handle, write: write.Handle})
	if err != nil {
		return fmt.Errorf("shadow blur bind group: %w", err)
	}

	encoder, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("shadow blur encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups(groupsX, groupsY, 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("shadow blur pass: %w", err)
	}
	return b.submit(encoder)
}
