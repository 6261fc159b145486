package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadows/rt/core"
)

// scratchDepthFormat backs the depth test when rendering into a color target.
const scratchDepthFormat = wgpu.TextureFormatDepth32Float

func textureFormat(f core.TargetFormat) (wgpu.TextureFormat, error) {
	switch f {
	case core.FormatRG32Float:
		return wgpu.TextureFormatRG32Float, nil
	case core.FormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float, nil
	case core.FormatDepth32Float:
		return wgpu.TextureFormatDepth32Float, nil
	}
	return wgpu.TextureFormatUndefined, fmt.Errorf("unsupported shadow target format %s", f)
}

// storageFormatName is the WGSL texel format name used by the blur kernel.
func storageFormatName(f core.TargetFormat) (string, error) {
	switch f {
	case core.FormatRG32Float:
		return "rg32float", nil
	case core.FormatRGBA32Float:
		return "rgba32float", nil
	}
	return "", fmt.Errorf("%s cannot be bound as a storage texture", f)
}

func bytesPerTexel(f core.TargetFormat) uint32 {
	return uint32(f.Channels()) * 4
}

func textureUsage(desc core.TargetDesc) wgpu.TextureUsage {
	usage := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc
	if desc.RandomWrite {
		usage |= wgpu.TextureUsageStorageBinding
	}
	return usage
}

// samplerDescriptor clamps on every axis. Depth targets get a comparison sampler.
// 32-bit float color targets are unfilterable unless the device has the
// float32-filterable feature, so without it they always sample nearest.
func samplerDescriptor(desc core.TargetDesc, float32Filterable bool) *wgpu.SamplerDescriptor {
	filter := wgpu.FilterModeLinear
	mip := wgpu.MipmapFilterModeNearest
	switch desc.Filter {
	case core.FilterPoint:
		filter = wgpu.FilterModeNearest
	case core.FilterTrilinear:
		mip = wgpu.MipmapFilterModeLinear
	}
	if !desc.Format.IsDepth() && !float32Filterable {
		filter = wgpu.FilterModeNearest
		mip = wgpu.MipmapFilterModeNearest
	}

	sd := &wgpu.SamplerDescriptor{
		Label:         "Shadow Sampler " + desc.String(),
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mip,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
	if desc.Format.IsDepth() {
		sd.Compare = wgpu.CompareFunctionLess
	}
	return sd
}

// alignedBytesPerRow rounds a row up to the 256-byte copy alignment.
func alignedBytesPerRow(width, texel uint32) uint32 {
	return (width*texel + 255) & ^uint32(255)
}
