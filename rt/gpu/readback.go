package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadows/rt/core"
)

// Readback is a CPU copy of one shadow target, row-major, Channels floats per texel.
type Readback struct {
	Width    uint32
	Height   uint32
	Channels int
	Texels   []float32
}

// At returns channel c of texel (x, y).
func (r Readback) At(x, y uint32, c int) float32 {
	return r.Texels[(int(y*r.Width+x))*r.Channels+c]
}

// ReadbackTarget copies h to a mapped buffer and blocks until the GPU is done.
// Meant for snapshots and tests, not per-frame use.
func (b *Backend) ReadbackTarget(h core.TextureHandle) (Readback, error) {
	t, err := b.target(h)
	if err != nil {
		return Readback{}, err
	}
	res := t.desc.Resolution
	texel := bytesPerTexel(t.desc.Format)
	bytesPerRow := alignedBytesPerRow(res, texel)
	size := uint64(bytesPerRow) * uint64(res)

	buf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Shadow Readback",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return Readback{}, fmt.Errorf("shadow readback buffer: %w", err)
	}
	defer buf.Release()

	encoder, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return Readback{}, fmt.Errorf("shadow readback encoder: %w", err)
	}
	defer encoder.Release()

	aspect := wgpu.TextureAspectAll
	if t.desc.Format.IsDepth() {
		aspect = wgpu.TextureAspectDepthOnly
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   aspect,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buf,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: res,
			},
		},
		&wgpu.Extent3D{Width: res, Height: res, DepthOrArrayLayers: 1},
	)
	if err := b.submit(encoder); err != nil {
		return Readback{}, err
	}

	var status wgpu.BufferMapAsyncStatus
	done := false
	buf.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		done = true
	})
	for !done {
		b.Device.Poll(true, nil)
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return Readback{}, fmt.Errorf("shadow readback map failed: %v", status)
	}
	defer buf.Unmap()

	data := buf.GetMappedRange(0, uint(size))
	return unpackRows(data, res, res, bytesPerRow, t.desc.Format.Channels()), nil
}

// unpackRows strips the row padding of a mapped copy into tightly packed floats.
func unpackRows(data []byte, width, height, bytesPerRow uint32, channels int) Readback {
	out := Readback{
		Width:    width,
		Height:   height,
		Channels: channels,
		Texels:   make([]float32, int(width*height)*channels),
	}
	rowFloats := int(width) * channels
	for y := uint32(0); y < height; y++ {
		row := data[y*bytesPerRow:]
		for i := 0; i < rowFloats; i++ {
			bits := binary.LittleEndian.Uint32(row[i*4 : i*4+4])
			out.Texels[int(y)*rowFloats+i] = math.Float32frombits(bits)
		}
	}
	return out
}
