package debugview

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/gekko3d/shadows/rt/core"
	"github.com/gekko3d/shadows/rt/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(w, h uint32, channels int) gpu.Readback {
	r := gpu.Readback{Width: w, Height: h, Channels: channels, Texels: make([]float32, int(w*h)*channels)}
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			i := int(y*w+x) * channels
			r.Texels[i] = float32(x) / float32(w-1)
			if channels > 1 {
				r.Texels[i+1] = r.Texels[i] * r.Texels[i]
			}
		}
	}
	return r
}

func TestGrayscale(t *testing.T) {
	r := ramp(5, 2, 2)
	r.Texels[2] = float32(math.NaN()) // texel (1,0)
	r.Texels[(5+4)*2] = 7             // texel (4,1) beyond the far plane

	img, err := Grayscale(r, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 2), img.Bounds())
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), img.GrayAt(1, 0).Y, "NaN reads as 0")
	assert.Equal(t, uint8(128), img.GrayAt(2, 0).Y)
	assert.Equal(t, uint8(255), img.GrayAt(4, 0).Y)
	assert.Equal(t, uint8(255), img.GrayAt(4, 1).Y, "clamped")

	second, err := Grayscale(r, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(64), second.GrayAt(2, 0).Y)

	_, err = Grayscale(r, 2)
	assert.Error(t, err)

	r.Texels = r.Texels[:3]
	_, err = Grayscale(r, 0)
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	img, err := Grayscale(ramp(64, 64, 1), 0)
	require.NoError(t, err)

	thumb := Thumbnail(img, 32)
	assert.Equal(t, image.Rect(0, 0, 32, 32), thumb.Bounds())
	left := thumb.RGBAAt(0, 16).R
	right := thumb.RGBAAt(31, 16).R
	assert.Less(t, left, right)

	assert.Equal(t, DefaultThumbnail, Thumbnail(img, 0).Bounds().Dx())
}

func TestLabelDrawsIntoTopStrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	require.NoError(t, Label(img, "variance"))

	lit := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y).R > 128 {
				lit++
			}
		}
	}
	assert.Positive(t, lit, "glyph pixels in the strip")
	assert.Equal(t, uint8(0), img.RGBAAt(100, 90).A, "below the strip untouched")
}

func TestRenderAndSave(t *testing.T) {
	state := core.ShadowState{
		Technique: core.TechniqueHard,
		Scale:     core.ShadowScale{Height: 10, Width: 20, Far: 3, Texel: 1.0 / 16},
		Frame:     9,
	}
	assert.Equal(t, "hard 16x16  20.0x10.0 far 3.0  frame 9", Caption(state, 16))

	img, err := Render(ramp(16, 16, 2), state, 64)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, img))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), decoded.Bounds())

	path := filepath.Join(t.TempDir(), "shadow.png")
	require.NoError(t, Save(path, img))
	assert.FileExists(t, path)
}
