// Package debugview turns a read-back shadow target into a labelled grayscale
// image for inspection.
package debugview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"sync"

	"github.com/gekko3d/shadows/rt/core"
	"github.com/gekko3d/shadows/rt/gpu"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultThumbnail = 512
	labelSize        = 14
	labelPad         = 4
)

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
)

func labelFace() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			faceErr = fmt.Errorf("failed to parse font: %w", err)
			return
		}
		face, faceErr = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    labelSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return face, faceErr
}

// Grayscale maps one channel of r to gray levels, brighter is farther from the
// light. Values are clamped to [0, 1]; NaN reads as 0.
func Grayscale(r gpu.Readback, channel int) (*image.Gray, error) {
	if channel < 0 || channel >= r.Channels {
		return nil, fmt.Errorf("channel %d out of range for %d-channel target", channel, r.Channels)
	}
	if len(r.Texels) < int(r.Width*r.Height)*r.Channels {
		return nil, fmt.Errorf("readback holds %d floats, want %d", len(r.Texels), int(r.Width*r.Height)*r.Channels)
	}

	img := image.NewGray(image.Rect(0, 0, int(r.Width), int(r.Height)))
	for y := uint32(0); y < r.Height; y++ {
		for x := uint32(0); x < r.Width; x++ {
			v := float64(r.At(x, y, channel))
			if math.IsNaN(v) {
				v = 0
			}
			v = math.Min(1, math.Max(0, v))
			img.SetGray(int(x), int(y), color.Gray{Y: uint8(math.Round(v * 255))})
		}
	}
	return img, nil
}

// Thumbnail scales src to a size x size RGBA image.
func Thumbnail(src image.Image, size int) *image.RGBA {
	if size <= 0 {
		size = DefaultThumbnail
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Label draws text on a dark strip across the top of dst.
func Label(dst draw.Image, text string) error {
	f, err := labelFace()
	if err != nil {
		return err
	}
	metrics := f.Metrics()
	strip := (metrics.Ascent + metrics.Descent).Ceil() + 2*labelPad
	b := dst.Bounds()
	draw.Draw(dst, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+strip), image.NewUniform(color.RGBA{A: 200}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: f,
		Dot:  fixed.P(b.Min.X+labelPad, b.Min.Y+labelPad+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
	return nil
}

// Caption describes the published state a snapshot was taken from.
func Caption(state core.ShadowState, res uint32) string {
	return fmt.Sprintf("%s %dx%d  %.1fx%.1f far %.1f  frame %d",
		state.Technique, res, res, state.Scale.Width, state.Scale.Height, state.Scale.Far, state.Frame)
}

// Render builds the labelled thumbnail of r.
func Render(r gpu.Readback, state core.ShadowState, size int) (*image.RGBA, error) {
	gray, err := Grayscale(r, 0)
	if err != nil {
		return nil, err
	}
	img := Thumbnail(gray, size)
	if err := Label(img, Caption(state, r.Width)); err != nil {
		return nil, err
	}
	return img, nil
}

func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Save writes img as a PNG file at path.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
