package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowScale carries the shadow map footprint to the consumer.
type ShadowScale struct {
	Height float32 // 2 * orthographic half height
	Width  float32 // aspect * Height
	Far    float32
	Texel  float32 // 1 / resolution
}

func NewShadowScale(cam *LightCamera, resolution uint32) ShadowScale {
	height := cam.HalfHeight * 2
	texel := float32(0)
	if resolution > 0 {
		texel = 1.0 / float32(resolution)
	}
	return ShadowScale{
		Height: height,
		Width:  cam.Aspect * height,
		Far:    cam.Far,
		Texel:  texel,
	}
}

// Vec4 packs the scale as (height, width, far, texel).
func (s ShadowScale) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{s.Height, s.Width, s.Far, s.Texel}
}

// ShadowState is the block published once per frame for the main renderer.
type ShadowState struct {
	Texture           TextureHandle
	LightMatrix       mgl32.Mat4
	Scale             ShadowScale
	MaxIntensity      float32
	VarianceExpansion float32
	DrawTransparent   bool
	Technique         Technique
	Frame             uint64
}
