package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LightCamera is the orthographic camera the depth pass renders from.
// It clears to transparent black and keeps its near plane at 0.
type LightCamera struct {
	Transform  Transform
	HalfHeight float32
	Aspect     float32
	Near       float32
	Far        float32
	ClearColor [4]float32
}

func NewLightCamera() *LightCamera {
	return &LightCamera{
		Transform:  *NewTransform(),
		HalfHeight: 1,
		Aspect:     1,
		Near:       0,
		Far:        1,
	}
}

// Fit places the camera on the fitted frustum.
func (c *LightCamera) Fit(f LightFrustum) {
	c.Transform.Position = f.Position
	c.Transform.Rotation = f.Rotation
	c.Transform.Scale = mgl32.Vec3{1, 1, 1}
	c.Transform.Dirty = true
	c.Near = f.Near
	c.Far = f.Far
	c.HalfHeight = f.HalfHeight
	c.Aspect = f.Aspect()
}

func (c *LightCamera) HalfWidth() float32 {
	return c.HalfHeight * c.Aspect
}

// WorldToLocal is the light matrix handed to consumers.
func (c *LightCamera) WorldToLocal() mgl32.Mat4 {
	return c.Transform.WorldToObject()
}

func (c *LightCamera) Projection() mgl32.Mat4 {
	return OrthoLH(c.HalfWidth(), c.HalfHeight, c.Near, c.Far)
}

func (c *LightCamera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.WorldToLocal())
}
