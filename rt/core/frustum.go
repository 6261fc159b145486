package core

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// MinFrustumExtent is the smallest light-space extent the fitter will emit on any
// axis. Flat or single-point caster sets are widened to it.
const MinFrustumExtent float32 = 1e-4

var (
	// ErrNoCasters is returned by FitLightFrustum when no finite caster bounds were given.
	ErrNoCasters = errors.New("no shadow casters")
	// ErrDegenerateFrustum is returned when finite casters span more than float32 can hold.
	ErrDegenerateFrustum = errors.New("shadow frustum extent is not finite")
)

// LightFrustum is the orthographic volume fitted around all casters as seen
// from the light. Local* fields are in light-local space (rotation only, +Z forward).
type LightFrustum struct {
	Position mgl32.Vec3 // world position of the camera; sits on the near plane
	Rotation mgl32.Quat

	LocalMin mgl32.Vec3
	LocalMax mgl32.Vec3
	Center   mgl32.Vec3
	Extents  mgl32.Vec3

	HalfWidth  float32
	HalfHeight float32
	Near       float32
	Far        float32
}

// FitLightFrustum computes the tightest light-aligned orthographic frustum that
// contains every corner of every box. Boxes with non-finite corners are ignored.
func FitLightFrustum(boxes []Bounds, rotation mgl32.Quat) (LightFrustum, error) {
	rotation = rotation.Normalize()
	inv := rotation.Conjugate()

	local := EmptyBounds()
	used := 0
	for _, b := range boxes {
		if !b.Valid() {
			continue
		}
		// All 8 corners: an AABB's min/max are not extremal after rotation.
		for _, c := range b.Corners() {
			local.Extend(inv.Rotate(c))
		}
		used++
	}
	if used == 0 || !local.Valid() {
		return LightFrustum{}, ErrNoCasters
	}

	extents := local.Size()
	for i := 0; i < 3; i++ {
		if extents[i] < MinFrustumExtent {
			extents[i] = MinFrustumExtent
		}
	}
	center := local.Center()

	eye := center
	eye[2] -= extents.Z() / 2
	position := rotation.Rotate(eye)
	if !finiteVec(extents) || !finiteVec(center) || !finiteVec(position) {
		return LightFrustum{}, ErrDegenerateFrustum
	}

	return LightFrustum{
		Position:   position,
		Rotation:   rotation,
		LocalMin:   local.Min,
		LocalMax:   local.Max,
		Center:     center,
		Extents:    extents,
		HalfWidth:  extents.X() / 2,
		HalfHeight: extents.Y() / 2,
		Near:       0,
		Far:        extents.Z(),
	}, nil
}

func (f LightFrustum) Aspect() float32 {
	return f.HalfWidth / f.HalfHeight
}

// View returns the world to light-camera matrix.
func (f LightFrustum) View() mgl32.Mat4 {
	t := Transform{Position: f.Position, Rotation: f.Rotation, Scale: mgl32.Vec3{1, 1, 1}}
	return t.WorldToObject()
}

// Projection maps the camera-local box to clip space with x,y in [-1,1] and
// depth in [0,1] (WebGPU convention), depth growing along +Z.
func (f LightFrustum) Projection() mgl32.Mat4 {
	return OrthoLH(f.HalfWidth, f.HalfHeight, f.Near, f.Far)
}

func (f LightFrustum) ViewProjection() mgl32.Mat4 {
	return f.Projection().Mul4(f.View())
}

// OrthoLH builds a centered orthographic projection looking down +Z with a
// [0,1] depth range.
func OrthoLH(halfWidth, halfHeight, near, far float32) mgl32.Mat4 {
	depth := far - near
	return mgl32.Mat4{
		1 / halfWidth, 0, 0, 0,
		0, 1 / halfHeight, 0, 0,
		0, 0, 1 / depth, 0,
		0, 0, -near / depth, 1,
	}
}
