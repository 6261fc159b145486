package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Local axes. Forward is +Z: a light or camera looks down its local +Z.
var (
	AxisRight   = mgl32.Vec3{1, 0, 0}
	AxisUp      = mgl32.Vec3{0, 1, 0}
	AxisForward = mgl32.Vec3{0, 0, 1}
)

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Dirty    bool
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Dirty:    true,
	}
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

func (t *Transform) WorldToObject() mgl32.Mat4 {
	// inv(M) = inv(S) * inv(R) * inv(T)
	invScale := mgl32.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

func (t *Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(AxisForward)
}

func (t *Transform) Up() mgl32.Vec3 {
	return t.Rotation.Rotate(AxisUp)
}

func (t *Transform) Right() mgl32.Vec3 {
	return t.Rotation.Rotate(AxisRight)
}

// TransformPoint maps a local point to world space.
func (t *Transform) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return t.ObjectToWorld().Mul4x1(p.Vec4(1.0)).Vec3()
}

// LookRotation returns the rotation whose local +Z points along forward and whose
// local +Y is as close to up as possible. When forward is (anti)parallel to up a
// fallback up axis is used.
func LookRotation(forward, up mgl32.Vec3) mgl32.Quat {
	if forward.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	z := forward.Normalize()
	if up.Len() < 1e-6 || abs32(up.Normalize().Dot(z)) > 0.999 {
		up = AxisForward
		if abs32(z.Z()) > 0.999 {
			up = AxisUp
		}
	}
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return mgl32.Mat4ToQuat(mgl32.Mat3FromCols(x, y, z).Mat4()).Normalize()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
