package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ExtractPlanes extracts the 6 planes of the frustum from a view-projection matrix
// with a [0,1] clip depth range.
// Returns planes in order: Left, Right, Bottom, Top, Near, Far.
// Plane is Ax + By + Cz + D = 0 with the normal pointing inside.
func ExtractPlanes(vp mgl32.Mat4) [6]mgl32.Vec4 {
	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes := [6]mgl32.Vec4{
		r3.Add(r0), // Left
		r3.Sub(r0), // Right
		r3.Add(r1), // Bottom
		r3.Sub(r1), // Top
		r2,         // Near: z >= 0
		r3.Sub(r2), // Far
	}

	for i := 0; i < 6; i++ {
		length := float32(math.Sqrt(float64(planes[i][0]*planes[i][0] + planes[i][1]*planes[i][1] + planes[i][2]*planes[i][2])))
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}

	return planes
}

// Planes returns the six inward-facing planes of the fitted frustum in world space.
func (f LightFrustum) Planes() [6]mgl32.Vec4 {
	return ExtractPlanes(f.ViewProjection())
}

// PointInFrustum reports whether p is on the inner side of every plane, allowing eps.
func PointInFrustum(p mgl32.Vec3, planes [6]mgl32.Vec4, eps float32) bool {
	for _, plane := range planes {
		if plane.Dot(p.Vec4(1.0)) < -eps {
			return false
		}
	}
	return true
}

// BoundsInFrustum checks if an AABB is at least partially inside the frustum.
func BoundsInFrustum(b Bounds, planes [6]mgl32.Vec4) bool {
	for i := 0; i < 6; i++ {
		plane := planes[i]
		// Most-inside corner along the plane normal; if it is behind, all are.
		var p mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if plane[axis] > 0 {
				p[axis] = b.Max[axis]
			} else {
				p[axis] = b.Min[axis]
			}
		}

		dist := plane[0]*p[0] + plane[1]*p[1] + plane[2]*p[2] + plane[3]
		if dist < 0 {
			return false
		}
	}
	return true
}
