package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBoundsInFrustum_Ortho(t *testing.T) {
	// Camera at origin looking down +Z, 10x10 half extents, depth 0..20.
	cam := NewLightCamera()
	cam.HalfHeight = 10
	cam.Aspect = 1
	cam.Far = 20
	planes := ExtractPlanes(cam.ViewProjection())

	tests := []struct {
		name     string
		aabbMin  mgl32.Vec3
		aabbMax  mgl32.Vec3
		expected bool
	}{
		{
			name:     "Inside (center)",
			aabbMin:  mgl32.Vec3{-1, -1, 4},
			aabbMax:  mgl32.Vec3{1, 1, 6},
			expected: true,
		},
		{
			name:     "Outside (Left)",
			aabbMin:  mgl32.Vec3{-20, -1, 4},
			aabbMax:  mgl32.Vec3{-15, 1, 6},
			expected: false,
		},
		{
			name:     "Outside (Top)",
			aabbMin:  mgl32.Vec3{-1, 11, 4},
			aabbMax:  mgl32.Vec3{1, 12, 6},
			expected: false,
		},
		{
			name:     "Outside (Behind/Near)",
			aabbMin:  mgl32.Vec3{-1, -1, -5},
			aabbMax:  mgl32.Vec3{1, 1, -2},
			expected: false,
		},
		{
			name:     "Outside (Far)",
			aabbMin:  mgl32.Vec3{-1, -1, 24},
			aabbMax:  mgl32.Vec3{1, 1, 26},
			expected: false,
		},
		{
			name:     "Intersecting (Right Plane)",
			aabbMin:  mgl32.Vec3{5, -1, 4},
			aabbMax:  mgl32.Vec3{15, 1, 6},
			expected: true,
		},
		{
			name:     "Encompassing (Huge box)",
			aabbMin:  mgl32.Vec3{-1000, -1000, -1000},
			aabbMax:  mgl32.Vec3{1000, 1000, 1000},
			expected: true,
		},
	}

	for _, tc := range tests {
		b := Bounds{Min: tc.aabbMin, Max: tc.aabbMax}
		visible := BoundsInFrustum(b, planes)
		if visible != tc.expected {
			t.Errorf("Test %s failed: expected %v, got %v", tc.name, tc.expected, visible)
			for i, p := range planes {
				dist := p.Dot(b.Center().Vec4(1.0))
				t.Logf("  P%d: %v, Dist(Center)=%f", i, p, dist)
			}
		}
	}
}

func TestPointInFrustum_RotatedCamera(t *testing.T) {
	cam := NewLightCamera()
	cam.Transform.Rotation = LookRotation(mgl32.Vec3{0, -1, 0}, AxisForward)
	cam.Transform.Position = mgl32.Vec3{0, 10, 0}
	cam.HalfHeight = 2
	cam.Aspect = 2
	cam.Far = 10
	planes := ExtractPlanes(cam.ViewProjection())

	if !PointInFrustum(mgl32.Vec3{0, 5, 0}, planes, 0) {
		t.Error("point below the camera should be inside")
	}
	if PointInFrustum(mgl32.Vec3{0, 11, 0}, planes, 0) {
		t.Error("point behind the camera should be outside")
	}
	if PointInFrustum(mgl32.Vec3{0, -1, 0}, planes, 0) {
		t.Error("point past the far plane should be outside")
	}
	if PointInFrustum(mgl32.Vec3{5, 5, 0}, planes, 0) && PointInFrustum(mgl32.Vec3{0, 5, 5}, planes, 0) {
		t.Error("points beyond both half extents cannot both be inside")
	}
}
