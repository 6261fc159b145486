package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLightFrustum_UnitCubeIdentity(t *testing.T) {
	cube := Bounds{Min: mgl32.Vec3{-0.5, -0.5, -0.5}, Max: mgl32.Vec3{0.5, 0.5, 0.5}}

	f, err := FitLightFrustum([]Bounds{cube}, mgl32.QuatIdent())
	require.NoError(t, err)

	assert.Equal(t, mgl32.Vec3{1, 1, 1}, f.Extents)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, f.Center)
	assert.Equal(t, mgl32.Vec3{0, 0, -0.5}, f.Position, "camera sits on the nearest geometry")
	assert.Equal(t, float32(0), f.Near)
	assert.Equal(t, float32(1), f.Far)
	assert.Equal(t, float32(0.5), f.HalfHeight)
	assert.Equal(t, float32(1), f.Aspect())
}

func TestFitLightFrustum_NoCasters(t *testing.T) {
	_, err := FitLightFrustum(nil, mgl32.QuatIdent())
	assert.ErrorIs(t, err, ErrNoCasters)

	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	bad := []Bounds{
		{Min: mgl32.Vec3{nan, 0, 0}, Max: mgl32.Vec3{1, 1, 1}},
		{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{inf, 1, 1}},
		EmptyBounds(),
	}
	_, err = FitLightFrustum(bad, mgl32.QuatIdent())
	assert.ErrorIs(t, err, ErrNoCasters)
}

func TestFitLightFrustum_IgnoresInvalidBoxes(t *testing.T) {
	good := Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 4, 6}}
	f, err := FitLightFrustum([]Bounds{EmptyBounds(), good}, mgl32.QuatIdent())
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{2, 4, 6}, f.Extents)
	assert.Equal(t, float32(0.5), f.Aspect())
}

func TestFitLightFrustum_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		box  Bounds
	}{
		{"flat in y", Bounds{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 0, 1}}},
		{"flat in x", Bounds{Min: mgl32.Vec3{3, -1, -1}, Max: mgl32.Vec3{3, 1, 1}}},
		{"flat in z", Bounds{Min: mgl32.Vec3{-1, -1, 5}, Max: mgl32.Vec3{1, 1, 5}}},
		{"single point", Bounds{Min: mgl32.Vec3{1, 2, 3}, Max: mgl32.Vec3{1, 2, 3}}},
	}

	for _, tc := range tests {
		f, err := FitLightFrustum([]Bounds{tc.box}, mgl32.QuatIdent())
		require.NoError(t, err, tc.name)

		aspect := f.Aspect()
		assert.False(t, math.IsNaN(float64(aspect)) || math.IsInf(float64(aspect), 0), "%s: aspect %v", tc.name, aspect)
		assert.Greater(t, aspect, float32(0), tc.name)
		assert.Greater(t, f.HalfHeight, float32(0), tc.name)
		assert.Greater(t, f.Far, f.Near, tc.name)
		for i := 0; i < 3; i++ {
			assert.GreaterOrEqual(t, f.Extents[i], MinFrustumExtent, tc.name)
		}
	}
}

func TestFitLightFrustum_OverflowingExtent(t *testing.T) {
	tests := []struct {
		name string
		box  Bounds
		rot  mgl32.Quat
	}{
		{"wide in x", Bounds{Min: mgl32.Vec3{-2e38, -1, -1}, Max: mgl32.Vec3{2e38, 1, 1}}, mgl32.QuatIdent()},
		{"deep in z", Bounds{Min: mgl32.Vec3{-1, -1, -2e38}, Max: mgl32.Vec3{1, 1, 2e38}}, mgl32.QuatIdent()},
		{"tall under rotation", Bounds{Min: mgl32.Vec3{-1, -3e38, -1}, Max: mgl32.Vec3{1, 3e38, 1}},
			mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{1, 0, 0})},
	}

	for _, tc := range tests {
		require.True(t, tc.box.Valid(), tc.name)
		f, err := FitLightFrustum([]Bounds{tc.box}, tc.rot)
		assert.ErrorIs(t, err, ErrDegenerateFrustum, tc.name)
		assert.Equal(t, LightFrustum{}, f, tc.name)
	}
}

func TestFitLightFrustum_QuarterTurn(t *testing.T) {
	// Light looking down world +X: local +Z maps to world +X.
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	require.InDelta(t, 1, rot.Rotate(AxisForward).X(), 1e-5)

	box := Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 1, 3}}
	f, err := FitLightFrustum([]Bounds{box}, rot)
	require.NoError(t, err)

	assert.InDelta(t, 3, f.Extents.X(), 1e-4)
	assert.InDelta(t, 1, f.Extents.Y(), 1e-4)
	assert.InDelta(t, 2, f.Extents.Z(), 1e-4, "depth runs along world x")
	assert.InDelta(t, 0, f.Position.X(), 1e-4, "near plane at the box's min x")
	assert.InDelta(t, 0.5, f.Position.Y(), 1e-4)
	assert.InDelta(t, 1.5, f.Position.Z(), 1e-4)
}

func TestFitLightFrustum_ContainsAllCorners(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randVec := func(scale float32) mgl32.Vec3 {
		return mgl32.Vec3{
			(rng.Float32()*2 - 1) * scale,
			(rng.Float32()*2 - 1) * scale,
			(rng.Float32()*2 - 1) * scale,
		}
	}

	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.Intn(6)
		boxes := make([]Bounds, n)
		for i := range boxes {
			half := randVec(5)
			for a := 0; a < 3; a++ {
				half[a] = abs32(half[a])
			}
			boxes[i] = BoundsFromCenter(randVec(50), half)
		}
		axis := randVec(1)
		if axis.Len() < 1e-3 {
			axis = AxisUp
		}
		rot := mgl32.QuatRotate(rng.Float32()*2*math.Pi, axis.Normalize())

		f, err := FitLightFrustum(boxes, rot)
		require.NoError(t, err)

		local := Bounds{Min: f.LocalMin, Max: f.LocalMax}
		planes := f.Planes()
		inv := f.Rotation.Conjugate()
		for _, b := range boxes {
			for _, c := range b.Corners() {
				lc := inv.Rotate(c)
				if !local.Contains(lc, 1e-3) {
					t.Fatalf("iter %d: corner %v (local %v) outside [%v, %v]", iter, c, lc, f.LocalMin, f.LocalMax)
				}
				if !PointInFrustum(c, planes, 1e-3) {
					t.Fatalf("iter %d: corner %v outside fitted frustum planes", iter, c)
				}
			}
		}

		// The camera sits on the near face of the light-space box.
		eye := inv.Rotate(f.Position)
		assert.InDelta(t, f.LocalMin.Z(), eye.Z(), 1e-2)
		assert.Greater(t, f.Far, f.Near)
	}
}

func TestLightFrustum_ViewProjectionMapsBoxToClip(t *testing.T) {
	box := Bounds{Min: mgl32.Vec3{-2, -1, 4}, Max: mgl32.Vec3{2, 1, 10}}
	f, err := FitLightFrustum([]Bounds{box}, mgl32.QuatIdent())
	require.NoError(t, err)

	vp := f.ViewProjection()
	near := vp.Mul4x1(mgl32.Vec4{-2, -1, 4, 1})
	far := vp.Mul4x1(mgl32.Vec4{2, 1, 10, 1})

	assert.InDelta(t, -1, near.X(), 1e-5)
	assert.InDelta(t, -1, near.Y(), 1e-5)
	assert.InDelta(t, 0, near.Z(), 1e-5)
	assert.InDelta(t, 1, far.X(), 1e-5)
	assert.InDelta(t, 1, far.Y(), 1e-5)
	assert.InDelta(t, 1, far.Z(), 1e-5)
}
