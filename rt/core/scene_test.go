package core

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaster_UpdateWorldBounds(t *testing.T) {
	c := NewCaster(Bounds{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}})
	c.Transform.Position = mgl32.Vec3{10, 0, 0}
	c.Transform.Rotation = mgl32.QuatRotate(mgl32.DegToRad(45), AxisUp)

	require.True(t, c.UpdateWorldBounds())
	require.NotNil(t, c.WorldBounds)

	// A rotated unit cube grows to sqrt(2) in x and z.
	wb := *c.WorldBounds
	assert.InDelta(t, 10-1.41421, wb.Min.X(), 1e-4)
	assert.InDelta(t, 10+1.41421, wb.Max.X(), 1e-4)
	assert.InDelta(t, -1, wb.Min.Y(), 1e-5)
	assert.InDelta(t, 1.41421, wb.Max.Z(), 1e-4)

	assert.False(t, c.UpdateWorldBounds(), "clean transform is not recomputed")
}

func TestScene_FindLightAndRenderables(t *testing.T) {
	s := NewScene()
	_, ok := s.FindLight()
	assert.False(t, ok)
	assert.Empty(t, s.FindRenderables())

	light := LightFromDirection(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{0, -1, 0})
	s.SetLight(&light)
	got, ok := s.FindLight()
	require.True(t, ok)
	assert.InDelta(t, -1, got.Forward().Y(), 1e-5)

	a := NewCaster(Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}})
	b := NewCaster(EmptyBounds())
	s.AddCaster(a)
	s.AddCaster(b)
	r := s.FindRenderables()
	require.Len(t, r, 1, "casters without valid bounds are skipped")
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, r[0].Bounds.Max)

	s.RemoveCaster(a)
	assert.Empty(t, s.FindRenderables())

	s.SetLight(nil)
	_, ok = s.FindLight()
	assert.False(t, ok)
}

func TestBounds_Accumulate(t *testing.T) {
	b := EmptyBounds()
	assert.False(t, b.Valid())

	b.Extend(mgl32.Vec3{1, 2, 3})
	assert.True(t, b.Valid())
	assert.Equal(t, b.Min, b.Max)

	b.Extend(mgl32.Vec3{-1, 5, 0})
	assert.Equal(t, mgl32.Vec3{-1, 2, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 5, 3}, b.Max)
	assert.True(t, b.Contains(mgl32.Vec3{0, 3, 1}, 0))
	assert.False(t, b.Contains(mgl32.Vec3{0, 6, 1}, 0))
}

func TestKeywords_SetClearAndOwnership(t *testing.T) {
	k := NewKeywords()
	require.NoError(t, k.Claim("shadows"))
	require.NoError(t, k.Claim("shadows"))
	assert.Error(t, k.Claim("other"))

	k.Set(KeywordHard)
	k.Set("")
	k.Set(KeywordDrawTransparent)
	assert.Equal(t, []string{KeywordDrawTransparent, KeywordHard}, k.Active())
	assert.Equal(t, BitHard|BitDrawTransparent, k.Bits())

	k.Clear(KeywordHard)
	k.Clear(KeywordHard)
	assert.False(t, k.Enabled(KeywordHard))

	k.ReleaseOwner("other")
	assert.Equal(t, "shadows", k.Owner())
	k.ReleaseOwner("shadows")
	assert.NoError(t, k.Claim("other"))
}

func TestKeywords_ConcurrentReaders(t *testing.T) {
	k := NewKeywords()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = k.Bits()
				_ = k.Active()
			}
		}()
	}
	for j := 0; j < 100; j++ {
		k.Set(KeywordVariance)
		k.Clear(KeywordVariance)
	}
	wg.Wait()
}
