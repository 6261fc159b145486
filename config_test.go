package shadows

import (
	"math"
	"testing"

	"github.com/gekko3d/shadows/rt/core"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1024, cfg.Resolution)
	assert.Equal(t, core.TechniqueHard, cfg.Technique)
	assert.Equal(t, 1, cfg.BlurIterations)
	assert.Equal(t, float32(1), cfg.MaxShadowIntensity)
	assert.Equal(t, float32(0.3), cfg.VarianceExpansion)
	assert.True(t, cfg.DrawTransparent)
	assert.Equal(t, core.FilterBilinear, cfg.Filter)
	assert.Equal(t, cfg, cfg.Normalize(), "defaults are already normal")
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want func(t *testing.T, c Config)
	}{
		{
			name: "zero resolution falls back to default",
			in:   Config{Resolution: 0},
			want: func(t *testing.T, c Config) { assert.Equal(t, DefaultResolution, c.Resolution) },
		},
		{
			name: "resolution clamped",
			in:   Config{Resolution: 1 << 20},
			want: func(t *testing.T, c Config) { assert.Equal(t, MaxResolution, c.Resolution) },
		},
		{
			name: "tiny resolution raised",
			in:   Config{Resolution: 3},
			want: func(t *testing.T, c Config) { assert.Equal(t, MinResolution, c.Resolution) },
		},
		{
			name: "blur iterations clamped",
			in:   Config{Resolution: 512, BlurIterations: -4},
			want: func(t *testing.T, c Config) { assert.Equal(t, 0, c.BlurIterations) },
		},
		{
			name: "blur iterations capped",
			in:   Config{Resolution: 512, BlurIterations: 1000},
			want: func(t *testing.T, c Config) { assert.Equal(t, MaxBlurIterations, c.BlurIterations) },
		},
		{
			name: "intensity and expansion clamped to unit range",
			in:   Config{Resolution: 512, MaxShadowIntensity: 3, VarianceExpansion: -1},
			want: func(t *testing.T, c Config) {
				assert.Equal(t, float32(1), c.MaxShadowIntensity)
				assert.Equal(t, float32(0), c.VarianceExpansion)
			},
		},
		{
			name: "NaN intensity becomes zero",
			in:   Config{Resolution: 512, MaxShadowIntensity: float32(math.NaN())},
			want: func(t *testing.T, c Config) { assert.Equal(t, float32(0), c.MaxShadowIntensity) },
		},
		{
			name: "unknown enums reset",
			in:   Config{Resolution: 512, Technique: 9, Filter: 9, Sampling: 9},
			want: func(t *testing.T, c Config) {
				assert.Equal(t, core.TechniqueNone, c.Technique)
				assert.Equal(t, core.FilterBilinear, c.Filter)
				assert.Equal(t, core.SampleColor, c.Sampling)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.want(t, tc.in.Normalize())
		})
	}
}

func TestConfig_TargetDesc(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolution = 512
	cfg.Technique = core.TechniqueHard
	cfg.Sampling = core.SampleDepth
	desc := cfg.TargetDesc()
	assert.Equal(t, core.FormatDepth32Float, desc.Format)
	assert.False(t, desc.RandomWrite)
	assert.Equal(t, uint32(512), desc.Resolution)
	assert.Equal(t, 0, cfg.BlurPasses())

	cfg.Technique = core.TechniqueVariance
	cfg.Sampling = core.SampleColor
	cfg.BlurIterations = 3
	desc = cfg.TargetDesc()
	assert.Equal(t, core.FormatRG32Float, desc.Format)
	assert.True(t, desc.RandomWrite)
	assert.Equal(t, 3, cfg.BlurPasses())
}
