// Package shadows computes a per-frame shadow map for one directional light:
// a tight light-space orthographic fit, a depth render and an optional
// variance blur, published as a uniform block for the main renderer.
package shadows

import (
	"github.com/gekko3d/shadows/rt/core"
)

const (
	DefaultResolution        = 1024
	MinResolution            = 16
	MaxResolution            = 8192
	MaxBlurIterations        = 100
	DefaultBlurIterations    = 1
	DefaultVarianceExpansion = 0.3
)

// Config is the tunable surface of the shadow pipeline.
type Config struct {
	Resolution         int
	Technique          core.Technique
	Sampling           core.Sampling
	BlurIterations     int
	MaxShadowIntensity float32
	VarianceExpansion  float32
	DrawTransparent    bool
	Filter             core.FilterMode
}

func DefaultConfig() Config {
	return Config{
		Resolution:         DefaultResolution,
		Technique:          core.TechniqueHard,
		Sampling:           core.SampleColor,
		BlurIterations:     DefaultBlurIterations,
		MaxShadowIntensity: 1,
		VarianceExpansion:  DefaultVarianceExpansion,
		DrawTransparent:    true,
		Filter:             core.FilterBilinear,
	}
}

// Normalize clamps every field into its valid range.
func (c Config) Normalize() Config {
	if c.Resolution <= 0 {
		c.Resolution = DefaultResolution
	}
	c.Resolution = clampInt(c.Resolution, MinResolution, MaxResolution)
	c.BlurIterations = clampInt(c.BlurIterations, 0, MaxBlurIterations)
	c.MaxShadowIntensity = clamp01(c.MaxShadowIntensity)
	c.VarianceExpansion = clamp01(c.VarianceExpansion)
	if c.Technique > core.TechniqueVariance {
		c.Technique = core.TechniqueNone
	}
	if c.Sampling > core.SampleDepth {
		c.Sampling = core.SampleColor
	}
	if c.Filter > core.FilterTrilinear {
		c.Filter = core.FilterBilinear
	}
	return c
}

// TargetDesc derives the render target description for the configured technique.
func (c Config) TargetDesc() core.TargetDesc {
	format := core.TargetFormatFor(c.Technique, c.Sampling)
	return core.TargetDesc{
		Resolution:  uint32(c.Resolution),
		Format:      format,
		Filter:      c.Filter,
		RandomWrite: format.SupportsRandomWrite(),
	}
}

// BlurPasses is the number of ping-pong passes that will actually run.
func (c Config) BlurPasses() int {
	if !c.Technique.NeedsBlur() {
		return 0
	}
	return c.BlurIterations
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
