package core

import (
	"fmt"
	"strings"
)

// Technique selects how shadows are produced and sampled.
type Technique uint32

const (
	TechniqueNone Technique = iota
	TechniqueHard
	TechniqueVariance
)

// Sampling is the axis orthogonal to Technique: whether the target is sampled as
// a depth-comparable texture or as a float color texture.
type Sampling uint32

const (
	SampleColor Sampling = iota
	SampleDepth
)

// Keywords advertised to the consuming shader stage.
const (
	KeywordHard            = "HARD_SHADOWS"
	KeywordVariance        = "VARIANCE_SHADOWS"
	KeywordDrawTransparent = "DRAW_TRANSPARENT_SHADOWS"
)

// TechniqueKeywords lists every technique keyword, in technique order.
var TechniqueKeywords = []string{KeywordHard, KeywordVariance}

func (t Technique) String() string {
	switch t {
	case TechniqueNone:
		return "none"
	case TechniqueHard:
		return "hard"
	case TechniqueVariance:
		return "variance"
	}
	return fmt.Sprintf("technique(%d)", uint32(t))
}

// Keyword returns the feature flag for t, or "" for NONE.
func (t Technique) Keyword() string {
	switch t {
	case TechniqueHard:
		return KeywordHard
	case TechniqueVariance:
		return KeywordVariance
	}
	return ""
}

// NeedsBlur reports whether the technique runs the ping-pong blur.
func (t Technique) NeedsBlur() bool {
	return t == TechniqueVariance
}

// RendersDepth reports whether the technique produces a shadow target at all.
func (t Technique) RendersDepth() bool {
	return t == TechniqueHard || t == TechniqueVariance
}

func (s Sampling) String() string {
	if s == SampleDepth {
		return "depth"
	}
	return "color"
}

// ParseTechnique accepts none, hard, variance and the aliases pcf (hard sampled as
// depth) and mv (variance with four moments).
func ParseTechnique(name string) (Technique, Sampling, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "off":
		return TechniqueNone, SampleColor, nil
	case "hard":
		return TechniqueHard, SampleColor, nil
	case "pcf":
		return TechniqueHard, SampleDepth, nil
	case "variance", "vsm":
		return TechniqueVariance, SampleColor, nil
	case "mv", "moments":
		return TechniqueVariance, SampleDepth, nil
	}
	return TechniqueNone, SampleColor, fmt.Errorf("unknown shadow technique %q", name)
}

// TargetFormatFor derives the target pixel format from the technique and sampling axis.
func TargetFormatFor(t Technique, s Sampling) TargetFormat {
	switch {
	case t == TechniqueHard && s == SampleDepth:
		return FormatDepth32Float
	case t == TechniqueVariance && s == SampleDepth:
		return FormatRGBA32Float
	}
	return FormatRG32Float
}
