package app

import (
	"github.com/gekko3d/shadows"
	"github.com/gekko3d/shadows/rt/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type KeyCommand int

const (
	CommandNone KeyCommand = iota
	CommandQuit
	CommandPause
	CommandSnapshot
	CommandDebug
)

// Command maps keys that act on the app rather than the shadow config.
func Command(key glfw.Key) KeyCommand {
	switch key {
	case glfw.KeyEscape:
		return CommandQuit
	case glfw.KeySpace:
		return CommandPause
	case glfw.KeyP:
		return CommandSnapshot
	case glfw.KeyF1:
		return CommandDebug
	}
	return CommandNone
}

// ApplyKey returns cfg with one key binding applied:
//
//	1..5  none, hard, pcf, variance, mv
//	[ ]   blur iterations -/+
//	- =   resolution halve/double
//	T     transparent casters
//	F     cycle filter mode
//	I     cycle max intensity 1, 0.75, 0.5
func ApplyKey(cfg shadows.Config, key glfw.Key) (shadows.Config, bool) {
	out := cfg
	switch key {
	case glfw.Key1:
		out.Technique, out.Sampling = core.TechniqueNone, core.SampleColor
	case glfw.Key2:
		out.Technique, out.Sampling = core.TechniqueHard, core.SampleColor
	case glfw.Key3:
		out.Technique, out.Sampling = core.TechniqueHard, core.SampleDepth
	case glfw.Key4:
		out.Technique, out.Sampling = core.TechniqueVariance, core.SampleColor
	case glfw.Key5:
		out.Technique, out.Sampling = core.TechniqueVariance, core.SampleDepth
	case glfw.KeyLeftBracket:
		out.BlurIterations--
	case glfw.KeyRightBracket:
		out.BlurIterations++
	case glfw.KeyMinus:
		out.Resolution /= 2
	case glfw.KeyEqual:
		out.Resolution *= 2
	case glfw.KeyT:
		out.DrawTransparent = !out.DrawTransparent
	case glfw.KeyF:
		out.Filter = (out.Filter + 1) % (core.FilterTrilinear + 1)
	case glfw.KeyI:
		switch {
		case out.MaxShadowIntensity > 0.75:
			out.MaxShadowIntensity = 0.75
		case out.MaxShadowIntensity > 0.5:
			out.MaxShadowIntensity = 0.5
		default:
			out.MaxShadowIntensity = 1
		}
	default:
		return cfg, false
	}
	out = out.Normalize()
	return out, out != cfg
}
