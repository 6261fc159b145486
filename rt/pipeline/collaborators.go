package pipeline

import (
	"github.com/gekko3d/shadows/rt/core"
	"github.com/gekko3d/shadows/rt/target"
)

// Scene is queried once per tick for the light and the caster snapshot.
type Scene interface {
	FindLight() (core.Light, bool)
	FindRenderables() []core.Renderable
}

// DepthRenderer draws every caster from cam into dst with the depth-capture program.
type DepthRenderer interface {
	RenderDepth(cam *core.LightCamera, dst target.Target) error
}

// BlurKernel runs one blur pass reading read and writing write.
type BlurKernel interface {
	BlurDispatch(read, write target.Target, groupsX, groupsY uint32) error
}

// Publisher hands the frame's shadow state to the main renderer.
type Publisher interface {
	PublishUniforms(state core.ShadowState) error
}

// GPU is everything the pipeline needs from a graphics backend.
type GPU interface {
	target.Allocator
	DepthRenderer
	BlurKernel
	Publisher
}

// FeatureFlags is the global keyword selector the consuming shaders read.
type FeatureFlags interface {
	Set(name string)
	Clear(name string)
}

// owned is implemented by selectors that enforce a single writer.
type owned interface {
	Claim(owner string) error
	ReleaseOwner(owner string)
}

type Profiler interface {
	BeginScope(name string)
	EndScope(name string)
	SetCount(name string, count int)
}

type nopProfiler struct{}

func (nopProfiler) BeginScope(string)    {}
func (nopProfiler) EndScope(string)      {}
func (nopProfiler) SetCount(string, int) {}
