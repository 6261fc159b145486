// Package pipeline drives one directional shadow map per frame: fit the light
// frustum, refresh targets, render depth, blur for variance shadows, then publish.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/gekko3d/shadows"
	"github.com/gekko3d/shadows/rt/core"
	"github.com/gekko3d/shadows/rt/target"
)

// ErrClosed is returned by Tick after Shutdown.
var ErrClosed = errors.New("shadow pipeline is shut down")

// OwnerName is the name the pipeline claims the keyword selector under.
const OwnerName = "shadow-pipeline"

// Profiler scope and counter names.
const (
	ScopeFit     = "Shadow Fit"
	ScopeRender  = "Shadow Render"
	ScopeBlur    = "Shadow Blur"
	CountCasters = "Shadow Casters"
)

// BlurGroupSize is the compute workgroup edge of the blur kernel.
const BlurGroupSize = 8

type Option func(*Pipeline)

func WithLogger(l shadows.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithProfiler(prof Profiler) Option {
	return func(p *Pipeline) {
		if prof != nil {
			p.profiler = prof
		}
	}
}

type Pipeline struct {
	cfg      shadows.Config
	scene    Scene
	gpu      GPU
	flags    FeatureFlags
	targets  *target.Manager
	camera   *core.LightCamera
	logger   shadows.Logger
	profiler Profiler

	// flags this pipeline has set at least once
	touched map[string]bool

	published    core.ShadowState
	hasPublished bool
	validFrustum bool
	frame        uint64
	closed       bool
}

// New builds a pipeline and its light camera. When flags enforces a single writer
// the pipeline claims it and fails if another owner holds it.
func New(cfg shadows.Config, scene Scene, gpu GPU, flags FeatureFlags, opts ...Option) (*Pipeline, error) {
	if scene == nil || gpu == nil || flags == nil {
		return nil, errors.New("shadow pipeline needs a scene, a gpu backend and a keyword selector")
	}
	p := &Pipeline{
		cfg:      cfg.Normalize(),
		scene:    scene,
		gpu:      gpu,
		flags:    flags,
		camera:   core.NewLightCamera(),
		logger:   shadows.NewNopLogger(),
		profiler: nopProfiler{},
		touched:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	if o, ok := flags.(owned); ok {
		if err := o.Claim(OwnerName); err != nil {
			return nil, err
		}
	}
	p.targets = target.NewManager(gpu, p.logger)
	return p, nil
}

func (p *Pipeline) Config() shadows.Config {
	return p.cfg
}

// SetConfig takes effect on the next Tick.
func (p *Pipeline) SetConfig(cfg shadows.Config) {
	p.cfg = cfg.Normalize()
}

// Published returns the last published state; ok is false before the first publish.
func (p *Pipeline) Published() (core.ShadowState, bool) {
	return p.published, p.hasPublished
}

// Camera is nil after Shutdown.
func (p *Pipeline) Camera() *core.LightCamera {
	return p.camera
}

func (p *Pipeline) Targets() *target.Manager {
	return p.targets
}

// HasValidFrustum reports whether the last tick fitted a frustum.
func (p *Pipeline) HasValidFrustum() bool {
	return p.validFrustum
}

func (p *Pipeline) Frame() uint64 {
	return p.frame
}

// Tick runs one frame. A missing light, no casters or casters too large for a
// finite frustum skip the frame and keep the last published state. Any GPU failure aborts the frame and is returned.
func (p *Pipeline) Tick() error {
	if p.closed {
		return ErrClosed
	}
	p.frame++
	cfg := p.cfg

	light, ok := p.scene.FindLight()
	if !ok {
		p.validFrustum = false
		p.logger.Debugf("frame %d: no directional light, keeping last shadow state", p.frame)
		return nil
	}

	p.profiler.BeginScope(ScopeFit)
	renderables := p.scene.FindRenderables()
	boxes := make([]core.Bounds, len(renderables))
	for i, r := range renderables {
		boxes[i] = r.Bounds
	}
	frustum, err := core.FitLightFrustum(boxes, light.Rotation)
	p.profiler.EndScope(ScopeFit)
	p.profiler.SetCount(CountCasters, len(renderables))
	if err != nil {
		p.validFrustum = false
		p.clearTechniqueFlags()
		p.logger.Debugf("frame %d: %v, skipping shadow render", p.frame, err)
		return nil
	}
	p.validFrustum = true
	p.camera.Fit(frustum)

	if !cfg.Technique.RendersDepth() {
		p.applyFlags(cfg)
		return p.publish(cfg, core.TextureHandle{})
	}

	passes := cfg.BlurPasses()
	set, err := p.targets.Ensure(cfg.TargetDesc(), passes > 0)
	if err != nil {
		return fmt.Errorf("shadow targets: %w", err)
	}

	p.profiler.BeginScope(ScopeRender)
	err = p.gpu.RenderDepth(p.camera, *set.Primary)
	p.profiler.EndScope(ScopeRender)
	if err != nil {
		return fmt.Errorf("shadow depth render: %w", err)
	}

	if passes > 0 {
		p.profiler.BeginScope(ScopeBlur)
		err = p.blur(set, passes)
		p.profiler.EndScope(ScopeBlur)
		if err != nil {
			return err
		}
	}

	p.applyFlags(cfg)
	return p.publish(cfg, set.Primary.Handle)
}

// blur ping-pongs between the two targets; after it returns set.Primary holds the result.
func (p *Pipeline) blur(set *target.Set, passes int) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("shadow blur: %w", err)
	}
	res := set.Primary.Desc.Resolution
	groups := (res + BlurGroupSize - 1) / BlurGroupSize
	for i := 0; i < passes; i++ {
		if err := p.gpu.BlurDispatch(*set.Primary, *set.Secondary, groups, groups); err != nil {
			return fmt.Errorf("shadow blur pass %d/%d: %w", i+1, passes, err)
		}
		set.Swap()
	}
	return nil
}

func (p *Pipeline) publish(cfg shadows.Config, tex core.TextureHandle) error {
	state := core.ShadowState{
		Texture:           tex,
		LightMatrix:       p.camera.WorldToLocal(),
		Scale:             core.NewShadowScale(p.camera, uint32(cfg.Resolution)),
		MaxIntensity:      cfg.MaxShadowIntensity,
		VarianceExpansion: cfg.VarianceExpansion,
		DrawTransparent:   cfg.DrawTransparent,
		Technique:         cfg.Technique,
		Frame:             p.frame,
	}
	if err := p.gpu.PublishUniforms(state); err != nil {
		return fmt.Errorf("shadow publish: %w", err)
	}
	p.published = state
	p.hasPublished = true
	return nil
}

// Shutdown releases the camera and targets and clears every keyword the pipeline
// could have set. Calling it again is a no-op.
func (p *Pipeline) Shutdown() {
	if p.closed {
		return
	}
	p.closed = true
	p.validFrustum = false
	p.camera = nil
	p.targets.Release()

	for _, k := range core.TechniqueKeywords {
		p.flags.Clear(k)
	}
	p.flags.Clear(core.KeywordDrawTransparent)
	for k := range p.touched {
		p.flags.Clear(k)
	}
	p.touched = make(map[string]bool)

	if o, ok := p.flags.(owned); ok {
		o.ReleaseOwner(OwnerName)
	}
	p.logger.Debugf("shadow pipeline shut down after %d frames", p.frame)
}
