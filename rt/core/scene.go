package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Light is the directional light the shadow is cast from.
type Light struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// LightFromDirection orients a light so its forward axis points along dir.
func LightFromDirection(position, dir mgl32.Vec3) Light {
	return Light{Position: position, Rotation: LookRotation(dir, AxisUp)}
}

func (l Light) Forward() mgl32.Vec3 {
	return l.Rotation.Rotate(AxisForward)
}

// Renderable is one shadow caster as seen by the pipeline.
type Renderable struct {
	Bounds Bounds
}

// Caster is a box-shaped object with a local bounding box under a transform.
type Caster struct {
	Transform   *Transform
	LocalBounds Bounds
	WorldBounds *Bounds
}

func NewCaster(local Bounds) *Caster {
	return &Caster{
		Transform:   NewTransform(),
		LocalBounds: local,
	}
}

// UpdateWorldBounds recomputes the world AABB when the transform changed.
func (c *Caster) UpdateWorldBounds() bool {
	if !c.Transform.Dirty && c.WorldBounds != nil {
		return false
	}

	if !c.LocalBounds.Valid() {
		c.WorldBounds = nil
	} else {
		wb := c.LocalBounds.Transform(c.Transform.ObjectToWorld())
		c.WorldBounds = &wb
	}

	c.Transform.Dirty = false
	return true
}

// Scene is a snapshot of one light and the casters around it.
type Scene struct {
	Lights  []Light
	Casters []*Caster
}

func NewScene() *Scene {
	return &Scene{
		Casters: []*Caster{},
	}
}

func (s *Scene) AddCaster(c *Caster) {
	s.Casters = append(s.Casters, c)
}

func (s *Scene) RemoveCaster(c *Caster) {
	for i, o := range s.Casters {
		if o == c {
			s.Casters = append(s.Casters[:i], s.Casters[i+1:]...)
			return
		}
	}
}

// SetLight replaces the scene light. A nil light removes it.
func (s *Scene) SetLight(l *Light) {
	s.Lights = s.Lights[:0]
	if l != nil {
		s.Lights = append(s.Lights, *l)
	}
}

// Commit refreshes world bounds; returns true when any caster moved.
func (s *Scene) Commit() bool {
	anyChanged := false
	for _, c := range s.Casters {
		if c.UpdateWorldBounds() {
			anyChanged = true
		}
	}
	return anyChanged
}

// FindLight returns the first light, if any.
func (s *Scene) FindLight() (Light, bool) {
	if len(s.Lights) == 0 {
		return Light{}, false
	}
	return s.Lights[0], true
}

// FindRenderables returns the world bounds of every caster with valid bounds.
func (s *Scene) FindRenderables() []Renderable {
	s.Commit()
	out := make([]Renderable, 0, len(s.Casters))
	for _, c := range s.Casters {
		if c.WorldBounds != nil {
			out = append(out, Renderable{Bounds: *c.WorldBounds})
		}
	}
	return out
}
