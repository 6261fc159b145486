package app

import (
	"math"

	"github.com/gekko3d/shadows/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	demoRingCount  = 6
	demoRingRadius = 8
	demoLightSpeed = 0.15 // radians per second around +Y
	demoSpinSpeed  = 0.6
)

var unitCube = core.BoundsFromCenter(mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5})

// DemoScene is a floor slab, a central pillar and a ring of cubes lit from above.
type DemoScene struct {
	*core.Scene
	Floor  *core.Caster
	Pillar *core.Caster
	Ring   []*core.Caster
}

func NewDemoScene() *DemoScene {
	d := &DemoScene{Scene: core.NewScene()}

	d.Floor = core.NewCaster(unitCube)
	d.Floor.Transform.Position = mgl32.Vec3{0, -0.5, 0}
	d.Floor.Transform.Scale = mgl32.Vec3{40, 1, 40}
	d.AddCaster(d.Floor)

	d.Pillar = core.NewCaster(unitCube)
	d.Pillar.Transform.Position = mgl32.Vec3{0, 4, 0}
	d.Pillar.Transform.Scale = mgl32.Vec3{1.5, 8, 1.5}
	d.AddCaster(d.Pillar)

	for i := 0; i < demoRingCount; i++ {
		angle := float64(i) * 2 * math.Pi / demoRingCount
		c := core.NewCaster(unitCube)
		c.Transform.Position = mgl32.Vec3{
			float32(math.Cos(angle)) * demoRingRadius,
			1,
			float32(math.Sin(angle)) * demoRingRadius,
		}
		c.Transform.Scale = mgl32.Vec3{2, 2, 2}
		d.Ring = append(d.Ring, c)
		d.AddCaster(c)
	}

	d.Animate(0)
	return d
}

// LightDirection is the light's forward axis at time t seconds: a fixed
// elevation orbiting around +Y.
func LightDirection(t float64) mgl32.Vec3 {
	yaw := t * demoLightSpeed
	dir := mgl32.Vec3{float32(math.Cos(yaw)) * 0.5, -1, float32(math.Sin(yaw)) * 0.5}
	return dir.Normalize()
}

// Animate moves the light and spins the ring cubes to time t.
func (d *DemoScene) Animate(t float64) {
	dir := LightDirection(t)
	light := core.LightFromDirection(dir.Mul(-30), dir)
	d.SetLight(&light)

	for i, c := range d.Ring {
		angle := float32(t*demoSpinSpeed) + float32(i)
		c.Transform.Rotation = mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0}).
			Mul(mgl32.QuatRotate(angle*0.5, mgl32.Vec3{1, 0, 0}))
		c.Transform.Dirty = true
	}
}
