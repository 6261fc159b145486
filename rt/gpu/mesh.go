package gpu

import (
	"github.com/gekko3d/shadows/rt/core"
)

// CasterVertex is one world-space position of the depth pass.
type CasterVertex struct {
	Pos [3]float32 `shadow:"layout" format:"float3" location:"0"`
}

// boxTriangles indexes Bounds.Corners (bit 0 = x, bit 1 = y, bit 2 = z).
var boxTriangles = [36]int{
	0, 2, 1, 1, 2, 3, // -z
	4, 5, 6, 5, 7, 6, // +z
	0, 4, 2, 2, 4, 6, // -x
	1, 3, 5, 3, 7, 5, // +x
	0, 1, 4, 1, 5, 4, // -y
	2, 6, 3, 3, 6, 7, // +y
}

// VerticesPerCaster is the triangle-list vertex count of one box.
const VerticesPerCaster = len(boxTriangles)

// BuildCasterMesh expands every caster's local box through its transform into
// a world-space triangle list. Casters with invalid local bounds are skipped.
func BuildCasterMesh(casters []*core.Caster) []CasterVertex {
	out := make([]CasterVertex, 0, len(casters)*VerticesPerCaster)
	for _, c := range casters {
		if c == nil || c.Transform == nil || !c.LocalBounds.Valid() {
			continue
		}
		m := c.Transform.ObjectToWorld()
		local := c.LocalBounds.Corners()
		var world [8][3]float32
		for i, p := range local {
			world[i] = m.Mul4x1(p.Vec4(1.0)).Vec3()
		}
		for _, idx := range boxTriangles {
			out = append(out, CasterVertex{Pos: world[idx]})
		}
	}
	return out
}
