package gpu

import (
	"github.com/gekko3d/shadows/rt/core"
)

// Uniform buffers are allocated at this size, as the main renderer does for CameraData.
const UniformBufferSize = 256

// cameraUniforms matches ShadowCamera in depth.wgsl.
type cameraUniforms struct {
	ViewProj [16]float32
	Params   [4]float32 // far, near, texel, 0
}

// shadowUniforms is the block consumers bind to sample the shadow map:
//
//	struct ShadowData {
//	    light_matrix: mat4x4<f32>, // 0
//	    tex_scale: vec4<f32>,      // 64: height, width, far, texel
//	    params: vec4<f32>,         // 80: max_intensity, variance_expansion
//	    keywords: u32,             // 96: HARD=1 VARIANCE=2 DRAW_TRANSPARENT=4
//	    technique: u32,            // 100
//	    frame: u32,                // 104
//	}
type shadowUniforms struct {
	LightMatrix [16]float32
	TexScale    [4]float32
	Params      [4]float32
	Keywords    uint32
	Technique   uint32
	Frame       uint32
	Pad         uint32
}

func packCameraUniforms(cam *core.LightCamera, resolution uint32) ([]byte, error) {
	texel := float32(0)
	if resolution > 0 {
		texel = 1 / float32(resolution)
	}
	return uniformBytes(cameraUniforms{
		ViewProj: cam.ViewProjection(),
		Params:   [4]float32{cam.Far, cam.Near, texel, 0},
	}, UniformBufferSize)
}

func packShadowUniforms(state core.ShadowState, keywordBits uint32) ([]byte, error) {
	return uniformBytes(shadowUniforms{
		LightMatrix: state.LightMatrix,
		TexScale:    state.Scale.Vec4(),
		Params:      [4]float32{state.MaxIntensity, state.VarianceExpansion, 0, 0},
		Keywords:    keywordBits,
		Technique:   uint32(state.Technique),
		Frame:       uint32(state.Frame),
	}, UniformBufferSize)
}
