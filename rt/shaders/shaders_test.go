package shaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlurWGSL_SubstitutesFormat(t *testing.T) {
	for _, format := range []string{"rg32float", "rgba32float"} {
		src := BlurWGSL(format)
		assert.NotContains(t, src, "{{FORMAT}}")
		assert.Contains(t, src, "texture_storage_2d<"+format+", write>")
		assert.Contains(t, src, "@workgroup_size(8, 8, 1)")
	}
}

func TestEmbeddedSources(t *testing.T) {
	assert.Contains(t, DepthWGSL, "fn vs_main")
	assert.Contains(t, DepthWGSL, "fn fs_main")
	assert.Contains(t, PreviewWGSL, "texture_2d<f32>")
	assert.Contains(t, PreviewDepthWGSL, "texture_depth_2d")
}
