package shaders

import (
	_ "embed"
	"strings"
)

//go:embed depth.wgsl
var DepthWGSL string

//go:embed blur.wgsl
var blurTemplate string

//go:embed preview.wgsl
var PreviewWGSL string

//go:embed preview_depth.wgsl
var PreviewDepthWGSL string

// BlurWGSL returns the blur kernel writing the given storage texel format,
// e.g. "rg32float" or "rgba32float".
func BlurWGSL(storageFormat string) string {
	return strings.ReplaceAll(blurTemplate, "{{FORMAT}}", storageFormat)
}
