package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type TargetFormat uint32

const (
	FormatRG32Float TargetFormat = iota
	FormatRGBA32Float
	FormatDepth32Float
)

func (f TargetFormat) String() string {
	switch f {
	case FormatRG32Float:
		return "rg32float"
	case FormatRGBA32Float:
		return "rgba32float"
	case FormatDepth32Float:
		return "depth32float"
	}
	return fmt.Sprintf("format(%d)", uint32(f))
}

// IsDepth reports whether the format is depth-comparable.
func (f TargetFormat) IsDepth() bool {
	return f == FormatDepth32Float
}

// Channels is the number of float channels per texel.
func (f TargetFormat) Channels() int {
	switch f {
	case FormatRGBA32Float:
		return 4
	case FormatRG32Float:
		return 2
	}
	return 1
}

// SupportsRandomWrite reports whether the format can be bound as a storage texture.
func (f TargetFormat) SupportsRandomWrite() bool {
	return !f.IsDepth()
}

type FilterMode uint32

const (
	FilterPoint FilterMode = iota
	FilterBilinear
	FilterTrilinear
)

func (m FilterMode) String() string {
	switch m {
	case FilterPoint:
		return "point"
	case FilterBilinear:
		return "bilinear"
	case FilterTrilinear:
		return "trilinear"
	}
	return fmt.Sprintf("filter(%d)", uint32(m))
}

func ParseFilter(name string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "point", "nearest":
		return FilterPoint, nil
	case "bilinear", "linear":
		return FilterBilinear, nil
	case "trilinear":
		return FilterTrilinear, nil
	}
	return FilterBilinear, fmt.Errorf("unknown filter mode %q", name)
}

// TargetDesc describes one square shadow render target.
type TargetDesc struct {
	Resolution  uint32
	Format      TargetFormat
	Filter      FilterMode
	RandomWrite bool
}

// Matches reports whether two descs describe interchangeable targets.
func (d TargetDesc) Matches(o TargetDesc) bool {
	return d.Resolution == o.Resolution && d.Format == o.Format && d.Filter == o.Filter && d.RandomWrite == o.RandomWrite
}

func (d TargetDesc) String() string {
	return fmt.Sprintf("%dx%d %s %s", d.Resolution, d.Resolution, d.Format, d.Filter)
}

// TextureHandle identifies a target owned by a GPU backend. The zero value is "no texture".
type TextureHandle uuid.UUID

func NewTextureHandle() TextureHandle {
	return TextureHandle(uuid.New())
}

func (h TextureHandle) IsZero() bool {
	return uuid.UUID(h) == uuid.Nil
}

func (h TextureHandle) String() string {
	if h.IsZero() {
		return "none"
	}
	return uuid.UUID(h).String()[:8]
}
