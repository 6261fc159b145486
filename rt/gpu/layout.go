package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexBufferLayout builds a layout from struct tags:
//
//	Pos [3]float32 `shadow:"layout" format:"float3" location:"0"`
//
// Untagged fields still advance the offset.
func vertexBufferLayout(vertexType any) (wgpu.VertexBufferLayout, error) {
	t := reflect.TypeOf(vertexType)
	if t.Kind() != reflect.Struct {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex type %s is not a struct", t)
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Tag.Get("shadow") == "layout" {
			format, err := parseVertexFormat(field.Tag.Get("format"))
			if err != nil {
				return wgpu.VertexBufferLayout{}, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
			}
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if err != nil {
				return wgpu.VertexBufferLayout{}, fmt.Errorf("%s.%s: bad location: %w", t.Name(), field.Name, err)
			}
			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         format,
			})
		}

		offset += uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}, nil
}

func parseVertexFormat(name string) (wgpu.VertexFormat, error) {
	switch name {
	case "float2":
		return wgpu.VertexFormatFloat32x2, nil
	case "float3":
		return wgpu.VertexFormatFloat32x3, nil
	case "float4":
		return wgpu.VertexFormatFloat32x4, nil
	}
	return wgpu.VertexFormatUndefined, fmt.Errorf("unsupported vertex layout format %q", name)
}

// uniformBytes flattens a struct of fixed-size scalars and arrays into
// little-endian bytes, padded with zeros to size.
func uniformBytes(data any, size int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeUniform(reflect.ValueOf(data), buf); err != nil {
		return nil, err
	}
	if buf.Len() > size {
		return nil, fmt.Errorf("uniform block is %d bytes, buffer holds %d", buf.Len(), size)
	}
	out := make([]byte, size)
	copy(out, buf.Bytes())
	return out, nil
}

func writeUniform(v reflect.Value, buf *bytes.Buffer) error {
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err := writeUniform(v.Index(i), buf); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := writeUniform(v.Field(i), buf); err != nil {
				return fmt.Errorf("%s: %w", v.Type().Field(i).Name, err)
			}
		}
	case reflect.Uint32, reflect.Int32, reflect.Float32:
		if err := binary.Write(buf, binary.LittleEndian, v.Interface()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported uniform type %s", v.Type())
	}
	return nil
}
