package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// scalarKind describes how one WGSL scalar maps onto vertex formats and texture sample types.
type scalarKind struct {
	// formats holds the vertex format for widths 1 to 4.
	formats [4]wgpu.VertexFormat
	sample  wgpu.TextureSampleType
}

var scalarKinds = map[string]scalarKind{
	"f32": {
		formats: [4]wgpu.VertexFormat{wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
		sample:  wgpu.TextureSampleTypeFloat,
	},
	"i32": {
		formats: [4]wgpu.VertexFormat{wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
		sample:  wgpu.TextureSampleTypeSint,
	},
	"u32": {
		formats: [4]wgpu.VertexFormat{wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
		sample:  wgpu.TextureSampleTypeUint,
	},
}

// vectorShorthand maps the suffix of vec2f, vec3i and friends to the scalar type.
var vectorShorthand = map[string]string{"f": "f32", "i": "i32", "u": "u32"}

// textureDimensions maps sampled texture base names to their view dimension.
var textureDimensions = map[string]wgpu.TextureViewDimension{
	"texture_1d":              wgpu.TextureViewDimension1D,
	"texture_2d":              wgpu.TextureViewDimension2D,
	"texture_2d_array":        wgpu.TextureViewDimension2DArray,
	"texture_3d":              wgpu.TextureViewDimension3D,
	"texture_cube":            wgpu.TextureViewDimensionCube,
	"texture_multisampled_2d": wgpu.TextureViewDimension2D,
}

// typeLayout is the host-shareable size and alignment of a WGSL type.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type typeLayout struct {
	size  uint64
	align uint64
}

// stride is the distance between consecutive array elements of this type.
func (l typeLayout) stride() uint64 {
	return alignTo(l.align, l.size)
}

// alignTo rounds value up to a multiple of the power-of-two alignment.
func alignTo(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// vectorShape splits a scalar or vector type ("u32", "vec3f", "vec4<f32>") into its scalar
// and component count.
func vectorShape(typeName string) (scalar string, width int, ok bool) {
	if _, known := scalarKinds[typeName]; known {
		return typeName, 1, true
	}
	rest, isVec := strings.CutPrefix(typeName, "vec")
	if !isVec || len(rest) < 2 {
		return "", 0, false
	}
	width = int(rest[0] - '0')
	if width < 2 || width > 4 {
		return "", 0, false
	}
	if param, generic := strings.CutPrefix(rest[1:], "<"); generic {
		scalar = strings.TrimSpace(strings.TrimSuffix(param, ">"))
	} else {
		scalar = vectorShorthand[rest[1:]]
	}
	if _, known := scalarKinds[scalar]; !known {
		return "", 0, false
	}
	return scalar, width, true
}

// vectorLayout returns the layout of an N-component 32-bit vector. vec3 aligns like vec4.
func vectorLayout(width int) typeLayout {
	size := uint64(4 * width)
	if width == 3 {
		return typeLayout{size: size, align: 16}
	}
	return typeLayout{size: size, align: size}
}

// matrixLayout resolves matCxR<f32> as C columns of vecR<f32>.
func matrixLayout(typeName string) (typeLayout, bool) {
	rest, ok := strings.CutPrefix(typeName, "mat")
	if !ok || len(rest) < 3 || rest[1] != 'x' {
		return typeLayout{}, false
	}
	cols, rows := int(rest[0]-'0'), int(rest[2]-'0')
	if cols < 2 || cols > 4 || rows < 2 || rows > 4 {
		return typeLayout{}, false
	}
	if suffix := rest[3:]; suffix != "f" && suffix != "<f32>" {
		return typeLayout{}, false
	}
	column := vectorLayout(rows)
	return typeLayout{size: uint64(cols) * column.stride(), align: column.align}, true
}

// parsedField is one member of a WGSL struct.
type parsedField struct {
	name     string
	typeName string
	// location is the @location index, -1 when absent.
	location int
	builtin  bool
}

// parsedStruct is a WGSL struct declaration.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// isVertexInput reports whether every member is a @location input, which distinguishes
// vertex input structs from stage outputs carrying @builtin(position).
func (ps parsedStruct) isVertexInput() bool {
	for _, f := range ps.fields {
		if f.builtin || f.location < 0 {
			return false
		}
	}
	return len(ps.fields) > 0
}

// layoutResolver computes type layouts on demand, resolving struct members recursively.
type layoutResolver struct {
	structs  map[string]parsedStruct
	resolved map[string]typeLayout
	visiting map[string]bool
}

func newLayoutResolver(structs []parsedStruct) *layoutResolver {
	r := &layoutResolver{
		structs:  make(map[string]parsedStruct, len(structs)),
		resolved: make(map[string]typeLayout),
		visiting: make(map[string]bool),
	}
	for _, ps := range structs {
		r.structs[ps.name] = ps
	}
	return r
}

// resolve returns the layout of typeName. A runtime-sized array resolves to a single element,
// which is the smallest buffer that can be bound to it.
func (r *layoutResolver) resolve(typeName string) (typeLayout, bool) {
	typeName = strings.TrimSpace(typeName)
	if typeName == "bool" {
		return typeLayout{size: 4, align: 4}, true
	}
	if _, width, ok := vectorShape(typeName); ok {
		return vectorLayout(width), true
	}
	if l, ok := matrixLayout(typeName); ok {
		return l, true
	}
	if inner, ok := strings.CutPrefix(typeName, "array<"); ok {
		return r.resolveArray(strings.TrimSuffix(inner, ">"))
	}
	if inner, ok := strings.CutPrefix(typeName, "atomic<"); ok {
		return r.resolve(strings.TrimSuffix(inner, ">"))
	}
	return r.resolveStruct(typeName)
}

// runtimeArray reports whether typeName is an array without an element count.
func runtimeArray(typeName string) bool {
	inner, ok := strings.CutPrefix(strings.TrimSpace(typeName), "array<")
	if !ok {
		return false
	}
	_, _, sized := cutTopLevel(strings.TrimSuffix(inner, ">"))
	return !sized
}

func (r *layoutResolver) resolveArray(inner string) (typeLayout, bool) {
	elemType, countArg, sized := cutTopLevel(inner)
	elem, ok := r.resolve(elemType)
	if !ok {
		return typeLayout{}, false
	}
	count := uint64(1)
	if sized {
		n, err := strconv.ParseUint(strings.TrimSpace(countArg), 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		count = n
	}
	return typeLayout{size: count * elem.stride(), align: elem.align}, true
}

func (r *layoutResolver) resolveStruct(name string) (typeLayout, bool) {
	if l, ok := r.resolved[name]; ok {
		return l, true
	}
	ps, ok := r.structs[name]
	if !ok || r.visiting[name] {
		return typeLayout{}, false
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	var offset uint64
	align := uint64(1)
	for _, f := range ps.fields {
		if f.builtin {
			continue
		}
		fl, ok := r.resolve(f.typeName)
		if !ok {
			return typeLayout{}, false
		}
		offset = alignTo(fl.align, offset) + fl.size
		align = max(align, fl.align)
	}
	l := typeLayout{size: alignTo(align, offset), align: align}
	r.resolved[name] = l
	return l, true
}

// vertexBufferLayout packs the members of a vertex input struct tightly, in declaration order.
// It fails when a member has no vertex format.
func vertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{
		StepMode:   wgpu.VertexStepModeVertex,
		Attributes: make([]wgpu.VertexAttribute, 0, len(ps.fields)),
	}
	for _, f := range ps.fields {
		scalar, width, ok := vectorShape(f.typeName)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         scalarKinds[scalar].formats[width-1],
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		layout.ArrayStride += uint64(4 * width)
	}
	return layout, true
}

// bindingEntry classifies one resource declaration. Buffers are told apart by address space,
// handles (textures and samplers) by type.
func bindingEntry(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	space, access, _ := strings.Cut(addressSpace, ",")
	switch strings.TrimSpace(space) {
	case "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		return entry
	case "storage":
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.TrimSpace(access) == "read_write" {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
		return entry
	}

	switch {
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typeName, "texture_"):
		base, param, _ := strings.Cut(typeName, "<")
		if dim, ok := textureDimensions[base]; ok {
			entry.Texture.ViewDimension = dim
			entry.Texture.Multisampled = strings.Contains(base, "multisampled")
		}
		if kind, ok := scalarKinds[strings.TrimSpace(strings.TrimSuffix(param, ">"))]; ok {
			entry.Texture.SampleType = kind.sample
		}
	}
	return entry
}

// cutTopLevel splits s at its first comma outside angle brackets.
func cutTopLevel(s string) (before, after string, found bool) {
	parts := splitTopLevel(s, 2)
	if len(parts) < 2 {
		return strings.TrimSpace(s), "", false
	}
	return strings.TrimSpace(parts[0]), parts[1], true
}

// splitTopLevel splits s at commas outside angle brackets, so array<Panel, 5> stays whole.
// A limit above zero caps the number of parts.
func splitTopLevel(s string, limit int) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 && (limit <= 0 || len(parts) < limit-1) {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes line comments and nested block comments in one pass. Newlines are
// kept so line structure survives.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		switch {
		case strings.HasPrefix(source[i:], "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(source[i:], "*/"):
			depth--
			i++
		case depth > 0:
			if source[i] == '\n' {
				sb.WriteByte('\n')
			}
		case strings.HasPrefix(source[i:], "//"):
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
