package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// instanceStructSuffix marks vertex input structs that step once per instance.
const instanceStructSuffix = "Instance"

var (
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// attributeRegex matches one attribute such as @location(2), @builtin(position) or @align(16).
	attributeRegex = regexp.MustCompile(`@(\w+)(?:\(\s*([^)]*?)\s*\))?`)

	entryRegexes = map[ShaderType]*regexp.Regexp{
		ShaderTypeVertex:   regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`),
		ShaderTypeFragment: regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`),
		ShaderTypeCompute:  regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`),
	}

	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)

	// bindingDeclRegex captures group, binding, optional address space, name and type of
	// declarations like `@group(1) @binding(0) var<uniform> spheres: array<Sphere, 1>;`.
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// stageVisibility maps a shader type to the stage flag its bindings are visible to.
var stageVisibility = map[ShaderType]wgpu.ShaderStage{
	ShaderTypeVertex:   wgpu.ShaderStageVertex,
	ShaderTypeFragment: wgpu.ShaderStageFragment,
	ShaderTypeCompute:  wgpu.ShaderStageCompute,
}

// reflection is everything the pipeline and binder need to know about one shader stage.
type reflection struct {
	entryPoint    string
	workgroupSize [3]uint32
	vertexLayouts []wgpu.VertexBufferLayout
	groups        map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
	strides       map[int]map[int]uint64
}

// reflectSource inspects processed WGSL for one stage. Comments are stripped and structs parsed
// once; vertex layouts are only collected for vertex stages and the workgroup size only for
// compute stages (it stays [1 1 1] otherwise).
//
// Parameters:
//   - source: processed WGSL with no remaining annotations
//   - shaderType: the stage to reflect
//
// Returns:
//   - reflection: the stage metadata; entryPoint is empty when the stage has no entry point
func reflectSource(source string, shaderType ShaderType) reflection {
	cleaned := stripComments(source)
	structs := parseStructs(cleaned)

	r := reflection{
		workgroupSize: [3]uint32{1, 1, 1},
		groups:        make(map[int]wgpu.BindGroupLayoutDescriptor),
		varNames:      make(map[int]map[int]string),
		strides:       make(map[int]map[int]uint64),
	}
	if re, ok := entryRegexes[shaderType]; ok {
		if m := re.FindStringSubmatch(cleaned); m != nil {
			r.entryPoint = m[1]
		}
	}

	switch shaderType {
	case ShaderTypeVertex:
		r.vertexLayouts = vertexLayouts(structs)
	case ShaderTypeCompute:
		r.workgroupSize = workgroupSize(cleaned)
	}

	r.collectBindings(cleaned, stageVisibility[shaderType], newLayoutResolver(structs))
	return r
}

// collectBindings turns every @group/@binding declaration into a layout entry. Buffer entries
// carry the resolved size of their type as MinBindingSize; runtime-sized arrays also record
// that size as their element stride.
func (r *reflection) collectBindings(cleaned string, visibility wgpu.ShaderStage, layouts *layoutResolver) {
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, m := range bindingDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		typeName := strings.TrimSpace(m[5])

		entry := bindingEntry(uint32(binding), visibility, strings.TrimSpace(m[3]), typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := layouts.resolve(typeName); ok {
				entry.Buffer.MinBindingSize = l.size
				if runtimeArray(typeName) {
					if r.strides[group] == nil {
						r.strides[group] = make(map[int]uint64)
					}
					r.strides[group][binding] = l.size
				}
			}
		}
		entries[group] = append(entries[group], entry)

		if r.varNames[group] == nil {
			r.varNames[group] = make(map[int]string)
		}
		r.varNames[group][binding] = m[4]
	}

	for group, es := range entries {
		slices.SortFunc(es, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		r.groups[group] = wgpu.BindGroupLayoutDescriptor{Entries: es}
	}
}

// vertexLayouts returns one layout per vertex input struct, in source order, so the slice
// index is the vertex buffer slot. Structs named *Instance step per instance. Structs with a
// member that has no vertex format are skipped.
func vertexLayouts(structs []parsedStruct) []wgpu.VertexBufferLayout {
	var layouts []wgpu.VertexBufferLayout
	for _, ps := range structs {
		if !ps.isVertexInput() {
			continue
		}
		layout, ok := vertexBufferLayout(ps)
		if !ok {
			continue
		}
		if strings.HasSuffix(ps.name, instanceStructSuffix) {
			layout.StepMode = wgpu.VertexStepModeInstance
		}
		layouts = append(layouts, layout)
	}
	return layouts
}

// workgroupSize reads @workgroup_size; omitted dimensions are 1.
func workgroupSize(cleaned string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupSizeRegex.FindStringSubmatch(cleaned)
	if m == nil {
		return size
	}
	for i, dim := range m[1:] {
		if v, err := strconv.ParseUint(dim, 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

// parseStructs finds every struct declaration in comment-free WGSL.
func parseStructs(cleaned string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(cleaned, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		ps := parsedStruct{name: m[1]}
		for _, member := range splitTopLevel(m[2], 0) {
			if f, ok := parseField(member); ok {
				ps.fields = append(ps.fields, f)
			}
		}
		structs = append(structs, ps)
	}
	return structs
}

// parseField parses `@location(0) corner: vec2<f32>` style members.
func parseField(member string) (parsedField, bool) {
	f := parsedField{location: -1}
	for _, attr := range attributeRegex.FindAllStringSubmatch(member, -1) {
		switch attr[1] {
		case "builtin":
			f.builtin = true
		case "location":
			if loc, err := strconv.Atoi(attr[2]); err == nil {
				f.location = loc
			}
		}
	}

	decl := strings.TrimSpace(attributeRegex.ReplaceAllString(member, ""))
	name, typeName, ok := strings.Cut(decl, ":")
	if !ok {
		return parsedField{}, false
	}
	f.name = strings.TrimSpace(name)
	f.typeName = strings.TrimSpace(typeName)
	return f, f.name != "" && f.typeName != ""
}
