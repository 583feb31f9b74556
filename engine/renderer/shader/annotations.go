// annotations.go defines the annotation types, argument constants, and parser for the
// WGSL kernel pre-processor. Annotations are single-line WGSL comments prefixed with
// @oxy: that drive struct injection, bind group declaration, and resource provider
// registration. The parsed results are stored as Annotation values and consumed by the
// resource binder to check that every byte it uploads matches the layout the kernel expects.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// at the annotation site. It produces no declaration.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include sphere
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration and
	// records it in the declarations list. Array types may carry a constant name that is
	// resolved to a fixed element count when the kernel is processed.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Examples:
	//   //@oxy:group 1 3 storage_read config config
	//   //@oxy:group 1 0 storage_uniform spheres array<sphere,sphere_count>
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records a provider identity for a hand-written binding without
	// generating any WGSL output. Used for raw WGSL types such as textures, samplers and flat
	// arrays of primitives. The optional role names the purpose of the binding inside its group.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example: //@oxy:provider 0 1 io result
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed annotation from a WGSL source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "sphere")
	//   - group:    [0] = address space, [1] = var name, [2] = type (e.g. "array<panel,panel_count>")
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// Role returns the binding role of a provider annotation, or an empty argument if none was given.
func (a Annotation) Role() AnnotationArg {
	if a.Type != AnnotationTypeProvider || len(a.Args) < 2 {
		return ""
	}
	return a.Args[1]
}

// VarName returns the WGSL variable name of a group annotation, or an empty string otherwise.
func (a Annotation) VarName() string {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 2 {
		return ""
	}
	return string(a.Args[1])
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────

const (
	// AnnotationArgSphere identifies the Sphere struct.
	// Source: engine/entity/assets/sphere.wgsl
	AnnotationArgSphere AnnotationArg = "sphere"

	// AnnotationArgPanel identifies the Panel struct, used for both panels and lights.
	// Source: engine/entity/assets/panel.wgsl
	AnnotationArgPanel AnnotationArg = "panel"

	// AnnotationArgConfig identifies the Config struct.
	// Source: engine/render_config/assets/config.wgsl
	AnnotationArgConfig AnnotationArg = "config"

	// AnnotationArgCell identifies the Cell struct holding the clip-space pixel extent.
	// Source: engine/renderer/transfer/assets/cell.wgsl
	AnnotationArgCell AnnotationArg = "cell"
)

// ── Address space arguments ────────────────────────────────────────────────────

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────

const (
	// AnnotationArgIO identifies the compute I/O group (pixel table and result buffer).
	AnnotationArgIO AnnotationArg = "io"

	// AnnotationArgPresentation identifies the TextureBlit presentation group (frame texture and sampler).
	AnnotationArgPresentation AnnotationArg = "presentation"
)

// ── Binding role arguments ─────────────────────────────────────────────────────

const (
	// AnnotationArgPixels identifies the read-only pixel coordinate table.
	AnnotationArgPixels AnnotationArg = "pixels"

	// AnnotationArgResult identifies the read-write result buffer the kernel writes colors into.
	AnnotationArgResult AnnotationArg = "result"

	// AnnotationArgFrameTexture identifies the texture the result buffer is copied into.
	AnnotationArgFrameTexture AnnotationArg = "frame_texture"

	// AnnotationArgFrameSampler identifies the sampler paired with the frame texture.
	AnnotationArgFrameSampler AnnotationArg = "frame_sampler"
)

// validStructTypes lists the struct keys accepted by include and group annotations.
// Each entry must have a corresponding registryEntry in the pre-processor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgSphere,
	AnnotationArgPanel,
	AnnotationArgConfig,
	AnnotationArgCell,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgIO,
	AnnotationArgPresentation,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgPixels,
	AnnotationArgResult,
	AnnotationArgFrameTexture,
	AnnotationArgFrameSampler,
}

// splitArrayType splits an annotation type argument of the form array<elem> or
// array<elem,count_name> into its element key and optional count name.
//
// Parameters:
//   - typeArg: the raw type argument
//
// Returns:
//   - AnnotationArg: the element (or plain struct) key
//   - string: the count constant name, empty for runtime-sized arrays and plain structs
//   - bool: true if typeArg is an array type
func splitArrayType(typeArg string) (AnnotationArg, string, bool) {
	inner, ok := strings.CutPrefix(typeArg, "array<")
	if !ok {
		return AnnotationArg(typeArg), "", false
	}
	inner = strings.TrimSuffix(inner, ">")
	elem, count, _ := strings.Cut(inner, ",")
	return AnnotationArg(strings.TrimSpace(elem)), strings.TrimSpace(count), true
}

// parseAnnotation attempts to parse a single line of WGSL source as an annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires exactly five arguments (group, binding, address space, var name, type)", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		elem, count, isArray := splitArrayType(args[5])
		if !slices.Contains(validStructTypes, elem) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, elem)
		}
		if isArray && count == "" && args[3] == string(annotationArgStorageTypeUniform) {
			return nil, fmt.Errorf("line %d: uniform array %q needs a count constant", lineNum, args[4])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @oxy provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(group, binding string, lineNum int) (int, int, error) {
	groupInt, err := strconv.Atoi(group)
	if err != nil || groupInt < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q", lineNum, group)
	}
	bindingInt, err := strconv.Atoi(binding)
	if err != nil || bindingInt < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q", lineNum, binding)
	}
	return groupInt, bindingInt, nil
}
