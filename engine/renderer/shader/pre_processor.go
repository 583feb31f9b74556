// pre_processor.go implements the WGSL kernel pre-processor. It scans kernel source for
// @oxy: annotations, replaces them with generated WGSL declarations or injected struct
// source, and collects a declarations list that the resource binder uses to match the
// bytes it uploads against the bindings the kernel declares.
//
// The pre-processor maintains three registries:
//   - structRegistry: maps AnnotationArg keys to embedded WGSL struct sources and their
//     resolved type names.
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
//   - constants: maps count names used in array<type,count> arguments to element counts.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-trace/engine/entity"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
)

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the resolved WGSL type name used in generated @group/@binding declarations.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by @oxy:include.
	Source string

	// Type is the WGSL type name emitted in @oxy:group declarations (e.g. "Sphere").
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	constants            map[string]uint32

	// declarations is reset at the start of each Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL kernel source containing @oxy: annotations, replacing them
// with generated declarations or injected struct sources while collecting a declarations
// list for downstream resource binding.
type PreProcessor interface {
	// Process takes raw WGSL source and replaces @oxy: annotations with their WGSL output.
	// @oxy:include annotations are replaced with embedded struct source text. @oxy:group
	// annotations are replaced with generated @group/@binding declarations, resolving any
	// count constant into a fixed array length. @oxy:provider annotations produce no WGSL
	// output but are recorded in the declarations list.
	//
	// Parameters:
	//   - source: the raw WGSL source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unknown type or constant
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected during the most
	// recent call to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation

	// SetConstant sets the element count substituted for a count name.
	// Counts below one are raised to one, since WGSL arrays cannot be empty.
	//
	// Parameters:
	//   - name: the count name used inside array<type,name>
	//   - value: the element count
	SetConstant(name string, value uint32)

	// Constant returns the element count registered for a count name.
	//
	// Parameters:
	//   - name: the count name
	//
	// Returns:
	//   - uint32: the registered count
	//   - bool: true if the name is registered
	Constant(name string) (uint32, bool)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all registered struct types and address
// space mappings pre-populated, and no count constants.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgSphere: {Source: entity.GPUSphereSource, Type: "Sphere"},
			AnnotationArgPanel:  {Source: entity.GPUPanelSource, Type: "Panel"},
			AnnotationArgConfig: {Source: render_config.GPUConfigSource, Type: "Config"},
			AnnotationArgCell:   {Source: transfer.GPUCellSource, Type: "Cell"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
		constants: make(map[string]uint32),
	}
}

func (p *preProcessor) SetConstant(name string, value uint32) {
	p.constants[name] = max(value, 1)
}

func (p *preProcessor) Constant(name string) (uint32, bool) {
	v, ok := p.constants[name]
	return v, ok
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			wgslType, err := p.resolveType(string(a.Args[2]), i+1)
			if err != nil {
				return "", err
			}
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// resolveType maps an annotation type argument to its WGSL spelling.
func (p *preProcessor) resolveType(typeArg string, lineNum int) (string, error) {
	elem, countName, isArray := splitArrayType(typeArg)
	entry, ok := p.structRegistry[elem]
	if !ok {
		return "", fmt.Errorf("line %d: unknown struct type %q", lineNum, elem)
	}
	if !isArray {
		return entry.Type, nil
	}
	if countName == "" {
		return fmt.Sprintf("array<%s>", entry.Type), nil
	}
	count, ok := p.constants[countName]
	if !ok {
		return "", fmt.Errorf("line %d: %w: %q", lineNum, ErrUnsetConstant, countName)
	}
	return fmt.Sprintf("array<%s, %d>", entry.Type, count), nil
}
