package shader

import (
	"fmt"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies whether a shader is a render shader or a compute shader.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	rawSource                  string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	strides                    map[int]map[int]uint64
	specialized                map[[2]int]bool
	vertexLayouts              []wgpu.VertexBufferLayout
	workGroupSize              [3]uint32
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor
	err                        error

	pp PreProcessor
}

// BindingSize is the declared size of a buffer binding.
type BindingSize struct {
	// Min is the layout entry's MinBindingSize.
	Min uint64

	// Stride is the element stride of a runtime-sized array, 0 for fixed-size types.
	Stride uint64

	// Exact is set when Min is the only valid buffer size: the type is fixed-size or the
	// binding was specialized.
	Exact bool
}

// Shader defines the interface for a loaded and parsed WGSL kernel. It exposes the kernel's
// unique key, processed source, entry point, bind group layout descriptors, vertex buffer
// layouts, workgroup size, and pre-processor declarations needed for pipeline creation
// and resource binding.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source with all annotations expanded
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindingSize describes the size a kernel declares for a buffer binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - BindingSize: the layout's MinBindingSize, the element stride and whether the size is exact
	//   - bool: false if the binding is not a declared buffer
	BindingSize(group, binding int) (BindingSize, bool)

	// SpecializeBindingSizes fixes the MinBindingSize of runtime-sized buffer bindings to the
	// exact sizes the host allocates. The layout returned by BindGroupLayoutDescriptor(s) changes
	// accordingly, so it must be called before any pipeline or bind group is created from it.
	// Fixed-size bindings only accept their declared size.
	//
	// Parameters:
	//   - group: the bind group index
	//   - sizes: the exact buffer size per binding index
	//
	// Returns:
	//   - error: ErrBindingSize when a binding is missing or a size is not a whole number of elements
	SpecializeBindingSizes(group int, sizes map[int]uint64) error

	// VertexLayouts retrieves the vertex buffer layouts in source order. The index of a
	// layout is the vertex buffer slot it is bound to.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts, empty for non-vertex shaders
	VertexLayouts() []wgpu.VertexBufferLayout

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// WorkgroupSize returns the workgroup size dimensions for compute shaders.
	// Returns [0, 0, 0] for non-compute shaders and [1, 1, 1] when @workgroup_size is absent.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Module returns the wgpu.ShaderModuleDescriptor built from the processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the type of the shader (vertex, fragment, or compute).
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex, ShaderTypeFragment, or ShaderTypeCompute
	ShaderType() ShaderType

	// Declarations returns the group and provider annotations parsed from the kernel source.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation

	// Validate compiles the processed source to SPIR-V on the CPU, without a GPU device.
	//
	// Returns:
	//   - error: the compiler error, if any
	Validate() error
}

var _ Shader = &shader{}

// NewShader creates a new Shader from the provided options. A source must be given via
// WithSource or WithSourceFromPath; count constants given via WithConstant are resolved
// before the source is parsed.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - shaderType: the type of shader (vertex, fragment or compute)
//   - options: functional options configuring the shader source and constants
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the source is missing, unreadable, or fails pre-processing
func NewShader(key string, shaderType ShaderType, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
		strides:                    make(map[int]map[int]uint64),
		specialized:                make(map[[2]int]bool),
		pp:                         NewPreProcessor(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, s.err)
	}
	if s.rawSource == "" {
		return nil, fmt.Errorf("shader %s: %w", key, ErrNoSource)
	}
	if err := s.parseSource(); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindingSize(group, binding int) (BindingSize, bool) {
	desc, ok := s.bindGroupLayoutDescriptors[group]
	if !ok {
		return BindingSize{}, false
	}
	for _, entry := range desc.Entries {
		if int(entry.Binding) == binding && entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			stride := s.strides[group][binding]
			return BindingSize{
				Min:    entry.Buffer.MinBindingSize,
				Stride: stride,
				Exact:  stride == 0 || s.specialized[[2]int{group, binding}],
			}, true
		}
	}
	return BindingSize{}, false
}

func (s *shader) SpecializeBindingSizes(group int, sizes map[int]uint64) error {
	desc, ok := s.bindGroupLayoutDescriptors[group]
	if !ok {
		return fmt.Errorf("%w: %s declares no group %d", ErrBindingSize, s.key, group)
	}
	entries := slices.Clone(desc.Entries)
	for binding, size := range sizes {
		i := slices.IndexFunc(entries, func(e wgpu.BindGroupLayoutEntry) bool {
			return int(e.Binding) == binding && e.Buffer.Type != wgpu.BufferBindingTypeUndefined
		})
		if i < 0 {
			return fmt.Errorf("%w: %s has no buffer at @group(%d) @binding(%d)", ErrBindingSize, s.key, group, binding)
		}
		stride := s.strides[group][binding]
		switch {
		case stride == 0 && size != entries[i].Buffer.MinBindingSize:
			return fmt.Errorf("%w: %s @group(%d) @binding(%d) is fixed at %d bytes, got %d",
				ErrBindingSize, s.key, group, binding, entries[i].Buffer.MinBindingSize, size)
		case stride != 0 && (size == 0 || size%stride != 0):
			return fmt.Errorf("%w: %s @group(%d) @binding(%d) needs a multiple of %d bytes, got %d",
				ErrBindingSize, s.key, group, binding, stride, size)
		}
		entries[i].Buffer.MinBindingSize = size
	}

	desc.Entries = entries
	s.bindGroupLayoutDescriptors[group] = desc
	for binding := range sizes {
		s.specialized[[2]int{group, binding}] = true
	}
	return nil
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) Validate() error {
	if _, err := CompileSPIRV(s.source); err != nil {
		return fmt.Errorf("shader %s: %w", s.key, err)
	}
	return nil
}

// parseSource pre-processes the raw source, builds the shader module descriptor and
// reflects the stage metadata.
func (s *shader) parseSource() error {
	var err error
	s.source, err = s.pp.Process(s.rawSource)
	if err != nil {
		return fmt.Errorf("pre-process: %w", err)
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	r := reflectSource(s.source, s.shaderType)
	if r.entryPoint == "" {
		return fmt.Errorf("%w for %s stage", ErrNoEntryPoint, s.shaderType)
	}
	s.entryPoint = r.entryPoint
	s.workGroupSize = r.workgroupSize
	s.vertexLayouts = r.vertexLayouts
	s.bindGroupLayoutDescriptors, s.bindingVarNames, s.strides = r.groups, r.varNames, r.strides
	return nil
}
