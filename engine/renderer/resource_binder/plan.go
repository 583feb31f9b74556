package resource_binder

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/entity"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// Group indices of the trace kernel.
const (
	GroupIO    = 0
	GroupScene = 1
)

// BindingPlan is the host-side description of one buffer binding: its exact size, its usage
// and the bytes uploaded into it at build time.
type BindingPlan struct {
	Name    string
	Group   int
	Binding int
	Size    uint64
	Usage   wgpu.BufferUsage
	Data    []byte
}

// Plan is the set of buffer bindings of one bind group.
type Plan []BindingPlan

// Sizes returns the exact buffer size per binding index.
func (p Plan) Sizes() map[int]uint64 {
	out := make(map[int]uint64, len(p))
	for _, b := range p {
		out[b.Binding] = b.Size
	}
	return out
}

// Usages returns the buffer usage per binding index.
func (p Plan) Usages() map[int]wgpu.BufferUsage {
	out := make(map[int]wgpu.BufferUsage, len(p))
	for _, b := range p {
		out[b.Binding] = b.Usage
	}
	return out
}

// Binding returns the plan entry with the given name.
func (p Plan) Binding(name string) (BindingPlan, bool) {
	for _, b := range p {
		if b.Name == name {
			return b, true
		}
	}
	return BindingPlan{}, false
}

// ioBindings maps trace kernel roles to group 0 binding indices.
type ioBindings struct {
	pixels, result int
}

// planIO plans group 0: the pixel table and the result buffer. Both are read by the DirectPull
// vertex stage, so they gain Vertex usage there; TextureBlit copies the result out, so it gains
// CopySrc instead.
func planIO(settings render_config.Settings, pixels []byte, bindings ioBindings) Plan {
	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	pixelUsage, resultUsage := storage, storage
	switch settings.Strategy {
	case transfer.DirectPull:
		pixelUsage |= wgpu.BufferUsageVertex
		resultUsage |= wgpu.BufferUsageVertex
	case transfer.TextureBlit:
		resultUsage |= wgpu.BufferUsageCopySrc
	}

	return Plan{
		{
			Name:    string(shader.AnnotationArgPixels),
			Group:   GroupIO,
			Binding: bindings.pixels,
			Size:    settings.PixelCount() * PixelCoordSize,
			Usage:   pixelUsage,
			Data:    pixels,
		},
		{
			Name:    string(shader.AnnotationArgResult),
			Group:   GroupIO,
			Binding: bindings.result,
			Size:    settings.Strategy.ResultBufferSize(settings.Width, settings.Height),
			Usage:   resultUsage,
		},
	}
}

// Scene binding names, matching the trace kernel's group 1 variable names.
const (
	BindingSpheres = "spheres"
	BindingPanels  = "panels"
	BindingLights  = "lights"
	BindingConfig  = "config"
)

// planScene plans group 1: three uniform entity arrays and the config record. An empty entity
// vector is padded to one zeroed element, since a binding cannot be empty.
func planScene(s scene.Scene, cfg render_config.GPUConfig, bindings map[string]int) Plan {
	uniform := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst

	entry := func(name string, data []byte, elemSize int, usage wgpu.BufferUsage) BindingPlan {
		if len(data) == 0 {
			data = make([]byte, elemSize)
		}
		return BindingPlan{
			Name:    name,
			Group:   GroupScene,
			Binding: bindings[name],
			Size:    uint64(len(data)),
			Usage:   usage,
			Data:    data,
		}
	}

	return Plan{
		entry(BindingSpheres, s.SphereBytes(), entity.SphereSize, uniform),
		entry(BindingPanels, s.PanelBytes(), entity.PanelSize, uniform),
		entry(BindingLights, s.LightBytes(), entity.PanelSize, uniform),
		entry(BindingConfig, cfg.Marshal(), render_config.ConfigSize, storage),
	}
}

// PlanIO resolves the group 0 binding indices from the trace kernel's provider roles and plans
// the pixel table and result buffer.
//
// Parameters:
//   - settings: the frame size and transfer strategy
//   - pixels: the encoded pixel table
//   - trace: the trace kernel
//
// Returns:
//   - Plan: the two group 0 bindings, pixel table first
//   - error: ErrLayoutMismatch when the kernel lacks a role
func PlanIO(settings render_config.Settings, pixels []byte, trace shader.Shader) (Plan, error) {
	pixelBinding, err := roleBinding(trace, GroupIO, shader.AnnotationArgPixels)
	if err != nil {
		return nil, err
	}
	resultBinding, err := roleBinding(trace, GroupIO, shader.AnnotationArgResult)
	if err != nil {
		return nil, err
	}
	return planIO(settings, pixels, ioBindings{pixels: pixelBinding, result: resultBinding}), nil
}

// PlanScene resolves the group 1 binding indices from the trace kernel's variable names and
// plans the entity arrays and config.
//
// Parameters:
//   - s: the scene to upload
//   - cfg: the packed config for s
//   - trace: the trace kernel
//
// Returns:
//   - Plan: spheres, panels, lights and config, in that order
//   - error: ErrLayoutMismatch when the kernel lacks a variable
func PlanScene(s scene.Scene, cfg render_config.GPUConfig, trace shader.Shader) (Plan, error) {
	bindings, err := varBindings(trace, GroupScene, BindingSpheres, BindingPanels, BindingLights, BindingConfig)
	if err != nil {
		return nil, err
	}
	return planScene(s, cfg, bindings), nil
}

// ValidateBinding checks that a buffer of bufferSize bytes satisfies a binding that needs at
// least minBindingSize bytes.
//
// Parameters:
//   - minBindingSize: the size the kernel declares for the binding
//   - bufferSize: the size of the planned buffer
//
// Returns:
//   - error: ErrBindingTooLarge when minBindingSize exceeds bufferSize
func ValidateBinding(minBindingSize, bufferSize uint64) error {
	if minBindingSize > bufferSize {
		return fmt.Errorf("%w: kernel needs %d bytes, buffer has %d", ErrBindingTooLarge, minBindingSize, bufferSize)
	}
	return nil
}

// CheckPlan compares a plan against the layout a kernel declares. Every planned binding must
// exist in the kernel and fit the buffer, runtime-sized arrays must hold whole elements, and
// exact sizes (fixed-size types and specialized bindings) must match the buffer.
//
// Parameters:
//   - plan: the host plan for one group
//   - s: the kernel stage that declares the group
//
// Returns:
//   - error: ErrBindingTooLarge or ErrLayoutMismatch naming the offending binding
func CheckPlan(plan Plan, s shader.Shader) error {
	for _, b := range plan {
		size, ok := s.BindingSize(b.Group, b.Binding)
		if !ok {
			return fmt.Errorf("%w: %s has no binding @group(%d) @binding(%d)", ErrLayoutMismatch, s.Key(), b.Group, b.Binding)
		}
		if err := ValidateBinding(size.Min, b.Size); err != nil {
			return fmt.Errorf("%s %s: %w", s.Key(), b.Name, err)
		}
		if size.Exact && size.Min != b.Size {
			return fmt.Errorf("%w: %s %s declares %d bytes, host has %d", ErrLayoutMismatch, s.Key(), b.Name, size.Min, b.Size)
		}
		if size.Stride != 0 && b.Size%size.Stride != 0 {
			return fmt.Errorf("%w: %s %s has %d bytes, not a multiple of %d", ErrLayoutMismatch, s.Key(), b.Name, b.Size, size.Stride)
		}
	}
	return nil
}

// CheckIOPlan checks a group 0 plan against the frame it serves: the pixel table holds one
// kernel element per pixel and the result buffer holds ResultBufferSize bytes of whole kernel
// elements. It then applies CheckPlan.
//
// Parameters:
//   - plan: the group 0 plan
//   - settings: the frame size and transfer strategy
//   - trace: the trace kernel
//
// Returns:
//   - error: ErrLayoutMismatch when a size disagrees with the frame, or a CheckPlan error
func CheckIOPlan(plan Plan, settings render_config.Settings, trace shader.Shader) error {
	for _, b := range plan {
		size, ok := trace.BindingSize(b.Group, b.Binding)
		if !ok || size.Stride == 0 {
			return fmt.Errorf("%w: %s %s is not a runtime-sized array", ErrLayoutMismatch, trace.Key(), b.Name)
		}

		var want uint64
		switch b.Name {
		case string(shader.AnnotationArgPixels):
			want = settings.PixelCount() * size.Stride
		case string(shader.AnnotationArgResult):
			if uint64(settings.Strategy.ResultElementSize())%size.Stride != 0 {
				return fmt.Errorf("%w: %s result elements are %d bytes, %s writes %d per pixel",
					ErrLayoutMismatch, trace.Key(), size.Stride, settings.Strategy, settings.Strategy.ResultElementSize())
			}
			want = settings.Strategy.ResultBufferSize(settings.Width, settings.Height)
		default:
			return fmt.Errorf("%w: %s is not a group %d binding", ErrLayoutMismatch, b.Name, GroupIO)
		}
		if b.Size != want {
			return fmt.Errorf("%w: %s %s needs %d bytes for %dx%d, host has %d",
				ErrLayoutMismatch, trace.Key(), b.Name, want, settings.Width, settings.Height, b.Size)
		}
	}
	return CheckPlan(plan, trace)
}

// SpecializeIO declares the exact group 0 buffer sizes of a frame on the trace kernel's layout,
// so the compute pipeline and the group 0 bind group share one exactly sized descriptor. It must
// run before the trace pipeline is registered.
//
// Parameters:
//   - settings: the frame size and transfer strategy
//   - trace: the trace kernel
//
// Returns:
//   - error: a layout error, or shader.ErrBindingSize
func SpecializeIO(settings render_config.Settings, trace shader.Shader) error {
	plan, err := PlanIO(settings, nil, trace)
	if err != nil {
		return err
	}
	if err := CheckIOPlan(plan, settings, trace); err != nil {
		return err
	}
	return trace.SpecializeBindingSizes(GroupIO, plan.Sizes())
}

// roleBinding finds the binding index of a provider annotation with the given role.
func roleBinding(s shader.Shader, group int, role shader.AnnotationArg) (int, error) {
	for _, decl := range s.Declarations() {
		if decl.Type == shader.AnnotationTypeProvider && decl.Role() == role && decl.Group != nil && *decl.Group == group {
			return *decl.Binding, nil
		}
	}
	return 0, fmt.Errorf("%w: %s declares no %s binding in group %d", ErrLayoutMismatch, s.Key(), role, group)
}

// varBindings maps the variable names of a group's annotations to their binding indices.
func varBindings(s shader.Shader, group int, names ...string) (map[string]int, error) {
	out := make(map[string]int, len(names))
	for _, decl := range s.Declarations() {
		if decl.Type == shader.AnnotationTypeBindingGroup && decl.Group != nil && *decl.Group == group {
			out[decl.VarName()] = *decl.Binding
		}
	}
	for _, name := range names {
		if _, ok := out[name]; !ok {
			return nil, fmt.Errorf("%w: %s declares no %q in group %d", ErrLayoutMismatch, s.Key(), name, group)
		}
	}
	return out, nil
}
