package shader

import (
	_ "embed"
	"fmt"
)

// Count constant names used by the trace kernel's uniform arrays.
const (
	ConstSphereCount = "sphere_count"
	ConstPanelCount  = "panel_count"
	ConstLightCount  = "light_count"
)

// Kernel keys, used as module labels and pipeline keys.
const (
	KeyTrace         = "trace"
	KeyPresentDirect = "present_direct"
	KeyPresentBlit   = "present_blit"
)

// TraceSource is the path tracing compute kernel.
//
//go:embed assets/trace.wgsl
var TraceSource string

// PresentDirectSource draws the result buffer as one quad per pixel.
//
//go:embed assets/present_direct.wgsl
var PresentDirectSource string

// PresentBlitSource samples the frame texture over a full-screen triangle.
//
//go:embed assets/present_blit.wgsl
var PresentBlitSource string

// Kernels holds every shader stage the tracer runs.
type Kernels struct {
	Trace          Shader
	DirectVertex   Shader
	DirectFragment Shader
	BlitVertex     Shader
	BlitFragment   Shader
}

// LoadKernels pre-processes and parses every embedded kernel. The entity counts size the
// trace kernel's uniform arrays.
//
// Parameters:
//   - spheres: the number of spheres in the scene
//   - panels: the number of non-emissive panels in the scene
//   - lights: the number of light panels in the scene
//
// Returns:
//   - *Kernels: the parsed kernels
//   - error: the first pre-processing or parsing error
func LoadKernels(spheres, panels, lights int) (*Kernels, error) {
	var (
		k   Kernels
		err error
	)
	k.Trace, err = NewShader(KeyTrace, ShaderTypeCompute,
		WithSource(TraceSource),
		WithConstant(ConstSphereCount, uint32(spheres)),
		WithConstant(ConstPanelCount, uint32(panels)),
		WithConstant(ConstLightCount, uint32(lights)),
	)
	if err != nil {
		return nil, err
	}
	if k.DirectVertex, err = NewShader(KeyPresentDirect, ShaderTypeVertex, WithSource(PresentDirectSource)); err != nil {
		return nil, err
	}
	if k.DirectFragment, err = NewShader(KeyPresentDirect, ShaderTypeFragment, WithSource(PresentDirectSource)); err != nil {
		return nil, err
	}
	if k.BlitVertex, err = NewShader(KeyPresentBlit, ShaderTypeVertex, WithSource(PresentBlitSource)); err != nil {
		return nil, err
	}
	if k.BlitFragment, err = NewShader(KeyPresentBlit, ShaderTypeFragment, WithSource(PresentBlitSource)); err != nil {
		return nil, err
	}
	return &k, nil
}

// All returns every loaded stage in a fixed order.
func (k *Kernels) All() []Shader {
	return []Shader{k.Trace, k.DirectVertex, k.DirectFragment, k.BlitVertex, k.BlitFragment}
}

// Validate compiles every distinct kernel source offline and returns the first failure.
func (k *Kernels) Validate() error {
	seen := make(map[string]bool)
	for _, s := range k.All() {
		if seen[s.Key()] {
			continue
		}
		seen[s.Key()] = true
		if err := s.Validate(); err != nil {
			return fmt.Errorf("validate kernels: %w", err)
		}
	}
	return nil
}
