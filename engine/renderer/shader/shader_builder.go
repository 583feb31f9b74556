package shader

import (
	"fmt"
	"os"
)

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithSource sets the raw WGSL source of the shader.
//
// Parameters:
//   - source: the raw WGSL source, annotations included
//
// Returns:
//   - ShaderBuilderOption: a function that sets the shader source
func WithSource(source string) ShaderBuilderOption {
	return func(s *shader) {
		s.rawSource = source
	}
}

// WithSourceFromPath reads the raw WGSL source of the shader from a file.
//
// Parameters:
//   - path: the file path to read WGSL source from
//
// Returns:
//   - ShaderBuilderOption: a function that loads the shader source
func WithSourceFromPath(path string) ShaderBuilderOption {
	return func(s *shader) {
		data, err := os.ReadFile(path)
		if err != nil {
			s.err = fmt.Errorf("read source %q: %w", path, err)
			return
		}
		s.rawSource = string(data)
	}
}

// WithConstant sets the element count substituted for array<type,name> annotations.
//
// Parameters:
//   - name: the count name
//   - value: the element count, raised to one if zero
//
// Returns:
//   - ShaderBuilderOption: a function that registers the count constant
func WithConstant(name string, value uint32) ShaderBuilderOption {
	return func(s *shader) {
		s.pp.SetConstant(name, value)
	}
}
