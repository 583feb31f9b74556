package shader

import "errors"

var (
	// ErrNoSource is returned when a shader is built without WithSource or WithSourceFromPath.
	ErrNoSource = errors.New("no shader source provided")

	// ErrNoEntryPoint is returned when the source has no entry point for the shader's stage.
	ErrNoEntryPoint = errors.New("no entry point")

	// ErrUnsetConstant is returned when an array annotation names a count that was never set.
	ErrUnsetConstant = errors.New("count constant is not set")

	// ErrBindingSize is returned when a buffer size cannot specialize a binding.
	ErrBindingSize = errors.New("buffer size does not fit binding")

	// ErrNotSPIRV is returned when the compiler output does not start with the SPIR-V magic number.
	ErrNotSPIRV = errors.New("compiler output is not SPIR-V")
)
