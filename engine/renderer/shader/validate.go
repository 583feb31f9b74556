package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// CompileSPIRV compiles processed WGSL source to SPIR-V without touching a GPU.
// It is used to catch kernel errors before a device is requested.
//
// Parameters:
//   - source: processed WGSL source with no remaining annotations
//
// Returns:
//   - []byte: the SPIR-V module
//   - error: the compiler error, or ErrNotSPIRV if the output is malformed
func CompileSPIRV(source string) ([]byte, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile wgsl: %w", err)
	}
	if len(spirv) < 4 || binary.LittleEndian.Uint32(spirv[:4]) != spirvMagic {
		return nil, ErrNotSPIRV
	}
	return spirv, nil
}
