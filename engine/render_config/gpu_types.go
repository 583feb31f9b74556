package render_config

import (
	_ "embed"
	"encoding/binary"
	"unsafe"
)

// ConfigSize is the byte size of the Config record bound at group 1 binding 3.
const ConfigSize = 32

// GPUConfigSource is the WGSL definition of the Config struct.
// Matches GPUConfig layout exactly (32 bytes).
//
//go:embed assets/config.wgsl
var GPUConfigSource string

// GPUConfig is the GPU-aligned frame configuration read by the trace kernel.
// Size: 32 bytes.
type GPUConfig struct {
	Mode            uint32 // offset  0: transfer.Strategy
	Width           uint32 // offset  4
	Height          uint32 // offset  8
	SamplesPerPixel uint32 // offset 12
	SphereCount     uint32 // offset 16
	PanelCount      uint32 // offset 20
	LightCount      uint32 // offset 24
	Reserved        uint32 // offset 28: always 0
}

// Size returns the size of the GPUConfig struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUConfig) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUConfig struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUConfig) Marshal() []byte {
	buf := make([]byte, ConfigSize)
	binary.LittleEndian.PutUint32(buf[0:4], g.Mode)
	binary.LittleEndian.PutUint32(buf[4:8], g.Width)
	binary.LittleEndian.PutUint32(buf[8:12], g.Height)
	binary.LittleEndian.PutUint32(buf[12:16], g.SamplesPerPixel)
	binary.LittleEndian.PutUint32(buf[16:20], g.SphereCount)
	binary.LittleEndian.PutUint32(buf[20:24], g.PanelCount)
	binary.LittleEndian.PutUint32(buf[24:28], g.LightCount)
	binary.LittleEndian.PutUint32(buf[28:32], 0)
	return buf
}
