package entity

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SphereSize is the byte size of one Sphere record in the kernel's uniform array.
	SphereSize = 32

	// PanelSize is the byte size of one Panel record in the kernel's uniform array.
	PanelSize = 64

	// PanelReserved is the fixed value written into every panel's trailing slot.
	PanelReserved float32 = -10.0
)

// GPUSphereSource is the WGSL definition of the Sphere struct.
// Matches GPUSphere layout exactly (32 bytes).
//
//go:embed assets/sphere.wgsl
var GPUSphereSource string

// GPUPanelSource is the WGSL definition of the Panel struct.
// Matches GPUPanel layout exactly (64 bytes).
//
//go:embed assets/panel.wgsl
var GPUPanelSource string

// GPUSphere is the GPU-aligned representation of a sphere.
// Size: 32 bytes.
type GPUSphere struct {
	Position [4]float32 // offset  0: center xyz, w fixed at 1
	Color    [3]float32 // offset 16: RGB albedo
	Radius   float32    // offset 28
}

// NewSphere builds a sphere record with the homogeneous w component set to 1.
//
// Parameters:
//   - center: the sphere center in scene units
//   - color: the RGB albedo
//   - radius: the sphere radius in scene units
//
// Returns:
//   - GPUSphere: the record ready for marshaling
func NewSphere(center, color mgl32.Vec3, radius float32) GPUSphere {
	return GPUSphere{
		Position: center.Vec4(1),
		Color:    color,
		Radius:   radius,
	}
}

// Center returns the sphere center without the w component.
func (g *GPUSphere) Center() mgl32.Vec3 {
	return mgl32.Vec4(g.Position).Vec3()
}

// Size returns the size of the GPUSphere struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUSphere) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSphere struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUSphere) Marshal() []byte {
	buf := make([]byte, SphereSize)
	putFloats(buf[0:16], g.Position[:])
	putFloats(buf[16:28], g.Color[:])
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Radius))
	return buf
}

// UnmarshalSphere decodes one sphere record.
//
// Parameters:
//   - b: exactly SphereSize bytes
//
// Returns:
//   - GPUSphere: the decoded record
//   - error: ErrRecordSize if b has the wrong length
func UnmarshalSphere(b []byte) (GPUSphere, error) {
	var g GPUSphere
	if len(b) != SphereSize {
		return g, fmt.Errorf("%w: sphere needs %d bytes, got %d", ErrRecordSize, SphereSize, len(b))
	}
	getFloats(b[0:16], g.Position[:])
	getFloats(b[16:28], g.Color[:])
	g.Radius = math.Float32frombits(binary.LittleEndian.Uint32(b[28:32]))
	return g, nil
}

// GPUPanel is the GPU-aligned representation of an axis-aligned rectangle.
// Used for walls and area lights alike. Size: 64 bytes.
type GPUPanel struct {
	P0       [4]float32 // offset  0: first corner xyz, w fixed at 1
	P1       [4]float32 // offset 16: opposite corner xyz, w fixed at 1
	Normal   [4]float32 // offset 32: facing direction xyz, w fixed at 0
	Color    [3]float32 // offset 48: RGB albedo, or radiance when any channel exceeds 1
	Reserved float32    // offset 60: always PanelReserved
}

// NewPanel builds a panel record with pads and the reserved slot filled in.
//
// Parameters:
//   - p0: the first corner
//   - p1: the opposite corner
//   - normal: the facing direction
//   - color: the RGB albedo or emitted radiance
//
// Returns:
//   - GPUPanel: the record ready for marshaling
func NewPanel(p0, p1, normal, color mgl32.Vec3) GPUPanel {
	return GPUPanel{
		P0:       p0.Vec4(1),
		P1:       p1.Vec4(1),
		Normal:   normal.Vec4(0),
		Color:    color,
		Reserved: PanelReserved,
	}
}

// Corners returns both panel corners without their w components.
func (g *GPUPanel) Corners() (mgl32.Vec3, mgl32.Vec3) {
	return mgl32.Vec4(g.P0).Vec3(), mgl32.Vec4(g.P1).Vec3()
}

// Direction returns the facing direction without its w component.
func (g *GPUPanel) Direction() mgl32.Vec3 {
	return mgl32.Vec4(g.Normal).Vec3()
}

// Emissive reports whether the panel emits light.
func (g *GPUPanel) Emissive() bool {
	for _, c := range g.Color {
		if c > 1 {
			return true
		}
	}
	return false
}

// Size returns the size of the GPUPanel struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUPanel) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPanel struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPUPanel) Marshal() []byte {
	buf := make([]byte, PanelSize)
	putFloats(buf[0:16], g.P0[:])
	putFloats(buf[16:32], g.P1[:])
	putFloats(buf[32:48], g.Normal[:])
	putFloats(buf[48:60], g.Color[:])
	binary.LittleEndian.PutUint32(buf[60:64], math.Float32bits(g.Reserved))
	return buf
}

// UnmarshalPanel decodes one panel record.
//
// Parameters:
//   - b: exactly PanelSize bytes
//
// Returns:
//   - GPUPanel: the decoded record
//   - error: ErrRecordSize if b has the wrong length
func UnmarshalPanel(b []byte) (GPUPanel, error) {
	var g GPUPanel
	if len(b) != PanelSize {
		return g, fmt.Errorf("%w: panel needs %d bytes, got %d", ErrRecordSize, PanelSize, len(b))
	}
	getFloats(b[0:16], g.P0[:])
	getFloats(b[16:32], g.P1[:])
	getFloats(b[32:48], g.Normal[:])
	getFloats(b[48:60], g.Color[:])
	g.Reserved = math.Float32frombits(binary.LittleEndian.Uint32(b[60:64]))
	return g, nil
}

func putFloats(dst []byte, src []float32) {
	for i, f := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

func getFloats(src []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
