package transfer

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// CellSize is the byte size of the Cell uniform used by the DirectPull vertex stage.
const CellSize = 8

// GPUCellSource is the WGSL definition of the Cell struct.
// Matches GPUCell layout exactly (8 bytes).
//
//go:embed assets/cell.wgsl
var GPUCellSource string

// GPUCell holds the clip-space extent of one pixel quad.
// Size: 8 bytes.
type GPUCell struct {
	Width  float32 // offset 0: 2 / frame width
	Height float32 // offset 4: 2 / frame height
}

// NewCell returns the clip-space cell extent for a width x height frame.
func NewCell(width, height uint32) GPUCell {
	return GPUCell{
		Width:  2 / float32(width),
		Height: 2 / float32(height),
	}
}

// Size returns the size of the GPUCell struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (8)
func (g *GPUCell) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCell struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 8-byte buffer ready for GPU upload
func (g *GPUCell) Marshal() []byte {
	buf := make([]byte, CellSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Width))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Height))
	return buf
}

// CheckLayout verifies that GPUCell still serializes to CellSize.
func CheckLayout() error {
	var g GPUCell
	if g.Size() != CellSize || len(g.Marshal()) != CellSize {
		return fmt.Errorf("%w: cell is %d bytes in memory and %d marshaled, kernel expects %d",
			ErrLayoutDrift, g.Size(), len(g.Marshal()), CellSize)
	}
	return nil
}

// QuadCorners returns the six clip-space corner offsets of one pixel quad as two triangles.
// Offsets are relative to the pixel's top-left corner, y pointing up.
//
// Layout: 6 vertices of vec2<f32>, 48 bytes.
func QuadCorners(cell GPUCell) []byte {
	w, h := cell.Width, cell.Height
	corners := []float32{
		0, 0,
		0, -h,
		w, -h,
		0, 0,
		w, -h,
		w, 0,
	}
	return floatBytes(corners)
}

// BlitTriangle returns the single full-screen triangle used by TextureBlit.
// Each vertex is a clip-space position followed by a texture coordinate, with v=0 at the top row.
//
// Layout: 3 vertices of (vec2<f32>, vec2<f32>), 48 bytes.
func BlitTriangle() []byte {
	return floatBytes([]float32{
		-1, -1, 0, 1,
		3, -1, 2, 1,
		-1, 3, 0, -1,
	})
}

// QuadVertexCount is the number of vertices drawn per pixel instance in DirectPull.
const QuadVertexCount = 6

// BlitVertexCount is the number of vertices drawn for the TextureBlit triangle.
const BlitVertexCount = 3

func floatBytes(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
