package transfer

import (
	"encoding/binary"
	"math"
	"testing"
)

func readFloats(buf []byte) []float32 {
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

func TestCell(t *testing.T) {
	cell := NewCell(600, 400)
	if cell.Size() != CellSize || len(cell.Marshal()) != CellSize {
		t.Fatalf("cell size = %d / %d, want %d", cell.Size(), len(cell.Marshal()), CellSize)
	}
	got := readFloats(cell.Marshal())
	if got[0] != float32(2)/600 || got[1] != float32(2)/400 {
		t.Errorf("cell = %v", got)
	}
}

func TestCheckLayout(t *testing.T) {
	if err := CheckLayout(); err != nil {
		t.Errorf("CheckLayout() = %v", err)
	}
}

func TestQuadCornersCoverOneCell(t *testing.T) {
	cell := NewCell(600, 600)
	buf := QuadCorners(cell)
	if len(buf) != QuadVertexCount*8 {
		t.Fatalf("len = %d, want %d", len(buf), QuadVertexCount*8)
	}

	f := readFloats(buf)
	for i := 0; i < len(f); i += 2 {
		x, y := f[i], f[i+1]
		if x < 0 || x > cell.Width || y > 0 || y < -cell.Height {
			t.Errorf("corner %d = (%v, %v) leaves the cell", i/2, x, y)
		}
	}
}

func TestBlitTriangleCoversClipSpace(t *testing.T) {
	f := readFloats(BlitTriangle())
	if len(f) != BlitVertexCount*4 {
		t.Fatalf("floats = %d, want %d", len(f), BlitVertexCount*4)
	}

	// clip (-1, 1) is the top-left of the screen and must sample v=0
	// position p maps to uv = ((p.x+1)/2, (1-p.y)/2) on every vertex
	for i := 0; i < len(f); i += 4 {
		px, py, u, v := f[i], f[i+1], f[i+2], f[i+3]
		if u != (px+1)/2 || v != (1-py)/2 {
			t.Errorf("vertex %d uv = (%v, %v), want (%v, %v)", i/4, u, v, (px+1)/2, (1-py)/2)
		}
	}
}
