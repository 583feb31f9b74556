package resource_binder

import (
	"encoding/binary"
	"math"
	"slices"
	"testing"
)

func TestPixelTable(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
	}{
		{"single pixel", 1, 1},
		{"wide", 7, 3},
		{"tall", 2, 9},
		{"cornell", 600, 600},
		{"empty", 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := PixelTable(tt.width, tt.height, 4)
			if len(table) != int(tt.width*tt.height) {
				t.Fatalf("len = %d, want %d", len(table), tt.width*tt.height)
			}
			for i, p := range table {
				wantCol := float32(uint32(i) % tt.width)
				wantRow := float32(uint32(i) / tt.width)
				if p.Col != wantCol || p.Row != wantRow {
					t.Fatalf("entry %d = (%v, %v), want (%v, %v)", i, p.Col, p.Row, wantCol, wantRow)
				}
			}
		})
	}
}

func TestPixelTableDeterministicAcrossWorkers(t *testing.T) {
	serial := PixelTable(64, 48, 1)
	for _, workers := range []int{0, 2, 16} {
		if got := PixelTable(64, 48, workers); !slices.Equal(got, serial) {
			t.Errorf("table with %d workers differs from serial table", workers)
		}
	}
}

func TestEncodePixelTable(t *testing.T) {
	table := PixelTable(3, 2, 1)
	b := EncodePixelTable(table)
	if len(b) != len(table)*PixelCoordSize {
		t.Fatalf("encoded %d bytes, want %d", len(b), len(table)*PixelCoordSize)
	}
	// entry 5 is (2, 1)
	col := math.Float32frombits(binary.LittleEndian.Uint32(b[40:]))
	row := math.Float32frombits(binary.LittleEndian.Uint32(b[44:]))
	if col != 2 || row != 1 {
		t.Errorf("entry 5 decodes to (%v, %v), want (2, 1)", col, row)
	}

	var p PixelCoord
	if p.Size() != PixelCoordSize {
		t.Errorf("PixelCoord size = %d, want %d", p.Size(), PixelCoordSize)
	}
}
