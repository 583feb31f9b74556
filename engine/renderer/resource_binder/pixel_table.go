package resource_binder

import (
	"encoding/binary"
	"math"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
)

// PixelCoordSize is the byte size of one pixel table entry.
const PixelCoordSize = render_config.PixelCoordSize

// PixelCoord is one entry of the pixel table, read by the kernel as vec2<f32> and by the
// DirectPull vertex stage as a per-instance Float32x2 attribute.
type PixelCoord struct {
	Col float32 // offset 0
	Row float32 // offset 4
}

// Size returns the byte size of the record.
func (p *PixelCoord) Size() int {
	return int(unsafe.Sizeof(*p))
}

// PixelTable returns one coordinate per pixel in row-major order: entry i is (i mod w, i div w).
// Rows are filled concurrently on a worker pool; every task writes a disjoint row so the
// output does not depend on scheduling.
//
// Parameters:
//   - width: the frame width in pixels
//   - height: the frame height in pixels
//   - workers: the maximum number of pool workers, runtime.NumCPU() when zero
//
// Returns:
//   - []PixelCoord: the table, width*height entries long
func PixelTable(width, height uint32, workers int) []PixelCoord {
	table := make([]PixelCoord, int(width)*int(height))
	if len(table) == 0 {
		return table
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool := worker.NewDynamicWorkerPool(workers, int(height), 1*time.Second)
	defer pool.Stop()

	var wg sync.WaitGroup
	for row := range height {
		wg.Add(1)
		r := row
		pool.SubmitTask(worker.Task{
			ID: int(r),
			Do: func() (any, error) {
				defer wg.Done()
				base := int(r) * int(width)
				for col := range width {
					table[base+int(col)] = PixelCoord{Col: float32(col), Row: float32(r)}
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return table
}

// EncodePixelTable serializes the table into the little-endian layout the kernel reads.
func EncodePixelTable(table []PixelCoord) []byte {
	out := make([]byte, len(table)*PixelCoordSize)
	for i, p := range table {
		off := i * PixelCoordSize
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(p.Col))
		binary.LittleEndian.PutUint32(out[off+4:], math.Float32bits(p.Row))
	}
	return out
}
