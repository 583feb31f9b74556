package profiler

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/orchestrator"
	"github.com/Carmen-Shannon/oxy-trace/log"
	"github.com/olekukonko/tablewriter"
)

var logger = log.New("profiler")

// Profiler accumulates per-frame timings from the orchestrator and host memory statistics.
// Frames are rendered on demand, so every recorded frame is logged rather than sampled on an interval.
type Profiler struct {
	frames      int
	dropped     int
	failed      int
	computeSum  time.Duration
	computeMax  time.Duration
	presentSum  time.Duration
	presentMax  time.Duration
	last        orchestrator.Stats
	memStats    runtime.MemStats
	lastGCCount uint32
}

// NewProfiler creates an empty Profiler.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Record adds the statistics of the frame that just ran and logs a one-line report.
//
// Parameters:
//   - stats: the orchestrator statistics after Frame returned
//   - frameErr: the error Frame returned, nil for a presented frame; renderer.ErrFrameAcquire
//     counts as a dropped frame, anything else as a failed one
func (p *Profiler) Record(stats orchestrator.Stats, frameErr error) {
	p.last = stats
	switch {
	case errors.Is(frameErr, renderer.ErrFrameAcquire):
		p.dropped++
		return
	case frameErr != nil:
		p.failed++
		return
	}
	p.frames++
	p.computeSum += stats.ComputeTime
	p.presentSum += stats.PresentTime
	p.computeMax = max(p.computeMax, stats.ComputeTime)
	p.presentMax = max(p.presentMax, stats.PresentTime)

	runtime.ReadMemStats(&p.memStats)
	gcCount := p.memStats.NumGC
	var lastPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	}
	logger.Infof("frame %d: compute %s | present %s | heap %.2f MB | GC %d (+%d, last %d µs)",
		p.frames, stats.ComputeTime, stats.PresentTime,
		float64(p.memStats.Alloc)/1024/1024, gcCount, gcCount-p.lastGCCount, lastPauseUs)
	p.lastGCCount = gcCount
}

// Frames returns the number of presented, dropped and failed frames recorded.
func (p *Profiler) Frames() (presented, dropped, failed int) {
	return p.frames, p.dropped, p.failed
}

// Summary writes a table of the recorded frames.
//
// Parameters:
//   - w: destination of the table
func (p *Profiler) Summary(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"strategy", p.last.Strategy.String()},
		{"dispatch", fmt.Sprintf("%d x %d x %d", p.last.Dispatch[0], p.last.Dispatch[1], p.last.Dispatch[2])},
		{"draw", fmt.Sprintf("%d vertices x %d instances", p.last.VertexCount, p.last.Instances)},
		{"frames", fmt.Sprintf("%d", p.frames)},
		{"dropped", fmt.Sprintf("%d", p.dropped)},
		{"failed", fmt.Sprintf("%d", p.failed)},
		{"compute avg / max", fmt.Sprintf("%s / %s", average(p.computeSum, p.frames), p.computeMax)},
		{"present avg / max", fmt.Sprintf("%s / %s", average(p.presentSum, p.frames), p.presentMax)},
		{"heap", fmt.Sprintf("%.2f MB", float64(p.memStats.Alloc)/1024/1024)},
	})
	table.Render()
}

func average(sum time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}
	return sum / time.Duration(n)
}
