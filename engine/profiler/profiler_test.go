package profiler

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/orchestrator"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
)

func TestRecordAndSummary(t *testing.T) {
	p := NewProfiler()
	stats := orchestrator.Stats{
		Strategy:    transfer.TextureBlit,
		Dispatch:    [3]uint32{5625, 1, 1},
		VertexCount: 3,
		Instances:   1,
	}
	for _, ms := range []int{2, 4} {
		stats.ComputeTime = time.Duration(ms) * time.Millisecond
		stats.PresentTime = time.Millisecond
		p.Record(stats, nil)
	}
	p.Record(stats, fmt.Errorf("%w: timeout", renderer.ErrFrameAcquire))
	p.Record(stats, errors.New("draw failed"))

	if presented, dropped, failed := p.Frames(); presented != 2 || dropped != 1 || failed != 1 {
		t.Fatalf("Frames = %d, %d, %d, want 2, 1, 1", presented, dropped, failed)
	}

	var buf bytes.Buffer
	p.Summary(&buf)
	out := buf.String()
	for _, want := range []string{"5625 x 1 x 1", transfer.TextureBlit.String(), "3ms / 4ms", "3 vertices x 1 instances"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryWithoutFrames(t *testing.T) {
	var buf bytes.Buffer
	NewProfiler().Summary(&buf)
	if !strings.Contains(buf.String(), "0s / 0s") {
		t.Errorf("summary = %s", buf.String())
	}
}
