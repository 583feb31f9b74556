package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/orchestrator"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type countingFrames struct {
	calls int
	err   error
}

func (f *countingFrames) Frame() error {
	f.calls++
	return f.err
}

func (f *countingFrames) Stats() orchestrator.Stats {
	return orchestrator.Stats{Strategy: transfer.DirectPull}
}

func TestDrainRedrawsRunsOneFrame(t *testing.T) {
	tests := []struct {
		name    string
		pending int
		want    int
	}{
		{"idle", 0, 0},
		{"single request", 1, 1},
		{"coalesced requests", 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := &countingFrames{}
			e := &engine{frames: frames, profiler: profiler.NewProfiler()}
			redraws := make(chan struct{}, 4)
			for range tt.pending {
				redraws <- struct{}{}
			}
			e.drainRedraws(redraws)
			if frames.calls != tt.want {
				t.Errorf("frames = %d, want %d", frames.calls, tt.want)
			}
			if len(redraws) != 0 {
				t.Errorf("%d requests left pending", len(redraws))
			}
		})
	}
}

func TestRedrawReportsDroppedFrames(t *testing.T) {
	acquire := fmt.Errorf("%w: surface outdated", renderer.ErrFrameAcquire)
	frames := &countingFrames{err: acquire}
	e := &engine{frames: frames, profiler: profiler.NewProfiler(), profilingEnabled: true}

	if err := e.Redraw(); !errors.Is(err, renderer.ErrFrameAcquire) {
		t.Fatalf("Redraw = %v, want ErrFrameAcquire", err)
	}
	frames.err = nil
	if err := e.Redraw(); err != nil {
		t.Fatalf("Redraw = %v", err)
	}
	if presented, dropped, failed := e.profiler.Frames(); presented != 1 || dropped != 1 || failed != 0 {
		t.Errorf("profiler frames = %d presented, %d dropped, %d failed", presented, dropped, failed)
	}
}

func TestBuilderOptions(t *testing.T) {
	settings := render_config.NewSettings(render_config.WithStrategy(transfer.TextureBlit))
	e := &engine{}
	for _, opt := range []EngineBuilderOption{
		WithSettings(settings),
		WithWorkers(3),
		WithProfiling(true),
		WithRendererOptions(renderer.WithPresentMode(renderer.PresentModeUncapped)),
	} {
		opt(e)
	}
	if e.settings != settings || e.workers != 3 || !e.profilingEnabled || len(e.rendererOptions) != 1 {
		t.Errorf("engine = %+v", e)
	}
}

func TestNewEngineRejectsBeforeOpeningWindow(t *testing.T) {
	bad := scene.CornellBox()
	bad.Lights[0].Color = mgl32.Vec3{0.2, 0.2, 0.2}

	tests := []struct {
		name    string
		options []EngineBuilderOption
		want    error
	}{
		{
			"frame size wraps 32 bits",
			[]EngineBuilderOption{WithSettings(render_config.NewSettings(render_config.WithSize(65536, 65536)))},
			render_config.ErrFrameTooLarge,
		},
		{
			"too many workgroups",
			[]EngineBuilderOption{WithSettings(render_config.NewSettings(render_config.WithSize(2048, 2048)))},
			render_config.ErrFrameTooLarge,
		},
		{
			"light does not emit",
			[]EngineBuilderOption{WithScene(bad)},
			scene.ErrInvalidScene,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.options...)
			if !errors.Is(err, tt.want) || e != nil {
				t.Errorf("NewEngine = %v, %v, want %v", e, err, tt.want)
			}
		})
	}
}

func TestReleaseWithoutBuild(t *testing.T) {
	e := &engine{}
	e.Release()
	e.Release()
}
