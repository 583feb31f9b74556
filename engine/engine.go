// Package engine assembles the tracer: it builds the GPU context, the kernels, the bound
// resources and the orchestrator once, then renders a frame at startup and one per redraw request.
package engine

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/entity"
	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/orchestrator"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource_binder"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
	"github.com/Carmen-Shannon/oxy-trace/log"
)

var logger = log.New("engine")

// Engine is the main entry point of the tracer.
type Engine interface {
	// Window returns the window frames are presented to.
	Window() window.Window

	// Renderer returns the GPU context.
	Renderer() renderer.Renderer

	// Orchestrator returns the frame orchestrator.
	Orchestrator() orchestrator.Orchestrator

	// Redraw runs one frame. A dropped frame is logged and reported, never fatal.
	//
	// Returns:
	//   - error: the frame error, renderer.ErrFrameAcquire for a dropped frame
	Redraw() error

	// Run renders the first frame, then processes window events until the window is closed,
	// rendering once per redraw request. It blocks on the calling thread.
	Run()

	// Release frees the bound resources, the GPU context and the window.
	Release()
}

// frameRunner is the part of the orchestrator the redraw loop drives.
type frameRunner interface {
	Frame() error
	Stats() orchestrator.Stats
}

// engine implements the Engine interface.
type engine struct {
	settings        render_config.Settings
	scene           scene.Scene
	rendererOptions []renderer.RendererBuilderOption
	workers         int

	window       window.Window
	ownsWindow   bool
	renderer     renderer.Renderer
	binder       resource_binder.Binder
	orchestrator orchestrator.Orchestrator
	frames       frameRunner

	profiler         *profiler.Profiler
	profilingEnabled bool
}

var _ Engine = &engine{}

// NewEngine builds the tracer. When no window is supplied, one sized to the frame is created.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the ready-to-run engine
//   - error: any setup failure; nothing is left allocated when it is returned
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		settings: render_config.NewSettings(),
		scene:    scene.CornellBox(),
		profiler: profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}

	if err := e.build(); err != nil {
		e.Release()
		return nil, err
	}
	return e, nil
}

// preflight runs every check that needs no GPU: record layouts, the scene, the frame size
// against the device limits and the config counts.
func (e *engine) preflight() (render_config.GPUConfig, error) {
	for _, check := range []func() error{
		entity.CheckLayout,
		render_config.CheckLayout,
		transfer.CheckLayout,
		e.scene.Check,
	} {
		if err := check(); err != nil {
			return render_config.GPUConfig{}, err
		}
	}
	if err := e.settings.Validate(render_config.BaselineLimits); err != nil {
		return render_config.GPUConfig{}, err
	}

	cfg := render_config.PackScene(e.settings, e.scene)
	if err := cfg.Validate(e.scene); err != nil {
		return render_config.GPUConfig{}, err
	}
	lo, hi := e.scene.Bounds()
	logger.Debugf("scene bounds %v to %v", lo, hi)
	return cfg, nil
}

// build creates every GPU object in dependency order.
func (e *engine) build() error {
	cfg, err := e.preflight()
	if err != nil {
		return err
	}

	spheres, panels, lights := e.scene.Counts()
	kernels, err := shader.LoadKernels(spheres, panels, lights)
	if err != nil {
		return fmt.Errorf("load kernels: %w", err)
	}

	threads := kernels.Trace.WorkgroupSize()[0]
	groups := orchestrator.WorkgroupCount(uint32(e.settings.PixelCount()), threads)
	if groups > render_config.BaselineLimits.MaxComputeWorkgroupsPerDimension {
		return fmt.Errorf("%w: %dx%d needs %d workgroups, limit is %d", render_config.ErrFrameTooLarge,
			e.settings.Width, e.settings.Height, groups, render_config.BaselineLimits.MaxComputeWorkgroupsPerDimension)
	}
	// the compute pipeline and the group 0 bind group share this exactly sized layout
	if err := resource_binder.SpecializeIO(e.settings, kernels.Trace); err != nil {
		return err
	}

	if e.window == nil {
		w, err := window.NewWindow(window.WithSize(int(e.settings.Width), int(e.settings.Height)))
		if err != nil {
			return err
		}
		e.window, e.ownsWindow = w, true
	}

	e.renderer, err = renderer.NewRenderer(e.window, e.rendererOptions...)
	if err != nil {
		return err
	}
	info := e.renderer.AdapterInfo()
	logger.Noticef("adapter: %s (%v)", info.Name, info.BackendType)

	if err := e.renderer.RegisterPipelines(orchestrator.Pipelines(kernels, e.settings.Strategy)...); err != nil {
		return fmt.Errorf("register pipelines: %w", err)
	}

	var binderOptions []resource_binder.BinderBuilderOption
	if e.workers > 0 {
		binderOptions = append(binderOptions, resource_binder.WithWorkers(e.workers))
	}
	e.binder = resource_binder.NewBinder(e.renderer, kernels, binderOptions...)
	if err := e.binder.BuildIO(e.settings); err != nil {
		return err
	}
	if err := e.binder.BuildScene(e.scene, cfg); err != nil {
		return err
	}
	if err := e.binder.BuildPresentation(e.settings); err != nil {
		return err
	}

	e.orchestrator = orchestrator.NewOrchestrator(e.renderer, e.binder, e.settings, threads)
	e.frames = e.orchestrator
	logger.Infof("%s: %dx%d at %d spp", e.settings.Strategy, e.settings.Width, e.settings.Height, e.settings.SamplesPerPixel)
	return nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Orchestrator() orchestrator.Orchestrator {
	return e.orchestrator
}

func (e *engine) Redraw() error {
	err := e.frames.Frame()
	switch {
	case errors.Is(err, renderer.ErrFrameAcquire):
		logger.Warningf("frame dropped: %v", err)
	case err != nil:
		logger.Errorf("frame failed: %v", err)
	}
	if e.profilingEnabled {
		e.profiler.Record(e.frames.Stats(), err)
	}
	return err
}

// drainRedraws runs at most one frame for any number of pending requests.
func (e *engine) drainRedraws(redraws <-chan struct{}) {
	pending := false
	for {
		select {
		case <-redraws:
			pending = true
		default:
			if pending {
				_ = e.Redraw()
			}
			return
		}
	}
}

func (e *engine) Run() {
	_ = e.Redraw()

	redraws := e.window.Redraws()
	e.window.SetUpdateCallback(func() {
		e.drainRedraws(redraws)
	})
	e.window.ProcessMessages()

	if e.profilingEnabled {
		var buf bytes.Buffer
		e.profiler.Summary(&buf)
		logger.Noticef("frame statistics\n%s", buf.String())
	}
}

func (e *engine) Release() {
	if e.binder != nil {
		e.binder.Release()
		e.binder = nil
	}
	if e.renderer != nil {
		e.renderer.Release()
		e.renderer = nil
	}
	if e.ownsWindow && e.window != nil {
		if err := e.window.Close(); err != nil && !errors.Is(err, window.ErrNotInitialized) {
			logger.Warningf("close window: %v", err)
		}
		e.window = nil
	}
}
