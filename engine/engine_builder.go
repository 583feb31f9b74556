package engine

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithSettings sets the frame size, sample count and transfer strategy.
//
// Parameters:
//   - settings: the render settings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSettings(settings render_config.Settings) EngineBuilderOption {
	return func(e *engine) {
		e.settings = settings
	}
}

// WithScene replaces the default Cornell box.
//
// Parameters:
//   - s: the scene to trace
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally. The caller keeps ownership of it.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
		e.ownsWindow = false
	}
}

// WithRendererOptions forwards options to the renderer.
//
// Parameters:
//   - options: renderer options such as the present mode and the power preference
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithWorkers bounds the worker pool that builds the pixel table.
func WithWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		e.workers = n
	}
}

// WithProfiling enables per-frame timing logs and a summary table once the window closes.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}
