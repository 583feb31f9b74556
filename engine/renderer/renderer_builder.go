package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.options.presentMode = mode
	}
}

// WithPowerPreference selects between an integrated and a discrete adapter.
//
// Parameters:
//   - pref: PowerLow (default) or PowerHigh
//
// Returns:
//   - RendererBuilderOption: a function that applies the power preference to a renderer
func WithPowerPreference(pref PowerPreference) RendererBuilderOption {
	return func(r *renderer) {
		r.options.powerPreference = pref
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.options.forceFallbackAdapter = force
	}
}
