package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. This is the default.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

func (m PresentMode) toWGPU() wgpu.PresentMode {
	if m == PresentModeUncapped {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

// PowerPreference selects between integrated and discrete adapters.
type PowerPreference int

const (
	// PowerLow prefers an integrated, power-saving adapter. This is the default.
	PowerLow PowerPreference = iota

	// PowerHigh prefers a discrete, high-performance adapter.
	PowerHigh
)

func (p PowerPreference) toWGPU() wgpu.PowerPreference {
	if p == PowerHigh {
		return wgpu.PowerPreferenceHighPerformance
	}
	return wgpu.PowerPreferenceLowPower
}

func (p PowerPreference) String() string {
	if p == PowerHigh {
		return "high-performance"
	}
	return "low-power"
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
