package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestChooseSurfaceFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats []wgpu.TextureFormat
		want    wgpu.TextureFormat
	}{
		{"prefers bgra", []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatBGRA8Unorm}, wgpu.TextureFormatBGRA8Unorm},
		{"rgba when no bgra", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatRGBA8Unorm}, wgpu.TextureFormatRGBA8Unorm},
		{"falls back to first", []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float}, wgpu.TextureFormatRGBA16Float},
		{"empty", nil, wgpu.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseSurfaceFormat(tt.formats); got != tt.want {
				t.Errorf("chooseSurfaceFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBufferUsage(t *testing.T) {
	tests := []struct {
		name  string
		typ   wgpu.BufferBindingType
		extra wgpu.BufferUsage
		want  wgpu.BufferUsage
	}{
		{"uniform", wgpu.BufferBindingTypeUniform, 0, wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst},
		{"read only storage", wgpu.BufferBindingTypeReadOnlyStorage, 0, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{"storage as vertex", wgpu.BufferBindingTypeStorage, wgpu.BufferUsageVertex, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageVertex},
		{"storage as copy source", wgpu.BufferBindingTypeStorage, wgpu.BufferUsageCopySrc, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bufferUsage(tt.typ, tt.extra); got != tt.want {
				t.Errorf("bufferUsage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnumConversions(t *testing.T) {
	if PresentModeVSync.toWGPU() != wgpu.PresentModeFifo {
		t.Error("vsync should map to fifo")
	}
	if PresentModeUncapped.toWGPU() != wgpu.PresentModeImmediate {
		t.Error("uncapped should map to immediate")
	}
	if PowerLow.toWGPU() != wgpu.PowerPreferenceLowPower || PowerLow.String() != "low-power" {
		t.Error("unexpected low-power mapping")
	}
	if PowerHigh.toWGPU() != wgpu.PowerPreferenceHighPerformance || PowerHigh.String() != "high-performance" {
		t.Error("unexpected high-performance mapping")
	}
}

func TestBuilderOptions(t *testing.T) {
	r := &renderer{}
	for _, opt := range []RendererBuilderOption{
		WithPresentMode(PresentModeUncapped),
		WithPowerPreference(PowerHigh),
		WithForceSoftwareRenderer(true),
	} {
		opt(r)
	}
	want := backendOptions{forceFallbackAdapter: true, powerPreference: PowerHigh, presentMode: PresentModeUncapped}
	if r.options != want {
		t.Errorf("options = %+v, want %+v", r.options, want)
	}
}
