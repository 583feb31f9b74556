package render_config

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrCountMismatch is returned when a config's entity counts disagree with the scene it describes.
	ErrCountMismatch = errors.New("render_config: entity count does not match scene")

	// ErrInvalidSettings is returned for a zero frame size or sample count.
	ErrInvalidSettings = errors.New("render_config: invalid settings")

	// ErrFrameTooLarge is returned when a frame's buffers or texture exceed the device limits.
	ErrFrameTooLarge = errors.New("render_config: frame exceeds device limits")

	// ErrLayoutDrift is returned when GPUConfig no longer serializes to ConfigSize.
	ErrLayoutDrift = errors.New("render_config: config layout drift")
)

// PixelCoordSize is the byte size of one pixel table entry, a vec2<f32>.
const PixelCoordSize = 8

// BaselineLimits are the WebGPU default limits. The renderer requests the default limits, so
// every device it creates supports at least these.
var BaselineLimits = wgpu.Limits{
	MaxTextureDimension2D:            8192,
	MaxStorageBufferBindingSize:      128 << 20,
	MaxBufferSize:                    256 << 20,
	MaxComputeWorkgroupsPerDimension: 65535,
}

// Settings holds the per-process render parameters chosen at startup.
type Settings struct {
	Strategy        transfer.Strategy
	Width           uint32
	Height          uint32
	SamplesPerPixel uint32
}

// NewSettings returns 600x600 DirectPull settings at 32 samples per pixel with the given options applied.
func NewSettings(options ...SettingsOption) Settings {
	s := &Settings{
		Strategy:        transfer.DirectPull,
		Width:           600,
		Height:          600,
		SamplesPerPixel: 32,
	}
	for _, opt := range options {
		opt(s)
	}
	return *s
}

// PixelCount returns Width * Height.
func (s Settings) PixelCount() uint64 {
	return uint64(s.Width) * uint64(s.Height)
}

// Validate checks that the frame fits the device: both sides within the 2D texture limit and
// the pixel table and result buffer within the storage binding and buffer size limits.
//
// Parameters:
//   - limits: the device limits, normally BaselineLimits
//
// Returns:
//   - error: ErrInvalidSettings or ErrFrameTooLarge, or nil
func (s Settings) Validate(limits wgpu.Limits) error {
	if s.Width == 0 || s.Height == 0 || s.SamplesPerPixel == 0 {
		return fmt.Errorf("%w: %dx%d at %d spp", ErrInvalidSettings, s.Width, s.Height, s.SamplesPerPixel)
	}
	if max(s.Width, s.Height) > limits.MaxTextureDimension2D {
		return fmt.Errorf("%w: %dx%d, sides are limited to %d", ErrFrameTooLarge, s.Width, s.Height, limits.MaxTextureDimension2D)
	}

	bufferLimit := min(limits.MaxStorageBufferBindingSize, limits.MaxBufferSize)
	buffers := []struct {
		name string
		size uint64
	}{
		{"pixel table", s.PixelCount() * PixelCoordSize},
		{"result buffer", s.Strategy.ResultBufferSize(s.Width, s.Height)},
	}
	for _, b := range buffers {
		if b.size > bufferLimit {
			return fmt.Errorf("%w: %dx%d needs a %d byte %s, limit is %d", ErrFrameTooLarge, s.Width, s.Height, b.size, b.name, bufferLimit)
		}
	}
	return nil
}

// Pack assembles a config from explicit counts. Callers normally use PackScene so the
// counts cannot drift from the vectors actually uploaded.
//
// Parameters:
//   - settings: the render settings
//   - sphereCount: number of spheres uploaded
//   - panelCount: number of panels uploaded
//   - lightCount: number of lights uploaded
//
// Returns:
//   - GPUConfig: the packed config, Reserved is always 0
func Pack(settings Settings, sphereCount, panelCount, lightCount int) GPUConfig {
	return GPUConfig{
		Mode:            uint32(settings.Strategy),
		Width:           settings.Width,
		Height:          settings.Height,
		SamplesPerPixel: settings.SamplesPerPixel,
		SphereCount:     uint32(sphereCount),
		PanelCount:      uint32(panelCount),
		LightCount:      uint32(lightCount),
	}
}

// CheckLayout verifies that GPUConfig still serializes to ConfigSize.
//
// Returns:
//   - error: ErrLayoutDrift when the in-memory or marshaled size disagrees
func CheckLayout() error {
	var g GPUConfig
	if g.Size() != ConfigSize || len(g.Marshal()) != ConfigSize {
		return fmt.Errorf("%w: config is %d bytes in memory and %d marshaled, kernel expects %d",
			ErrLayoutDrift, g.Size(), len(g.Marshal()), ConfigSize)
	}
	return nil
}

// PackScene assembles a config with counts taken from the scene's vector lengths.
func PackScene(settings Settings, s scene.Scene) GPUConfig {
	spheres, panels, lights := s.Counts()
	return Pack(settings, spheres, panels, lights)
}

// Validate checks that every count in the config equals the matching scene vector length.
//
// Parameters:
//   - s: the scene whose buffers accompany this config
//
// Returns:
//   - error: ErrCountMismatch naming the first disagreeing field, or nil
func (g *GPUConfig) Validate(s scene.Scene) error {
	spheres, panels, lights := s.Counts()
	checks := []struct {
		field string
		got   uint32
		want  int
	}{
		{"sphere_count", g.SphereCount, spheres},
		{"panel_count", g.PanelCount, panels},
		{"light_count", g.LightCount, lights},
	}
	for _, c := range checks {
		if int(c.got) != c.want {
			return fmt.Errorf("%w: %s is %d, scene has %d", ErrCountMismatch, c.field, c.got, c.want)
		}
	}
	return nil
}
