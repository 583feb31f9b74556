package render_config

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
)

func TestGPUConfigSize(t *testing.T) {
	var cfg GPUConfig
	if cfg.Size() != ConfigSize {
		t.Errorf("GPUConfig size = %d, want %d", cfg.Size(), ConfigSize)
	}
	if got := len(cfg.Marshal()); got != ConfigSize {
		t.Errorf("Marshal() length = %d, want %d", got, ConfigSize)
	}
}

func TestPackSceneCornellBox(t *testing.T) {
	tests := []struct {
		name     string
		strategy transfer.Strategy
		mode     uint32
	}{
		{"direct", transfer.DirectPull, 0},
		{"blit", transfer.TextureBlit, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := NewSettings(WithStrategy(tt.strategy), WithSize(600, 600), WithSamplesPerPixel(16))
			cfg := PackScene(settings, scene.CornellBox())
			buf := cfg.Marshal()

			want := []uint32{tt.mode, 600, 600, 16, 1, 5, 1, 0}
			for i, w := range want {
				if got := binary.LittleEndian.Uint32(buf[i*4:]); got != w {
					t.Errorf("word %d = %d, want %d", i, got, w)
				}
			}
			if err := cfg.Validate(scene.CornellBox()); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestValidateRejectsMismatch(t *testing.T) {
	s := scene.CornellBox()
	settings := NewSettings()

	tests := []struct {
		name string
		cfg  GPUConfig
	}{
		{"spheres", Pack(settings, 2, 5, 1)},
		{"panels", Pack(settings, 1, 4, 1)},
		{"lights", Pack(settings, 1, 5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(s); !errors.Is(err, ErrCountMismatch) {
				t.Errorf("Validate() = %v, want ErrCountMismatch", err)
			}
		})
	}
}

func TestPackSceneTracksEmptyScene(t *testing.T) {
	cfg := PackScene(NewSettings(), scene.NewScene())
	if cfg.SphereCount != 0 || cfg.PanelCount != 0 || cfg.LightCount != 0 {
		t.Errorf("counts = %d %d %d, want zeros", cfg.SphereCount, cfg.PanelCount, cfg.LightCount)
	}
	if err := cfg.Validate(scene.NewScene()); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSettingsOptions(t *testing.T) {
	s := NewSettings(WithSize(0, 300), WithSamplesPerPixel(0))
	if s.Width != 600 || s.Height != 300 {
		t.Errorf("size = %dx%d, want 600x300", s.Width, s.Height)
	}
	if s.SamplesPerPixel != 1 {
		t.Errorf("spp = %d, want 1", s.SamplesPerPixel)
	}
	if s.PixelCount() != 180000 {
		t.Errorf("PixelCount() = %d, want 180000", s.PixelCount())
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     error
	}{
		{"default", NewSettings(), nil},
		{"largest side", NewSettings(WithSize(8192, 1024), WithStrategy(transfer.TextureBlit)), nil},
		{"side over texture limit", NewSettings(WithSize(8193, 1)), ErrFrameTooLarge},
		{"pixel count wraps 32 bits", NewSettings(WithSize(65536, 65536)), ErrFrameTooLarge},
		{"result over binding limit", NewSettings(WithSize(4096, 4096)), ErrFrameTooLarge},
		{"pixel table over binding limit", NewSettings(WithSize(8192, 4096), WithStrategy(transfer.TextureBlit)), ErrFrameTooLarge},
		{"zero height", Settings{Width: 600, SamplesPerPixel: 1}, ErrInvalidSettings},
		{"zero samples", Settings{Width: 600, Height: 600}, ErrInvalidSettings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate(BaselineLimits)
			if tt.want == nil && err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	if got := NewSettings(WithSize(65536, 65536)).PixelCount(); got != 1<<32 {
		t.Errorf("PixelCount() = %d, want %d", got, uint64(1)<<32)
	}
}

func TestCheckLayout(t *testing.T) {
	if err := CheckLayout(); err != nil {
		t.Errorf("CheckLayout() = %v", err)
	}
}
