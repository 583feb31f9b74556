package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestSettingsFromFlags(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		spp           int
		strategy      string
		want          render_config.Settings
		wantErr       bool
	}{
		{
			name: "defaults", width: 600, height: 600, spp: 32, strategy: "direct",
			want: render_config.Settings{Strategy: transfer.DirectPull, Width: 600, Height: 600, SamplesPerPixel: 32},
		},
		{
			name: "blit", width: 320, height: 200, spp: 1, strategy: "blit",
			want: render_config.Settings{Strategy: transfer.TextureBlit, Width: 320, Height: 200, SamplesPerPixel: 1},
		},
		{
			name: "largest direct frame", width: 4096, height: 2048, spp: 1, strategy: "direct",
			want: render_config.Settings{Strategy: transfer.DirectPull, Width: 4096, Height: 2048, SamplesPerPixel: 1},
		},
		{name: "zero width", width: 0, height: 600, spp: 32, strategy: "direct", wantErr: true},
		{name: "side wraps pixel count", width: 65536, height: 65536, spp: 1, strategy: "direct", wantErr: true},
		{name: "pixel table over binding limit", width: 8192, height: 8192, spp: 1, strategy: "blit", wantErr: true},
		{name: "negative spp", width: 600, height: 600, spp: -1, strategy: "direct", wantErr: true},
		{name: "unknown strategy", width: 600, height: 600, spp: 32, strategy: "readback", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := settingsFromFlags(tt.width, tt.height, tt.spp, tt.strategy)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("settings = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAdapterTable(t *testing.T) {
	out := adapterTable([]renderer.AdapterSummary{
		{Preference: renderer.PowerLow, Info: wgpu.AdapterInfo{Name: "llvmpipe", VendorName: "mesa"}},
		{Preference: renderer.PowerHigh, Err: errors.New("no adapter")},
	})
	for _, want := range []string{"llvmpipe", "mesa", "unavailable: no adapter", renderer.PowerHigh.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestKernelTable(t *testing.T) {
	kernels, err := shader.LoadKernels(1, 5, 1)
	if err != nil {
		t.Fatalf("LoadKernels: %v", err)
	}
	out, err := kernelTable(kernels)
	if err != nil {
		t.Fatalf("kernelTable: %v\n%s", err, out)
	}
	for _, want := range []string{shader.KeyTrace, shader.KeyPresentDirect, shader.KeyPresentBlit, "64 x 1 x 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, " ok ") != len(kernels.All()) {
		t.Errorf("not every stage validated:\n%s", out)
	}
}
