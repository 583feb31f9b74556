package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
	}

	merged := MergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 2 {
		t.Fatalf("got %d groups, want 2", len(merged))
	}

	g0 := merged[0].Entries
	if len(g0) != 2 {
		t.Fatalf("group 0 has %d entries, want 2", len(g0))
	}
	if g0[0].Binding != 0 || g0[1].Binding != 1 {
		t.Errorf("entries not sorted by binding: %d, %d", g0[0].Binding, g0[1].Binding)
	}
	if g0[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Errorf("shared binding visibility = %v, want vertex|fragment", g0[0].Visibility)
	}
	if merged[1].Entries[0].Visibility != wgpu.ShaderStageFragment {
		t.Errorf("fragment-only group visibility changed")
	}
}
