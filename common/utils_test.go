package common

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 3, 4); got != 3 {
		t.Errorf("Coalesce ints = %d, want 3", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("Coalesce empty strings = %q", got)
	}
	if got := Coalesce(wgpu.FilterMode(0), wgpu.FilterModeLinear); got != wgpu.FilterModeLinear {
		t.Errorf("Coalesce filter = %v", got)
	}
}
