package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestPipelineValidate(t *testing.T) {
	k, err := shader.LoadKernels(1, 5, 1)
	if err != nil {
		t.Fatalf("LoadKernels: %v", err)
	}

	tests := []struct {
		name    string
		p       Pipeline
		wantErr bool
	}{
		{"compute", NewPipeline("trace", PipelineTypeCompute, WithComputeShader(k.Trace)), false},
		{"compute without shader", NewPipeline("trace", PipelineTypeCompute), true},
		{"render", NewPipeline("blit", PipelineTypeRender, WithVertexShader(k.BlitVertex), WithFragmentShader(k.BlitFragment)), false},
		{"render without fragment", NewPipeline("blit", PipelineTypeRender, WithVertexShader(k.BlitVertex)), true},
		{"render without vertex", NewPipeline("blit", PipelineTypeRender, WithFragmentShader(k.BlitFragment)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMissingStage) {
				t.Errorf("err = %v, want ErrMissingStage", err)
			}
		})
	}
}

func TestPipelineDefaults(t *testing.T) {
	p := NewPipeline("direct", PipelineTypeRender, WithCullMode(wgpu.CullModeBack))
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.FrontFace() != wgpu.FrontFaceCCW {
		t.Errorf("topology/front face = %v/%v", p.Topology(), p.FrontFace())
	}
	if p.CullMode() != wgpu.CullModeBack || p.WriteMask() != wgpu.ColorWriteMaskAll {
		t.Errorf("cull/write mask = %v/%v", p.CullMode(), p.WriteMask())
	}
	if p.Shader(shader.ShaderTypeCompute) != nil {
		t.Error("unexpected compute shader")
	}
}
