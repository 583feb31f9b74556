package orchestrator

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
)

// PresentKey returns the key of the render pipeline that presents results for the strategy.
func PresentKey(strategy transfer.Strategy) string {
	if strategy == transfer.TextureBlit {
		return shader.KeyPresentBlit
	}
	return shader.KeyPresentDirect
}

// Pipelines describes the two pipelines a frame runs: the trace compute pipeline and the
// present render pipeline of the strategy.
//
// Parameters:
//   - kernels: the parsed kernels
//   - strategy: the transfer strategy
//
// Returns:
//   - []pipeline.Pipeline: compute first, then render
func Pipelines(kernels *shader.Kernels, strategy transfer.Strategy) []pipeline.Pipeline {
	vs, fs := kernels.DirectVertex, kernels.DirectFragment
	if strategy == transfer.TextureBlit {
		vs, fs = kernels.BlitVertex, kernels.BlitFragment
	}
	return []pipeline.Pipeline{
		pipeline.NewPipeline(shader.KeyTrace, pipeline.PipelineTypeCompute,
			pipeline.WithComputeShader(kernels.Trace),
		),
		pipeline.NewPipeline(PresentKey(strategy), pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(vs),
			pipeline.WithFragmentShader(fs),
		),
	}
}
