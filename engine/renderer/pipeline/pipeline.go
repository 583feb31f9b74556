package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType distinguishes compute pipelines from render pipelines.
type PipelineType int

const (
	// PipelineTypeCompute is a single compute stage.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender is a vertex and fragment stage pair drawing into the surface.
	PipelineTypeRender
)

var (
	// ErrMissingStage is returned when a pipeline lacks a shader stage its type requires.
	ErrMissingStage = errors.New("pipeline: missing shader stage")
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	vertexShader, fragmentShader, computeShader shader.Shader

	// GPU objects, set by the renderer on registration.
	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	cullMode  wgpu.CullMode
	topology  wgpu.PrimitiveTopology
	frontFace wgpu.FrontFace
	writeMask wgpu.ColorWriteMask
}

// Pipeline describes a compute or render pipeline and holds its GPU object once registered.
type Pipeline interface {
	// Type returns whether this is a compute or render pipeline.
	//
	// Returns:
	//   - PipelineType: PipelineTypeCompute or PipelineTypeRender
	Type() PipelineType

	// PipelineKey returns the unique key the renderer caches this pipeline under.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the shader attached for a stage, or nil if none is attached.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the stage's shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Pipeline returns the registered GPU pipeline as *wgpu.RenderPipeline or *wgpu.ComputePipeline.
	//
	// Returns:
	//   - any: the GPU pipeline, nil before registration
	Pipeline() any

	// Validate checks that every stage the pipeline type needs is attached.
	//
	// Returns:
	//   - error: ErrMissingStage wrapped with the missing stage, or nil
	Validate() error

	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask

	// SetRenderPipeline stores the GPU render pipeline after creation.
	//
	// Parameters:
	//   - p: the created render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline stores the GPU compute pipeline after creation.
	//
	// Parameters:
	//   - p: the created compute pipeline
	SetComputePipeline(p *wgpu.ComputePipeline)

	// Release frees the GPU pipeline, if one was registered.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline with the given key and type. Render pipelines default to a
// triangle list with no culling, counter-clockwise front faces and all color channels written.
//
// Parameters:
//   - pipelineKey: the unique key for the pipeline
//   - pipelineType: compute or render
//   - opts: functional options attaching shaders and primitive state
//
// Returns:
//   - Pipeline: the configured pipeline description
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
		cullMode:     wgpu.CullModeNone,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
		writeMask:    wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		return p.renderPipeline
	case PipelineTypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) Validate() error {
	switch p.pipelineType {
	case PipelineTypeCompute:
		if p.computeShader == nil {
			return fmt.Errorf("%s: %w: compute", p.pipelineKey, ErrMissingStage)
		}
	case PipelineTypeRender:
		if p.vertexShader == nil {
			return fmt.Errorf("%s: %w: vertex", p.pipelineKey, ErrMissingStage)
		}
		if p.fragmentShader == nil {
			return fmt.Errorf("%s: %w: fragment", p.pipelineKey, ErrMissingStage)
		}
	}
	return nil
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
}
