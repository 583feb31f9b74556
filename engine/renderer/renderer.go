package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	options backendOptions
}

// SurfaceSource is anything that can hand out a platform surface descriptor and its pixel size,
// typically the application window.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the GPU device and surface, a cache of registered pipelines keyed by
// PipelineKey, and the per-frame encoders. Compute work and the buffer to texture copy of a frame
// are recorded between BeginComputeFrame and EndComputeFrame; drawing happens between BeginFrame
// and EndFrame, followed by Present.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the corresponding GPU
	// pipeline objects (render or compute) via the backend, then caching them by PipelineKey.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface for a new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// AdapterInfo returns the identity of the adapter in use.
	AdapterInfo() wgpu.AdapterInfo

	// InitBindGroup creates GPU buffers and a bind group from a layout descriptor and stores them
	// on the given BindGroupProvider. Textures and samplers must be initialized via InitTextureView
	// and InitSampler before calling this method.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags keyed by binding index (nil safe)
	//   - bufferSizeOverrides: exact buffer sizes keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitVertexBuffer uploads vertex data into a new vertex buffer held by the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffer on
	//   - data: the vertex bytes
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error

	// InitTextureView creates a GPU texture from staging data and stores it with its view
	// on the given BindGroupProvider at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the dimensions and optional pixels for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler and stores it on the given BindGroupProvider
	// at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginComputeFrame creates the command encoder for the frame's compute work.
	BeginComputeFrame() error

	// EndComputeFrame submits the frame's compute work.
	EndComputeFrame() error

	// DispatchCompute looks up the cached compute Pipeline by key and encodes a dispatch.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered compute Pipeline
	//   - groups: the providers to bind, each at its own group index
	//   - workGroupCount: the number of workgroups to dispatch in the x, y, and z dimensions
	//
	// Returns:
	//   - error: ErrPipelineNotFound, or ErrNoFrame outside a compute frame
	DispatchCompute(pipelineKey string, groups []bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// CopyBufferToTexture records a padded buffer to texture copy after the frame's dispatches.
	CopyBufferToTexture(src *wgpu.Buffer, dst *wgpu.Texture, bytesPerRow, width, height uint32) error

	// BeginFrame acquires the surface image and begins the render pass.
	BeginFrame() error

	// DrawCall looks up the cached render Pipeline by key and encodes one draw.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered render Pipeline
	//   - vertexBuffers: the buffers bound at vertex slots in order
	//   - vertexCount: vertices per instance
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: the providers to bind, each at its own group index
	//
	// Returns:
	//   - error: ErrPipelineNotFound, or ErrNoFrame outside a frame
	DrawCall(pipelineKey string, vertexBuffers []*wgpu.Buffer, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits it. Present must follow.
	EndFrame() error

	// Present displays the frame and releases the surface image.
	Present()

	// Release frees the cached pipelines and the GPU device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the surface of the given source.
//
// Parameters:
//   - surface: the window or other source of the platform surface
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
//   - error: ErrNoAdapter or ErrNoDevice when no usable GPU is found
func NewRenderer(surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   BackendTypeWGPU,
	}

	// options first so the adapter request sees them
	for _, opt := range options {
		opt(r)
	}

	switch r.backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.options)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	}

	r.backend.ConfigureSurface(surface.Width(), surface.Height())
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) AdapterInfo() wgpu.AdapterInfo {
	return r.backend.AdapterInfo()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return err
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return err
			}
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) lookup(key string) (pipeline.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, exists := r.pipelineCache[key]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrPipelineNotFound, key)
	}
	return p, nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error {
	return r.backend.InitVertexBuffer(provider, data)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginComputeFrame() error {
	return r.backend.BeginComputeFrame()
}

func (r *renderer) EndComputeFrame() error {
	return r.backend.EndComputeFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, groups []bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	return r.backend.DispatchCompute(p, groups, workGroupCount)
}

func (r *renderer) CopyBufferToTexture(src *wgpu.Buffer, dst *wgpu.Texture, bytesPerRow, width, height uint32) error {
	return r.backend.CopyBufferToTexture(src, dst, bytesPerRow, width, height)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, vertexBuffers []*wgpu.Buffer, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	return r.backend.DrawCall(p, vertexBuffers, vertexCount, instanceCount, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
