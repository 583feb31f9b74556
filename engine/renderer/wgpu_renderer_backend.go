package renderer

import (
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// clearColor is the render pass clear value; any pixel the draw misses stays white.
var clearColor = wgpu.Color{R: 1, G: 1, B: 1, A: 1}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	surfaceWidth         int
	surfaceHeight        int
	renderPassDescriptor *wgpu.RenderPassDescriptor
	presentMode          wgpu.PresentMode

	// Frame state for the render pass of the current frame
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Compute frame state; dispatches and copies of one frame share a single submission
	computeFrameEncoder *wgpu.CommandEncoder
}

type wgpuRendererBackend interface {
	// AdapterInfo returns the identity of the adapter the device was created on.
	//
	// Returns:
	//   - wgpu.AdapterInfo: the adapter's name, backend and type
	AdapterInfo() wgpu.AdapterInfo

	// SurfaceFormat returns the texture format the surface was configured with.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// ConfigureSurface configures the surface for the given size using the present mode
	// and the preferred surface format, and rebuilds the cached render pass descriptor.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// BeginComputeFrame creates the command encoder every compute dispatch and buffer copy
	// of the frame is recorded into. Must be paired with EndComputeFrame.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginComputeFrame() error

	// EndComputeFrame finishes the compute encoder and submits it to the queue.
	//
	// Returns:
	//   - error: ErrNoFrame if no compute frame was begun, or the encoder finish error
	EndComputeFrame() error

	// DispatchCompute encodes a compute pass within the current compute frame. Every provider
	// is bound at its own group index.
	//
	// Parameters:
	//   - p: the registered compute Pipeline
	//   - groups: the providers to bind, each at provider.Group()
	//   - workGroupCount: the number of workgroups in the x, y, and z dimensions
	//
	// Returns:
	//   - error: ErrNoFrame if no compute frame was begun
	DispatchCompute(p pipeline.Pipeline, groups []bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// CopyBufferToTexture records a buffer to texture copy on the current compute encoder, so
	// it executes after every dispatch recorded before it.
	//
	// Parameters:
	//   - src: the source buffer, with CopySrc usage
	//   - dst: the destination texture, with CopyDst usage
	//   - bytesPerRow: the padded row pitch of the source, a multiple of 256
	//   - width: the copy width in texels
	//   - height: the copy height in texels
	//
	// Returns:
	//   - error: ErrNoFrame if no compute frame was begun
	CopyBufferToTexture(src *wgpu.Buffer, dst *wgpu.Texture, bytesPerRow, width, height uint32) error

	// RegisterRenderPipeline creates the shader modules, layouts and render pipeline for p.
	//
	// Parameters:
	//   - p: the render pipeline description
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the shader module, layouts and compute pipeline for p.
	//
	// Parameters:
	//   - p: the compute pipeline description
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// InitBindGroup creates the buffers for every buffer entry of the descriptor that the provider
	// does not hold yet, then creates the layout and the bind group. Texture and sampler entries
	// must be staged beforehand with InitTextureView and InitSampler.
	//
	// Parameters:
	//   - provider: the provider receiving the GPU objects
	//   - descriptor: the layout descriptor parsed from the kernel
	//   - bufferUsageOverrides: extra usage flags per binding, OR'd with the binding type's usage
	//   - bufferSizeOverrides: exact buffer sizes per binding, replacing MinBindingSize
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitVertexBuffer creates a vertex buffer holding data and stores it on the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the vertex buffer
	//   - data: the vertex bytes
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error

	// InitTextureView creates a texture and its view and stores both on the provider at bindingKey.
	//
	// Parameters:
	//   - provider: the provider receiving the texture
	//   - bindingKey: the binding index of the texture entry
	//   - stagingData: the texture extent, format and optional initial pixels
	//
	// Returns:
	//   - error: an error if the texture could not be created
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it on the provider at bindingKey.
	//
	// Parameters:
	//   - provider: the provider receiving the sampler
	//   - bindingKey: the binding index of the sampler entry
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if the sampler could not be created
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: the writes to perform, in order
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface image and begins the render pass. When the first
	// acquisition fails the surface is reconfigured and acquisition retried once.
	//
	// Returns:
	//   - error: ErrFrameInProgress, or ErrFrameAcquire after the retry fails
	BeginFrame() error

	// DrawCall encodes one draw within the current render pass.
	//
	// Parameters:
	//   - p: the registered render Pipeline
	//   - vertexBuffers: the buffers bound at vertex slots 0..n-1
	//   - vertexCount: vertices per instance
	//   - instanceCount: the number of instances
	//   - bindGroups: the providers to bind, each at provider.Group()
	//
	// Returns:
	//   - error: ErrNoFrame if no frame was begun
	DrawCall(p pipeline.Pipeline, vertexBuffers []*wgpu.Buffer, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits the command buffer. Present must follow.
	//
	// Returns:
	//   - error: ErrNoFrame if no frame was begun, or the encoder finish error
	EndFrame() error

	// Present presents the acquired surface image and releases it.
	Present()

	// Release frees every GPU object the backend owns.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// backendOptions carries the renderer options the backend needs at creation.
type backendOptions struct {
	forceFallbackAdapter bool
	powerPreference      PowerPreference
	presentMode          PresentMode
}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts backendOptions) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: opts.presentMode.toWGPU(),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:      opts.powerPreference.toWGPU(),
		ForceFallbackAdapter: opts.forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("%w: %v", ErrNoAdapter, err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Tracer Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

// chooseSurfaceFormat prefers an 8-bit non-sRGB format so the gamma applied by the trace
// kernel is not applied a second time on write.
func chooseSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, preferred := range []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8Unorm} {
		if slices.Contains(formats, preferred) {
			return preferred
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8Unorm
	}
	return formats[0]
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configureSurfaceLocked(width, height)
}

func (b *wgpuRendererBackendImpl) configureSurfaceLocked(width, height int) {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = chooseSurfaceFormat(capabilities.Formats)
	b.surfaceWidth, b.surfaceHeight = width, height

	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   alphaMode,
	})

	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil, // set per-frame to the surface view
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearColor,
			},
		},
	}
}

func (b *wgpuRendererBackendImpl) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder != nil {
		return ErrFrameInProgress
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.computeFrameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) EndComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return ErrNoFrame
	}
	defer func() {
		b.computeFrameEncoder.Release()
		b.computeFrameEncoder = nil
	}()

	commandBuffer, err := b.computeFrameEncoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish compute encoder: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) DispatchCompute(
	p pipeline.Pipeline,
	groups []bind_group_provider.BindGroupProvider,
	workGroupCount [3]uint32,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return ErrNoFrame
	}

	computePipeline := p.Pipeline().(*wgpu.ComputePipeline)

	pass := b.computeFrameEncoder.BeginComputePass(nil)
	pass.SetPipeline(computePipeline)
	for _, g := range groups {
		pass.SetBindGroup(uint32(g.Group()), g.BindGroup(), nil)
	}
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
	return nil
}

func (b *wgpuRendererBackendImpl) CopyBufferToTexture(src *wgpu.Buffer, dst *wgpu.Texture, bytesPerRow, width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return ErrNoFrame
	}

	b.computeFrameEncoder.CopyBufferToTexture(
		&wgpu.ImageCopyBuffer{
			Buffer: src,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: height,
			},
		},
		&wgpu.ImageCopyTexture{
			Texture:  dst,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return fmt.Errorf("%s vertex module: %w", p.PipelineKey(), err)
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("%s fragment module: %w", p.PipelineKey(), err)
	}
	defer fs.Release()

	merged := shader.MergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	pipelineLayout, err := b.createPipelineLayout(p.PipelineKey(), merged)
	if err != nil {
		return err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: p.WriteMask(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("%s render pipeline: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}

	computeShader := p.Shader(shader.ShaderTypeCompute)
	s, err := b.device.CreateShaderModule(computeShader.Module())
	if err != nil {
		return fmt.Errorf("%s compute module: %w", p.PipelineKey(), err)
	}
	defer s.Release()

	layout, err := b.createPipelineLayout(p.PipelineKey(), computeShader.BindGroupLayoutDescriptors())
	if err != nil {
		return err
	}

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return fmt.Errorf("%s compute pipeline: %w", p.PipelineKey(), err)
	}

	p.SetComputePipeline(created)
	return nil
}

// createPipelineLayout creates one bind group layout per group index, 0 through the highest
// declared group, and a pipeline layout over them.
func (b *wgpuRendererBackendImpl) createPipelineLayout(label string, descriptors map[int]wgpu.BindGroupLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := 0; g <= maxGroup; g++ {
		desc := descriptors[g]
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("%s bind group layout %d: %w", label, g, err)
		}
		bindGroupLayouts[g] = layout
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline layout: %w", label, err)
	}
	return layout, nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		descriptor.Label = provider.Label() + " Layout"
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return fmt.Errorf("%s layout: %w", provider.Label(), err)
		}
		provider.SetBindGroupLayout(layout)
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, entry := range descriptor.Entries {
		bound, err := b.bindGroupEntryLocked(provider, entry, bufferUsageOverrides, bufferSizeOverrides)
		if err != nil {
			return err
		}
		bindGroupEntries = append(bindGroupEntries, bound)
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return fmt.Errorf("%s bind group: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

// bindGroupEntryLocked resolves one layout entry against the provider. Textures and samplers
// must already be set; a missing buffer is created with the overridden size and usage, or
// the entry's MinBindingSize.
func (b *wgpuRendererBackendImpl) bindGroupEntryLocked(
	provider bind_group_provider.BindGroupProvider,
	entry wgpu.BindGroupLayoutEntry,
	usages map[int]wgpu.BufferUsage,
	sizes map[int]uint64,
) (wgpu.BindGroupEntry, error) {
	binding := int(entry.Binding)
	unbound := fmt.Errorf("%s binding %d: %w", provider.Label(), binding, ErrUnboundResource)

	if entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined {
		view := provider.TextureView(binding)
		if view == nil {
			return wgpu.BindGroupEntry{}, unbound
		}
		return wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: view}, nil
	}
	if entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined {
		sampler := provider.Sampler(binding)
		if sampler == nil {
			return wgpu.BindGroupEntry{}, unbound
		}
		return wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: sampler}, nil
	}

	buf := provider.Buffer(binding)
	if buf == nil {
		size, ok := sizes[binding]
		if !ok {
			size = entry.Buffer.MinBindingSize
		}
		var err error
		buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
			Size:  size,
			Usage: bufferUsage(entry.Buffer.Type, usages[binding]),
		})
		if err != nil {
			return wgpu.BindGroupEntry{}, fmt.Errorf("%s buffer %d: %w", provider.Label(), binding, err)
		}
		provider.SetBuffer(binding, buf)
	}
	return wgpu.BindGroupEntry{Binding: entry.Binding, Buffer: buf, Size: wgpu.WholeSize}, nil
}

// bufferUsage maps a binding type to the buffer usage it needs, plus any extra flags.
func bufferUsage(bindingType wgpu.BufferBindingType, extra wgpu.BufferUsage) wgpu.BufferUsage {
	var usage wgpu.BufferUsage
	switch bindingType {
	case wgpu.BufferBindingTypeUniform:
		usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
		usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	}
	return usage | extra
}

func (b *wgpuRendererBackendImpl) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Vertex Buffer",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%s vertex buffer: %w", provider.Label(), err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	provider.SetVertexBuffer(buf)
	return nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	extent := wgpu.Extent3D{
		Width:              stagingData.Width,
		Height:             stagingData.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label() + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | stagingData.Usage,
		Dimension:     wgpu.TextureDimension2D,
		Size:          extent,
		Format:        common.Coalesce(stagingData.Format, wgpu.TextureFormatRGBA8Unorm),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("%s texture: %w", provider.Label(), err)
	}

	if len(stagingData.Pixels) > 0 {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			stagingData.Pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  stagingData.Width * 4,
				RowsPerImage: stagingData.Height,
			},
			&extent,
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("%s texture view: %w", provider.Label(), err)
	}
	provider.SetTexture(bindingKey, tex)
	provider.SetTextureView(bindingKey, view)

	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     samplerStagingData.MagFilter,
		MinFilter:     samplerStagingData.MinFilter,
		MipmapFilter:  samplerStagingData.MipmapFilter,
		LodMinClamp:   samplerStagingData.LodMinClamp,
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
	})
	if err != nil {
		return fmt.Errorf("%s sampler: %w", provider.Label(), err)
	}
	provider.SetSampler(bindingKey, samp)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return ErrFrameInProgress
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// outdated or lost surfaces recover after a reconfigure
		b.configureSurfaceLocked(b.surfaceWidth, b.surfaceHeight)
		surfaceTexture, err = b.surface.GetCurrentTexture()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFrameAcquire, err)
		}
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	vertexBuffers []*wgpu.Buffer,
	vertexCount, instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}

	renderPipeline := p.Pipeline().(*wgpu.RenderPipeline)
	b.framePass.SetPipeline(renderPipeline)

	for _, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(bg.Group()), bg.BindGroup(), nil)
	}
	for slot, buf := range vertexBuffers {
		b.framePass.SetVertexBuffer(uint32(slot), buf, 0, wgpu.WholeSize)
	}
	b.framePass.Draw(vertexCount, instanceCount, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}

	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurfaceLocked()
		return fmt.Errorf("finish render encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()
	b.releaseFrameSurfaceLocked()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurfaceLocked() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameSurfaceLocked()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *wgpuRendererBackendImpl) AdapterInfo() wgpu.AdapterInfo {
	return b.adapter.GetInfo()
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}
