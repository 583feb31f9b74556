// Package resource_binder allocates and uploads every GPU resource the tracer binds: the
// compute I/O group, the scene group and the presentation resources of either transfer strategy.
// Layouts are taken from the parsed kernels and cross-checked against host-side plans before
// any GPU object is created.
package resource_binder

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/Carmen-Shannon/oxy-trace/log"
	"github.com/cogentcore/webgpu/wgpu"
)

var logger = log.New("resource_binder")

// Backend is the subset of the renderer the binder allocates through.
type Backend interface {
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
}

// Binder owns the bind group providers of the tracer.
//
// The I/O group is built once per frame size. The scene group can be rebuilt without touching
// the I/O group. Presentation resources depend on the transfer strategy.
type Binder interface {
	// BuildIO allocates group 0 and uploads the pixel table.
	//
	// Parameters:
	//   - settings: the frame size and transfer strategy
	//
	// Returns:
	//   - error: a layout or allocation error
	BuildIO(settings render_config.Settings) error

	// BuildScene validates the config against the scene, allocates and uploads a new scene
	// group and then releases the previous one. On failure the previous group stays bound.
	//
	// Parameters:
	//   - s: the scene to upload
	//   - cfg: the config packed for s
	//
	// Returns:
	//   - error: render_config.ErrCountMismatch, a layout error, or an allocation error
	BuildScene(s scene.Scene, cfg render_config.GPUConfig) error

	// BuildPresentation allocates the resources the present pass of the strategy reads:
	// the cell uniform and quad corners for DirectPull, the frame texture, sampler and
	// full-screen triangle for TextureBlit.
	//
	// Parameters:
	//   - settings: the frame size and transfer strategy
	//
	// Returns:
	//   - error: a layout or allocation error
	BuildPresentation(settings render_config.Settings) error

	// IOGroup returns the group 0 provider, or nil before BuildIO.
	IOGroup() bind_group_provider.BindGroupProvider

	// SceneGroup returns the group 1 provider, or nil before BuildScene.
	SceneGroup() bind_group_provider.BindGroupProvider

	// PresentationGroup returns the present pass provider, or nil before BuildPresentation.
	PresentationGroup() bind_group_provider.BindGroupProvider

	// PixelBuffer returns the pixel table buffer.
	PixelBuffer() *wgpu.Buffer

	// ResultBuffer returns the buffer the kernel writes colors into.
	ResultBuffer() *wgpu.Buffer

	// FrameTexture returns the TextureBlit frame texture, or nil for DirectPull.
	FrameTexture() *wgpu.Texture

	// Release frees every provider.
	Release()
}

type binder struct {
	mu      *sync.Mutex
	backend Backend
	kernels *shader.Kernels
	workers int

	io           bind_group_provider.BindGroupProvider
	ioBindings   ioBindings
	sceneGroup   bind_group_provider.BindGroupProvider
	presentation bind_group_provider.BindGroupProvider
	frameBinding int
}

var _ Binder = &binder{}

// NewBinder creates a Binder allocating through backend with layouts taken from kernels.
//
// Parameters:
//   - backend: the GPU allocator, normally the renderer
//   - kernels: the parsed kernels
//   - options: functional options
//
// Returns:
//   - Binder: the binder, with no groups built yet
func NewBinder(backend Backend, kernels *shader.Kernels, options ...BinderBuilderOption) Binder {
	b := &binder{
		mu:      &sync.Mutex{},
		backend: backend,
		kernels: kernels,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *binder) BuildIO(settings render_config.Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	table := PixelTable(settings.Width, settings.Height, b.workers)
	plan, err := PlanIO(settings, EncodePixelTable(table), b.kernels.Trace)
	if err != nil {
		return err
	}
	if err := CheckIOPlan(plan, settings, b.kernels.Trace); err != nil {
		return err
	}

	provider := bind_group_provider.NewBindGroupProvider("Trace IO", bind_group_provider.WithGroup(GroupIO))
	if err := b.realize(provider, b.kernels.Trace.BindGroupLayoutDescriptor(GroupIO), plan); err != nil {
		provider.Release()
		return err
	}

	if b.io != nil {
		b.io.Release()
	}
	b.io = provider
	pixels, _ := plan.Binding(string(shader.AnnotationArgPixels))
	result, _ := plan.Binding(string(shader.AnnotationArgResult))
	b.ioBindings = ioBindings{pixels: pixels.Binding, result: result.Binding}

	logger.Debugf("group 0: %d pixels, result %d bytes (%s)", len(table), result.Size, settings.Strategy)
	return nil
}

func (b *binder) BuildScene(s scene.Scene, cfg render_config.GPUConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := cfg.Validate(s); err != nil {
		return err
	}
	plan, err := PlanScene(s, cfg, b.kernels.Trace)
	if err != nil {
		return err
	}
	if err := CheckPlan(plan, b.kernels.Trace); err != nil {
		return err
	}

	provider := bind_group_provider.NewBindGroupProvider("Trace Scene", bind_group_provider.WithGroup(GroupScene))
	if err := b.realize(provider, b.kernels.Trace.BindGroupLayoutDescriptor(GroupScene), plan); err != nil {
		provider.Release()
		return err
	}

	// only the scene group is replaced; group 0 keeps its buffers and bind group
	if b.sceneGroup != nil {
		b.sceneGroup.Release()
	}
	b.sceneGroup = provider

	spheres, panels, lights := s.Counts()
	logger.Debugf("group 1: %d spheres, %d panels, %d lights", spheres, panels, lights)
	return nil
}

func (b *binder) BuildPresentation(settings render_config.Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		provider bind_group_provider.BindGroupProvider
		err      error
	)
	switch settings.Strategy {
	case transfer.TextureBlit:
		provider, err = b.buildBlit(settings)
	default:
		provider, err = b.buildDirect(settings)
	}
	if err != nil {
		return err
	}

	if b.presentation != nil {
		b.presentation.Release()
	}
	b.presentation = provider
	return nil
}

func (b *binder) buildDirect(settings render_config.Settings) (bind_group_provider.BindGroupProvider, error) {
	vs, fs := b.kernels.DirectVertex, b.kernels.DirectFragment
	bindings, err := varBindings(vs, 0, "cell")
	if err != nil {
		return nil, err
	}

	cell := transfer.NewCell(settings.Width, settings.Height)
	plan := Plan{{
		Name:    "cell",
		Group:   0,
		Binding: bindings["cell"],
		Size:    transfer.CellSize,
		Usage:   wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Data:    cell.Marshal(),
	}}
	if err := CheckPlan(plan, vs); err != nil {
		return nil, err
	}

	provider := bind_group_provider.NewBindGroupProvider("Present Direct", bind_group_provider.WithGroup(0))
	layout := shader.MergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())[0]
	if err := b.realize(provider, layout, plan); err != nil {
		provider.Release()
		return nil, err
	}
	if err := b.backend.InitVertexBuffer(provider, transfer.QuadCorners(cell)); err != nil {
		provider.Release()
		return nil, err
	}
	return provider, nil
}

func (b *binder) buildBlit(settings render_config.Settings) (bind_group_provider.BindGroupProvider, error) {
	vs, fs := b.kernels.BlitVertex, b.kernels.BlitFragment
	textureBinding, err := roleBinding(fs, 0, shader.AnnotationArgFrameTexture)
	if err != nil {
		return nil, err
	}
	samplerBinding, err := roleBinding(fs, 0, shader.AnnotationArgFrameSampler)
	if err != nil {
		return nil, err
	}

	provider := bind_group_provider.NewBindGroupProvider("Present Blit", bind_group_provider.WithGroup(0))
	steps := []func() error{
		func() error {
			return b.backend.InitTextureView(provider, textureBinding, common.TextureStagingData{
				Width:  settings.Width,
				Height: settings.Height,
				Format: wgpu.TextureFormatRGBA8Unorm,
			})
		},
		func() error {
			return b.backend.InitSampler(provider, samplerBinding, common.NearestClampSampler())
		},
		func() error {
			layout := shader.MergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())[0]
			return b.backend.InitBindGroup(provider, layout, nil, nil)
		},
		func() error {
			return b.backend.InitVertexBuffer(provider, transfer.BlitTriangle())
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			provider.Release()
			return nil, err
		}
	}
	b.frameBinding = textureBinding
	return provider, nil
}

// realize allocates the plan's buffers and bind group on the provider and uploads the planned data.
func (b *binder) realize(provider bind_group_provider.BindGroupProvider, layout wgpu.BindGroupLayoutDescriptor, plan Plan) error {
	if err := b.backend.InitBindGroup(provider, layout, plan.Usages(), plan.Sizes()); err != nil {
		return fmt.Errorf("%s: %w", provider.Label(), err)
	}

	writes := make([]bind_group_provider.BufferWrite, 0, len(plan))
	for _, entry := range plan {
		if len(entry.Data) == 0 {
			continue
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  entry.Binding,
			Data:     entry.Data,
		})
	}
	b.backend.WriteBuffers(writes)
	logger.Debugf("%s: uploaded %d bytes", provider.Label(), bind_group_provider.Bytes(writes))
	return nil
}

func (b *binder) IOGroup() bind_group_provider.BindGroupProvider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.io
}

func (b *binder) SceneGroup() bind_group_provider.BindGroupProvider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sceneGroup
}

func (b *binder) PresentationGroup() bind_group_provider.BindGroupProvider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presentation
}

func (b *binder) PixelBuffer() *wgpu.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.io == nil {
		return nil
	}
	return b.io.Buffer(b.ioBindings.pixels)
}

func (b *binder) ResultBuffer() *wgpu.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.io == nil {
		return nil
	}
	return b.io.Buffer(b.ioBindings.result)
}

func (b *binder) FrameTexture() *wgpu.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.presentation == nil {
		return nil
	}
	return b.presentation.Texture(b.frameBinding)
}

func (b *binder) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range []bind_group_provider.BindGroupProvider{b.presentation, b.sceneGroup, b.io} {
		if p != nil {
			p.Release()
		}
	}
	b.presentation, b.sceneGroup, b.io = nil, nil, nil
}
