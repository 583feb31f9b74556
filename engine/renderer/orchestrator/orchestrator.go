// Package orchestrator sequences one frame of the tracer: the compute dispatch, the result
// transfer of the chosen strategy and the present pass.
package orchestrator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/Carmen-Shannon/oxy-trace/log"
	"github.com/cogentcore/webgpu/wgpu"
)

var logger = log.New("orchestrator")

// ErrMissingResource is returned when a frame runs before the resources it binds were built.
var ErrMissingResource = errors.New("orchestrator: resource not built")

// GPU is the subset of the renderer a frame is encoded through.
type GPU interface {
	BeginComputeFrame() error
	DispatchCompute(pipelineKey string, groups []bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error
	CopyBufferToTexture(src *wgpu.Buffer, dst *wgpu.Texture, bytesPerRow, width, height uint32) error
	EndComputeFrame() error
	BeginFrame() error
	DrawCall(pipelineKey string, vertexBuffers []*wgpu.Buffer, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
	EndFrame() error
	Present()
}

// Resources is the subset of the resource binder a frame reads.
type Resources interface {
	IOGroup() bind_group_provider.BindGroupProvider
	SceneGroup() bind_group_provider.BindGroupProvider
	PresentationGroup() bind_group_provider.BindGroupProvider
	PixelBuffer() *wgpu.Buffer
	ResultBuffer() *wgpu.Buffer
	FrameTexture() *wgpu.Texture
}

// Stats describes the most recent frame.
type Stats struct {
	Strategy     transfer.Strategy
	Dispatch     [3]uint32
	VertexCount  uint32
	Instances    uint32
	ComputeTime  time.Duration
	PresentTime  time.Duration
	Frames       uint64
	Dropped      uint64 // surface acquisition failed
	Failed       uint64 // any other frame error
	LastFrameErr error
}

// Orchestrator runs frames for one fixed strategy and frame size.
type Orchestrator interface {
	// Frame encodes and submits the compute pass, the transfer and the present pass, then
	// presents. A failed surface acquisition drops the frame and returns the error.
	//
	// Returns:
	//   - error: renderer.ErrFrameAcquire for a dropped frame, or an encoding error
	Frame() error

	// Stats returns the statistics of the most recent frame.
	Stats() Stats

	// Strategy returns the transfer strategy chosen at construction.
	Strategy() transfer.Strategy
}

type orchestrator struct {
	mu         *sync.Mutex
	gpu        GPU
	resources  Resources
	settings   render_config.Settings
	dispatch   [3]uint32
	presentKey string
	stats      Stats
}

var _ Orchestrator = &orchestrator{}

// NewOrchestrator creates an Orchestrator. The dispatch size is fixed here from the frame
// size and the kernel's workgroup size; settings must already pass Settings.Validate.
//
// Parameters:
//   - gpu: the renderer
//   - resources: the built resource binder
//   - settings: the frame size and transfer strategy
//   - threadsPerGroup: the x dimension of the trace kernel's @workgroup_size
//
// Returns:
//   - Orchestrator: the orchestrator
func NewOrchestrator(gpu GPU, resources Resources, settings render_config.Settings, threadsPerGroup uint32) Orchestrator {
	o := &orchestrator{
		mu:         &sync.Mutex{},
		gpu:        gpu,
		resources:  resources,
		settings:   settings,
		dispatch:   [3]uint32{WorkgroupCount(uint32(settings.PixelCount()), threadsPerGroup), 1, 1},
		presentKey: PresentKey(settings.Strategy),
	}
	o.stats.Strategy = settings.Strategy
	o.stats.Dispatch = o.dispatch
	logger.Debugf("%s: dispatch %v for %dx%d", settings.Strategy, o.dispatch, settings.Width, settings.Height)
	return o
}

func (o *orchestrator) Strategy() transfer.Strategy {
	return o.settings.Strategy
}

func (o *orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

func (o *orchestrator) Frame() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	err := o.frame()
	o.stats.LastFrameErr = err
	if err != nil {
		if errors.Is(err, renderer.ErrFrameAcquire) {
			o.stats.Dropped++
		} else {
			o.stats.Failed++
		}
		return err
	}
	o.stats.Frames++
	return nil
}

func (o *orchestrator) frame() error {
	io, sceneGroup := o.resources.IOGroup(), o.resources.SceneGroup()
	if io == nil || sceneGroup == nil || o.resources.PresentationGroup() == nil {
		return ErrMissingResource
	}

	start := time.Now()
	if err := o.compute(io, sceneGroup); err != nil {
		return err
	}
	o.stats.ComputeTime = time.Since(start)

	start = time.Now()
	if err := o.gpu.BeginFrame(); err != nil {
		return err
	}
	drawErr := o.draw()
	// the pass is ended and the image presented even when the draw failed, so the
	// surface image is returned to the swapchain
	endErr := o.gpu.EndFrame()
	o.gpu.Present()
	o.stats.PresentTime = time.Since(start)

	return errors.Join(drawErr, endErr)
}

func (o *orchestrator) compute(io, sceneGroup bind_group_provider.BindGroupProvider) error {
	if err := o.gpu.BeginComputeFrame(); err != nil {
		return fmt.Errorf("begin compute frame: %w", err)
	}

	err := o.gpu.DispatchCompute(shader.KeyTrace, []bind_group_provider.BindGroupProvider{io, sceneGroup}, o.dispatch)
	if err == nil && o.settings.Strategy == transfer.TextureBlit {
		err = o.copyResult()
	}
	// always close the encoder; its submission orders the copy before the present pass
	if endErr := o.gpu.EndComputeFrame(); err == nil {
		err = endErr
	}
	return err
}

func (o *orchestrator) copyResult() error {
	src, dst := o.resources.ResultBuffer(), o.resources.FrameTexture()
	if src == nil || dst == nil {
		return ErrMissingResource
	}
	w, h := o.settings.Width, o.settings.Height
	return o.gpu.CopyBufferToTexture(src, dst, o.settings.Strategy.RowPitch(w), w, h)
}

func (o *orchestrator) draw() error {
	presentation := o.resources.PresentationGroup()
	groups := []bind_group_provider.BindGroupProvider{presentation}

	var (
		buffers                []*wgpu.Buffer
		vertexCount, instances uint32
	)
	switch o.settings.Strategy {
	case transfer.TextureBlit:
		buffers = []*wgpu.Buffer{presentation.VertexBuffer()}
		vertexCount, instances = transfer.BlitVertexCount, 1
	default:
		// slot 0 steps per vertex, slots 1 and 2 per pixel instance
		buffers = []*wgpu.Buffer{
			presentation.VertexBuffer(),
			o.resources.PixelBuffer(),
			o.resources.ResultBuffer(),
		}
		vertexCount, instances = transfer.QuadVertexCount, uint32(o.settings.PixelCount())
	}
	for _, b := range buffers {
		if b == nil {
			return ErrMissingResource
		}
	}

	o.stats.VertexCount, o.stats.Instances = vertexCount, instances
	return o.gpu.DrawCall(o.presentKey, buffers, vertexCount, instances, groups)
}
