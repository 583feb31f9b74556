package resource_binder

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_config"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/transfer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

type call struct {
	op      string
	label   string
	binding int
	sizes   map[int]uint64
	bytes   int
}

// recordingBackend records every allocation and write without touching a GPU.
type recordingBackend struct {
	calls []call
	fail  string
}

func (r *recordingBackend) InitBindGroup(p bind_group_provider.BindGroupProvider, d wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, sizes map[int]uint64) error {
	r.calls = append(r.calls, call{op: "bind_group", label: p.Label(), sizes: sizes})
	if r.fail == "bind_group" {
		return errors.New("device lost")
	}
	return nil
}

func (r *recordingBackend) InitVertexBuffer(p bind_group_provider.BindGroupProvider, data []byte) error {
	r.calls = append(r.calls, call{op: "vertex", label: p.Label(), bytes: len(data)})
	return nil
}

func (r *recordingBackend) InitTextureView(p bind_group_provider.BindGroupProvider, binding int, s common.TextureStagingData) error {
	r.calls = append(r.calls, call{op: "texture", label: p.Label(), binding: binding, bytes: int(s.Width * s.Height * 4)})
	return nil
}

func (r *recordingBackend) InitSampler(p bind_group_provider.BindGroupProvider, binding int, _ common.SamplerStagingData) error {
	r.calls = append(r.calls, call{op: "sampler", label: p.Label(), binding: binding})
	return nil
}

func (r *recordingBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		r.calls = append(r.calls, call{op: "write", label: w.Provider.Label(), binding: w.Binding, bytes: len(w.Data)})
	}
}

func (r *recordingBackend) touching(label string) int {
	n := 0
	for _, c := range r.calls {
		if c.label == label {
			n++
		}
	}
	return n
}

func TestBuildSceneLeavesIOUntouched(t *testing.T) {
	backend := &recordingBackend{}
	b := NewBinder(backend, cornellKernels(t), WithWorkers(2))
	settings := render_config.NewSettings()
	s := scene.CornellBox()
	cfg := render_config.PackScene(settings, s)

	if err := b.BuildIO(settings); err != nil {
		t.Fatalf("BuildIO: %v", err)
	}
	if err := b.BuildScene(s, cfg); err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	io := b.IOGroup()
	ioCalls := backend.touching(io.Label())
	firstScene := b.SceneGroup()

	if err := b.BuildScene(s, cfg); err != nil {
		t.Fatalf("second BuildScene: %v", err)
	}
	if b.IOGroup() != io {
		t.Error("rebuilding the scene replaced the I/O group")
	}
	if got := backend.touching(io.Label()); got != ioCalls {
		t.Errorf("I/O group saw %d calls after scene rebuild, want %d", got, ioCalls)
	}
	if b.SceneGroup() == firstScene {
		t.Error("scene group was not replaced")
	}
	if b.SceneGroup().Group() != GroupScene || io.Group() != GroupIO {
		t.Errorf("group indices = %d, %d", io.Group(), b.SceneGroup().Group())
	}
}

func TestBuildIOUploadsPixelTable(t *testing.T) {
	backend := &recordingBackend{}
	b := NewBinder(backend, cornellKernels(t))
	settings := render_config.NewSettings(render_config.WithSize(40, 30), render_config.WithStrategy(transfer.TextureBlit))

	if err := b.BuildIO(settings); err != nil {
		t.Fatalf("BuildIO: %v", err)
	}
	var writes []call
	var sizes map[int]uint64
	for _, c := range backend.calls {
		switch c.op {
		case "write":
			writes = append(writes, c)
		case "bind_group":
			sizes = c.sizes
		}
	}
	if len(writes) != 1 || writes[0].binding != 0 || writes[0].bytes != 40*30*8 {
		t.Fatalf("writes = %+v, want one pixel table write of %d bytes", writes, 40*30*8)
	}
	if sizes[1] != uint64(transfer.TextureBlit.RowPitch(40))*30 {
		t.Errorf("result buffer size = %d, want %d", sizes[1], transfer.TextureBlit.RowPitch(40)*30)
	}
}

func TestBuildSceneRejectsCountMismatch(t *testing.T) {
	backend := &recordingBackend{}
	b := NewBinder(backend, cornellKernels(t))
	s := scene.CornellBox()
	cfg := render_config.PackScene(render_config.NewSettings(), s)
	cfg.PanelCount = 4

	if err := b.BuildScene(s, cfg); !errors.Is(err, render_config.ErrCountMismatch) {
		t.Fatalf("BuildScene = %v, want ErrCountMismatch", err)
	}
	if len(backend.calls) != 0 {
		t.Errorf("backend saw %d calls before validation failed", len(backend.calls))
	}
	if b.SceneGroup() != nil {
		t.Error("scene group set after failed build")
	}
}

func TestBuildSceneBackendFailure(t *testing.T) {
	backend := &recordingBackend{fail: "bind_group"}
	b := NewBinder(backend, cornellKernels(t))
	s := scene.CornellBox()

	if err := b.BuildScene(s, render_config.PackScene(render_config.NewSettings(), s)); err == nil {
		t.Fatal("expected error from failing backend")
	}
	if b.SceneGroup() != nil {
		t.Error("scene group set after failed build")
	}
}

func TestBuildSceneFailureKeepsPreviousGroup(t *testing.T) {
	backend := &recordingBackend{}
	b := NewBinder(backend, cornellKernels(t))
	s := scene.CornellBox()
	cfg := render_config.PackScene(render_config.NewSettings(), s)

	if err := b.BuildScene(s, cfg); err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	previous := b.SceneGroup()

	backend.fail = "bind_group"
	if err := b.BuildScene(s, cfg); err == nil {
		t.Fatal("expected error from failing backend")
	}
	if b.SceneGroup() != previous {
		t.Error("failed rebuild replaced the bound scene group")
	}
}

func TestBuildIOUsesSpecializedLayout(t *testing.T) {
	k := cornellKernels(t)
	settings := render_config.NewSettings()
	if err := SpecializeIO(settings, k.Trace); err != nil {
		t.Fatalf("SpecializeIO: %v", err)
	}

	backend := &recordingBackend{}
	b := NewBinder(backend, k)
	if err := b.BuildIO(settings); err != nil {
		t.Fatalf("BuildIO: %v", err)
	}
	entries := k.Trace.BindGroupLayoutDescriptor(GroupIO).Entries
	if entries[0].Buffer.MinBindingSize != 600*600*8 || entries[1].Buffer.MinBindingSize != 600*600*12 {
		t.Errorf("layout sizes = %d, %d", entries[0].Buffer.MinBindingSize, entries[1].Buffer.MinBindingSize)
	}

	// a different frame size no longer matches the layout the pipeline was built with
	resized := render_config.NewSettings(render_config.WithSize(300, 300))
	if err := b.BuildIO(resized); !errors.Is(err, ErrBindingTooLarge) {
		t.Errorf("BuildIO(300x300) = %v, want ErrBindingTooLarge", err)
	}
	larger := render_config.NewSettings(render_config.WithSize(800, 600))
	if err := b.BuildIO(larger); !errors.Is(err, ErrLayoutMismatch) {
		t.Errorf("BuildIO(800x600) = %v, want ErrLayoutMismatch", err)
	}
}

func TestBuildPresentation(t *testing.T) {
	tests := []struct {
		name     string
		strategy transfer.Strategy
		wantOps  []string
		vertices int
	}{
		{"direct pull", transfer.DirectPull, []string{"bind_group", "write", "vertex"}, transfer.QuadVertexCount * 8},
		{"texture blit", transfer.TextureBlit, []string{"texture", "sampler", "bind_group", "vertex"}, transfer.BlitVertexCount * 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingBackend{}
			b := NewBinder(backend, cornellKernels(t))
			settings := render_config.NewSettings(render_config.WithStrategy(tt.strategy))

			if err := b.BuildPresentation(settings); err != nil {
				t.Fatalf("BuildPresentation: %v", err)
			}
			if len(backend.calls) != len(tt.wantOps) {
				t.Fatalf("calls = %+v, want ops %v", backend.calls, tt.wantOps)
			}
			for i, op := range tt.wantOps {
				if backend.calls[i].op != op {
					t.Errorf("call %d = %s, want %s", i, backend.calls[i].op, op)
				}
			}
			last := backend.calls[len(backend.calls)-1]
			if last.bytes != tt.vertices {
				t.Errorf("vertex buffer = %d bytes, want %d", last.bytes, tt.vertices)
			}
			if b.PresentationGroup() == nil || b.PresentationGroup().Group() != 0 {
				t.Error("presentation group not at group 0")
			}
		})
	}
}

func TestBlitBindingsFollowKernelRoles(t *testing.T) {
	backend := &recordingBackend{}
	b := NewBinder(backend, cornellKernels(t))
	if err := b.BuildPresentation(render_config.NewSettings(render_config.WithStrategy(transfer.TextureBlit))); err != nil {
		t.Fatalf("BuildPresentation: %v", err)
	}
	if backend.calls[0].binding != 0 || backend.calls[1].binding != 1 {
		t.Errorf("texture at %d, sampler at %d, want 0 and 1", backend.calls[0].binding, backend.calls[1].binding)
	}
}
