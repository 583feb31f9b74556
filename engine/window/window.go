package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/log"
	"github.com/cogentcore/webgpu/wgpu"
)

var logger = log.New("window")

// Window is a fixed-size platform window that presents traced frames.
// Escape closes it, Space requests a redraw.
type Window interface {
	// SetUpdateCallback sets the function called after each batch of window events.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetKeyDownCallback sets the callback for key press events that the window does not consume.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// Redraws delivers one value per pending redraw request. Requests made while one is
	// pending are coalesced.
	//
	// Returns:
	//   - <-chan struct{}: the buffered request channel
	Redraws() <-chan struct{}

	// RequestRedraw queues a redraw request without blocking.
	RequestRedraw()

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor for the underlying GLFW window,
	// built by the wgpuglfw bridge for the current platform.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true until the window is closed.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages runs the event loop until the window is closed. It sleeps while no
	// event is pending and calls the update callback after each wake.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title  string
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	redraw chan struct{}

	onUpdate  func()
	onKeyDown func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a fixed-size window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("create platform window: %w", err)
	}
	logger.Debugf("%q: framebuffer %dx%d", w.title, w.width, w.height)
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:  "oxy-trace",
		width:  600,
		height: 600,
		redraw: make(chan struct{}, 1),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// handleKey applies the window's own bindings and forwards the rest.
// It reports whether the key closes the window.
func (w *engineWindow) handleKey(keyCode uint32) bool {
	switch keyCode {
	case common.KeyEsc:
		return true
	case common.KeySpace:
		w.RequestRedraw()
	}
	if w.onKeyDown != nil {
		w.onKeyDown(keyCode)
	}
	return false
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) Redraws() <-chan struct{} {
	return w.redraw
}

func (w *engineWindow) RequestRedraw() {
	select {
	case w.redraw <- struct{}{}:
	default:
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
