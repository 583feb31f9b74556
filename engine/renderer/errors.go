package renderer

import "errors"

var (
	// ErrNoAdapter is returned when no GPU adapter matches the requested options.
	ErrNoAdapter = errors.New("renderer: no suitable adapter")

	// ErrNoDevice is returned when the adapter refuses to create a device.
	ErrNoDevice = errors.New("renderer: device request failed")

	// ErrFrameAcquire is returned when the surface image cannot be acquired even after reconfiguring.
	ErrFrameAcquire = errors.New("renderer: surface image acquisition failed")

	// ErrFrameInProgress is returned by BeginFrame when the previous frame was never presented.
	ErrFrameInProgress = errors.New("renderer: previous frame not yet presented")

	// ErrNoFrame is returned by calls that need an open frame when none was begun.
	ErrNoFrame = errors.New("renderer: no frame in progress")

	// ErrPipelineNotFound is returned when a pipeline key was never registered.
	ErrPipelineNotFound = errors.New("renderer: pipeline not registered")

	// ErrUnboundResource is returned when a bind group entry has no texture view or sampler staged.
	ErrUnboundResource = errors.New("renderer: binding has no resource")
)
