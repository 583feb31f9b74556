package resource_binder

import "errors"

var (
	// ErrBindingTooLarge is returned when a kernel's minimum binding size exceeds the buffer planned for it.
	ErrBindingTooLarge = errors.New("resource_binder: binding larger than buffer")

	// ErrLayoutMismatch is returned when a kernel's declared layout disagrees with the host plan.
	ErrLayoutMismatch = errors.New("resource_binder: kernel layout does not match host layout")

	// ErrNotBuilt is returned when a build step needs a group that has not been built yet.
	ErrNotBuilt = errors.New("resource_binder: group not built")
)
