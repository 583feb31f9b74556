package resource_binder

// BinderBuilderOption is a functional option applied to a Binder during construction.
type BinderBuilderOption func(*binder)

// WithWorkers caps the worker pool that generates the pixel table.
//
// Parameters:
//   - n: the maximum number of workers; zero or less means runtime.NumCPU()
//
// Returns:
//   - BinderBuilderOption: a function that applies the worker count to a binder
func WithWorkers(n int) BinderBuilderOption {
	return func(b *binder) {
		b.workers = n
	}
}
