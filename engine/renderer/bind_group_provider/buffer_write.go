package bind_group_provider

// BufferWrite describes a single GPU buffer write targeting a binding on a provider at a byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Bytes returns the total payload size of a batch of writes.
func Bytes(writes []BufferWrite) int {
	n := 0
	for _, w := range writes {
		n += len(w.Data)
	}
	return n
}
