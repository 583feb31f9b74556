package orchestrator

// WorkgroupCount returns the smallest number of workgroups of threadsPerGroup threads that
// covers totalPixels: ceil(totalPixels / threadsPerGroup), computed in 64 bits so it cannot
// wrap. The kernel bounds-checks the overhang of the last group.
//
// Parameters:
//   - totalPixels: the number of pixels to shade
//   - threadsPerGroup: the kernel's @workgroup_size x dimension, never zero
//
// Returns:
//   - uint32: the x dimension of the dispatch
func WorkgroupCount(totalPixels, threadsPerGroup uint32) uint32 {
	if threadsPerGroup == 0 {
		panic("orchestrator: zero threads per workgroup")
	}
	return uint32((uint64(totalPixels) + uint64(threadsPerGroup) - 1) / uint64(threadsPerGroup))
}
