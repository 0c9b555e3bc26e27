//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package memory

import "runtime/debug"

// heapAllocator backs blocks with Go slices. The runtime aborts rather than
// returning an error when the OS refuses memory, so Alloc never fails here.
type heapAllocator struct{}

func newDefaultAllocator() Allocator { return heapAllocator{} }

func (heapAllocator) Alloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (heapAllocator) Free([]byte) error { return nil }

// reclaim asks the runtime to hand freed spans back to the OS.
func (heapAllocator) reclaim() { debug.FreeOSMemory() }
