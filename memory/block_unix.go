//go:build linux || darwin || freebsd || netbsd || openbsd

package memory

import "golang.org/x/sys/unix"

// mmapAllocator maps anonymous private pages outside the Go heap so a refusal
// comes back as an error and munmap returns pages to the OS immediately.
type mmapAllocator struct{}

func newDefaultAllocator() Allocator { return mmapAllocator{} }

func (mmapAllocator) Alloc(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func (mmapAllocator) Free(b []byte) error {
	return unix.Munmap(b)
}
