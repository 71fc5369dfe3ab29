//go:build unix

package staging

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type mmapRegion struct {
	buf []byte
}

func (r *mmapRegion) Bytes() []byte { return r.buf }

func (r *mmapRegion) Close() error {
	if r.buf == nil {
		return nil
	}
	err := unix.Munmap(r.buf)
	r.buf = nil
	if err != nil {
		return fmt.Errorf("unable to unmap the staging region: %w", err)
	}
	return nil
}

// Default allocates page-backed anonymous mappings, so that the regions
// never move and are never shared with the rest of the heap.
var Default = AllocatorFunc(func(size int) (Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid region size %d", size)
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("unable to map %d bytes: %w", size, err)
	}
	return &mmapRegion{buf: buf}, nil
})
