// Package staging provides the memory regions the command lists are built in.
package staging

import (
	"fmt"
)

// Region is a fixed-size scratch memory region.
type Region interface {
	Bytes() []byte
	Close() error
}

type Allocator interface {
	Alloc(size int) (Region, error)
}

// AllocatorFunc adapts a function to Allocator.
type AllocatorFunc func(size int) (Region, error)

func (fn AllocatorFunc) Alloc(size int) (Region, error) {
	return fn(size)
}

type heapRegion struct {
	buf []byte
}

func (r *heapRegion) Bytes() []byte { return r.buf }
func (r *heapRegion) Close() error  { r.buf = nil; return nil }

// Heap allocates regions on the Go heap.
var Heap = AllocatorFunc(func(size int) (Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid region size %d", size)
	}
	return &heapRegion{buf: make([]byte, size)}, nil
})
