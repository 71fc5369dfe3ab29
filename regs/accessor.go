package regs

import (
	"context"
)

type Reader interface {
	Read(ctx context.Context, f Field) uint32
}

type Writer interface {
	Write(ctx context.Context, f Field, value uint32)
}

// Accessor is the direct register field access of one engine instance.
type Accessor interface {
	Reader
	Writer
}

// Committer is implemented by accessors which accept batched command lists
// (see CommandList).
type Committer interface {
	Commit(ctx context.Context, list []byte) error
}

// WriteAddr writes a 64-bit device address into a lo/hi field pair.
func WriteAddr(ctx context.Context, w Writer, lo, hi Field, addr uint64) {
	w.Write(ctx, lo, uint32(addr))
	w.Write(ctx, hi, uint32(addr>>32))
}

// ReadAddr reads a 64-bit device address from a lo/hi field pair.
func ReadAddr(ctx context.Context, r Reader, lo, hi Field) uint64 {
	return uint64(r.Read(ctx, lo)) | uint64(r.Read(ctx, hi))<<32
}

// WriteBool writes 1 or 0.
func WriteBool(ctx context.Context, w Writer, f Field, v bool) {
	if v {
		w.Write(ctx, f, 1)
		return
	}
	w.Write(ctx, f, 0)
}
