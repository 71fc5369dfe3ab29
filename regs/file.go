package regs

import (
	"context"
	"sort"

	"github.com/xaionaro-go/xsync"
)

// File is an in-memory register file. It is the backing store of the
// simulated engine and of the tests.
type File struct {
	locker xsync.Mutex
	values map[Field]uint32

	// OnWrite is called (outside of the lock) after every write.
	OnWrite func(ctx context.Context, f Field, value uint32)
}

var (
	_ Accessor  = (*File)(nil)
	_ Committer = (*File)(nil)
)

func NewFile() *File {
	return &File{
		values: map[Field]uint32{},
	}
}

func (r *File) Read(ctx context.Context, f Field) uint32 {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &r.locker, func() uint32 {
		return r.values[f]
	})
}

func (r *File) Write(ctx context.Context, f Field, value uint32) {
	r.Set(ctx, f, value)
	if r.OnWrite != nil {
		r.OnWrite(ctx, f, value)
	}
}

// Set stores the value without triggering OnWrite (used by the hardware
// side to update status fields).
func (r *File) Set(ctx context.Context, f Field, value uint32) {
	r.locker.Do(xsync.WithNoLogging(ctx, true), func() {
		r.values[f] = value
	})
}

// Update atomically modifies a field.
func (r *File) Update(ctx context.Context, f Field, fn func(uint32) uint32) uint32 {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &r.locker, func() uint32 {
		v := fn(r.values[f])
		r.values[f] = v
		return v
	})
}

func (r *File) Commit(ctx context.Context, list []byte) error {
	return DecodeCommandList(list, func(f Field, value uint32) {
		r.Write(ctx, f, value)
	})
}

// Snapshot returns a copy of all the written fields sorted by address.
func (r *File) Snapshot(ctx context.Context) []FieldValue {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &r.locker, func() []FieldValue {
		result := make([]FieldValue, 0, len(r.values))
		for f, v := range r.values {
			result = append(result, FieldValue{Field: f, Value: v})
		}
		sort.Slice(result, func(i, j int) bool {
			if result[i].Field.ID != result[j].Field.ID {
				return result[i].Field.ID < result[j].Field.ID
			}
			return result[i].Field.Index < result[j].Field.Index
		})
		return result
	})
}

type FieldValue struct {
	Field Field
	Value uint32
}
