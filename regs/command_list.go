package regs

import (
	"context"
	"encoding/binary"
	"fmt"
)

const (
	// CommandSize is the size of one encoded field write.
	CommandSize = 8
)

// CommandList batches field writes into a caller-owned staging buffer.
// When the buffer is full, the already batched writes are committed and
// the buffer is reused.
type CommandList struct {
	buf       []byte
	length    int
	committer Committer
	commits   int
	err       error
}

var _ Writer = (*CommandList)(nil)

func NewCommandList(buf []byte, committer Committer) *CommandList {
	return &CommandList{
		buf:       buf,
		committer: committer,
	}
}

// Reset rebinds the list to the buffer and drops everything pending.
func (l *CommandList) Reset(buf []byte) {
	l.buf = buf
	l.length = 0
	l.commits = 0
	l.err = nil
}

func (l *CommandList) Write(ctx context.Context, f Field, value uint32) {
	if l.err != nil {
		return
	}
	if len(l.buf) < CommandSize {
		l.err = ErrStagingTooSmall{Size: len(l.buf)}
		return
	}
	if l.length+CommandSize > len(l.buf) {
		if err := l.flush(ctx); err != nil {
			l.err = err
			return
		}
	}
	b := l.buf[l.length : l.length+CommandSize]
	binary.LittleEndian.PutUint16(b[0:], uint16(f.ID))
	binary.LittleEndian.PutUint16(b[2:], f.Index)
	binary.LittleEndian.PutUint32(b[4:], value)
	l.length += CommandSize
}

func (l *CommandList) flush(ctx context.Context) error {
	if l.length == 0 {
		return nil
	}
	if err := l.committer.Commit(ctx, l.buf[:l.length]); err != nil {
		return fmt.Errorf("unable to commit a command list of %d bytes: %w", l.length, err)
	}
	l.commits++
	l.length = 0
	return nil
}

// Commit sends the pending writes and returns the first error seen since
// the last Reset.
func (l *CommandList) Commit(ctx context.Context) error {
	if l.err != nil {
		return l.err
	}
	if err := l.flush(ctx); err != nil {
		l.err = err
		return err
	}
	return nil
}

// Pending is the amount of batched and not yet committed writes.
func (l *CommandList) Pending() int {
	return l.length / CommandSize
}

// Commits is the amount of committed batches since the last Reset.
func (l *CommandList) Commits() int {
	return l.commits
}

// DecodeCommandList calls fn for every write encoded in list.
func DecodeCommandList(list []byte, fn func(f Field, value uint32)) error {
	if len(list)%CommandSize != 0 {
		return fmt.Errorf("the command list length %d is not a multiple of %d", len(list), CommandSize)
	}
	for off := 0; off < len(list); off += CommandSize {
		b := list[off : off+CommandSize]
		f := Field{
			ID:    FieldID(binary.LittleEndian.Uint16(b[0:])),
			Index: binary.LittleEndian.Uint16(b[2:]),
		}
		if !f.ID.IsValid() {
			return fmt.Errorf("invalid field ID %d at offset %d", f.ID, off)
		}
		fn(f, binary.LittleEndian.Uint32(b[4:]))
	}
	return nil
}

type ErrStagingTooSmall struct {
	Size int
}

func (e ErrStagingTooSmall) Error() string {
	return fmt.Sprintf("the staging buffer of %d bytes cannot hold a single command", e.Size)
}
