package regs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldIndex(t *testing.T) {
	f := Buf(FieldDMAAddrLo, 5, 7, 3)
	require.Equal(t, 5, f.Channel())
	require.Equal(t, 7, f.Buffer())
	require.Equal(t, 3, f.Plane())
	require.Equal(t, "dma_addr_lo[5.7.3]", f.String())
	require.Equal(t, "sw_reset", G(FieldSwReset).String())
	require.Equal(t, 17, Tap(FieldPolyHCoef, 2, 17).Tap())
	require.Equal(t, 2, Tap(FieldPolyHCoef, 2, 17).Channel())

	for id := FieldUndefined + 1; id < endOfField; id++ {
		require.NotContains(t, id.String(), "unknown", "field %d has no name", id)
	}
}

func TestCommandListFlushesWhenFull(t *testing.T) {
	ctx := context.Background()
	file := NewFile()
	var writes int
	file.OnWrite = func(ctx context.Context, f Field, value uint32) { writes++ }

	l := NewCommandList(make([]byte, 3*CommandSize), file)
	for idx := 0; idx < 7; idx++ {
		l.Write(ctx, Ch(FieldPolyDstWidth, idx%6), uint32(100+idx))
	}
	require.Equal(t, 2, l.Commits())
	require.Equal(t, 1, l.Pending())
	require.Equal(t, 6, writes)

	require.NoError(t, l.Commit(ctx))
	require.Equal(t, 7, writes)
	require.Equal(t, uint32(106), file.Read(ctx, Ch(FieldPolyDstWidth, 0)))
	require.Equal(t, uint32(105), file.Read(ctx, Ch(FieldPolyDstWidth, 5)))

	l.Reset(nil)
	l.Write(ctx, G(FieldSwReset), 1)
	require.ErrorAs(t, l.Commit(ctx), &ErrStagingTooSmall{})
}

func TestDecodeCommandListRejectsGarbage(t *testing.T) {
	require.Error(t, DecodeCommandList(make([]byte, 5), func(Field, uint32) {}))
	require.Error(t, DecodeCommandList(make([]byte, 8), func(Field, uint32) {}))
}

func TestAddr(t *testing.T) {
	ctx := context.Background()
	file := NewFile()
	WriteAddr(ctx, file, G(FieldInputAddrLo), G(FieldInputAddrHi), 0x1_2345_6789)
	require.Equal(t, uint64(0x1_2345_6789), ReadAddr(ctx, file, G(FieldInputAddrLo), G(FieldInputAddrHi)))
	require.Equal(t, uint32(1), file.Read(ctx, G(FieldInputAddrHi)))
}

func TestDump(t *testing.T) {
	ctx := context.Background()
	file := NewFile()
	file.Write(ctx, Ch(FieldPolyDstWidth, 1), 1920)
	WriteAddr(ctx, file, Buf(FieldDMAAddrLo, 1, 0, 0), Buf(FieldDMAAddrHi, 1, 0, 0), 0x8000_0000)

	var buf bytes.Buffer
	require.NoError(t, Dump(ctx, &buf, file, 2))
	out := buf.String()
	require.Contains(t, out, "output1.poly_dst_width = 0x00000780\n")
	require.Contains(t, out, "output1.addr[0] = 0x80000000 header 0x0\n")
	require.Contains(t, out, "hf.hf_weight = 0x00000000\n")
	require.False(t, strings.Contains(out, "output2."))
	require.Len(t, file.Snapshot(ctx), 3)
}
