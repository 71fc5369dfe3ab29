package dma

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mcscaler/types"
)

var (
	nv12 = types.ImageFormat{Format: types.PixelFormatYUV420, Planes: 2, BitDepth: 8}
	fhd  = types.Size{Width: 1920, Height: 1080}
)

func bufs(planes ...[]uint64) types.BufferSet {
	var s types.BufferSet
	for _, p := range planes {
		s.Buffers = append(s.Buffers, types.Buffer{Planes: p})
	}
	return s
}

func TestBuildPlainBatch(t *testing.T) {
	l, err := Build(Request{
		Format:     nv12,
		Size:       fhd,
		Buffers:    bufs([]uint64{0x1000_0000, 0x1100_0000}, []uint64{0x2000_0000, 0x2100_0000}),
		NumBuffers: 2,
	})
	require.NoError(t, err)
	require.Equal(t, [][]Plane{
		{{Addr: 0x1000_0000}, {Addr: 0x1100_0000}},
		{{Addr: 0x2000_0000}, {Addr: 0x2100_0000}},
	}, l.Buffers)
	require.Equal(t, []uint32{1920, 1920}, l.Strides)
	require.Equal(t, uint64(1920*1080*3/2), l.TotalBytes)
	require.False(t, l.Compressed)
}

func TestBuildPlainContiguousWithStripeOffset(t *testing.T) {
	l, err := Build(Request{
		Format:  nv12,
		Size:    fhd,
		OffsetX: 960,
		Buffers: bufs([]uint64{0x1000_0000}),
	})
	require.NoError(t, err)
	require.Equal(t, uint64(0x1000_0000+960), l.Buffers[0][0].Addr)
	require.Equal(t, uint64(0x1000_0000+1920*1080+960), l.Buffers[0][1].Addr)
	require.Zero(t, l.Buffers[0][1].HeaderAddr)
}

func TestBuildUnalignedOffset(t *testing.T) {
	mono10 := types.ImageFormat{Format: types.PixelFormatMono, Planes: 1, BitDepth: 10}
	_, err := Build(Request{Format: mono10, Size: fhd, OffsetX: 3, Buffers: bufs([]uint64{0x1000})})
	require.ErrorAs(t, err, &ErrUnalignedOffset{})

	yuyv := types.ImageFormat{Format: types.PixelFormatYUV422, Planes: 1, BitDepth: 8}
	l, err := Build(Request{Format: yuyv, Size: fhd, OffsetX: 3, Buffers: bufs([]uint64{0x1000})})
	require.NoError(t, err)
	require.Equal(t, uint64(0x1006), l.Buffers[0][0].Addr)
}

func TestBuildCompressed2Plane(t *testing.T) {
	l, err := Build(Request{
		Format:      nv12,
		Compression: types.CompressionLossless,
		Size:        fhd,
		Buffers:     bufs([]uint64{0x1000_0000, 0x2000_0000}),
	})
	require.NoError(t, err)
	require.True(t, l.Compressed)

	geom := CompressedPlanes(nv12, types.CompressionLossless, fhd)
	require.Equal(t, uint32(60*128), geom[0].PayloadStride)
	require.Equal(t, uint32(270), geom[0].Rows)
	require.Equal(t, uint32(135), geom[1].Rows)
	require.Equal(t, uint32(32), geom[0].HeaderStride)

	require.Equal(t, uint64(0x1000_0000), l.Buffers[0][0].Addr)
	require.Equal(t, uint64(0x1000_0000)+geom[0].PayloadSize(), l.Buffers[0][0].HeaderAddr)
	require.Equal(t, uint64(0x2000_0000)+geom[1].PayloadSize(), l.Buffers[0][1].HeaderAddr)
}

func TestBuildCompressedStripeOffset(t *testing.T) {
	l, err := Build(Request{
		Format:      nv12,
		Compression: types.CompressionLossless,
		Size:        fhd,
		OffsetX:     128,
		Buffers:     bufs([]uint64{0x1000_0000, 0x2000_0000}),
	})
	require.NoError(t, err)
	geom := CompressedPlanes(nv12, types.CompressionLossless, fhd)
	require.Equal(t, uint64(0x1000_0000+4*128), l.Buffers[0][0].Addr)
	require.Equal(t, uint64(0x1000_0000)+geom[0].PayloadSize()+2, l.Buffers[0][0].HeaderAddr)

	_, err = Build(Request{
		Format:      nv12,
		Compression: types.CompressionLossless,
		Size:        fhd,
		OffsetX:     32,
		Buffers:     bufs([]uint64{0x1000_0000, 0x2000_0000}),
	})
	require.ErrorAs(t, err, &ErrUnalignedOffset{})
}

func TestBuildCompressedSplitHeader(t *testing.T) {
	p010 := types.ImageFormat{Format: types.PixelFormatYUV420, Planes: 4, BitDepth: 10}
	l, err := Build(Request{
		Format:      p010,
		Compression: types.CompressionLossy,
		Size:        fhd,
		Buffers:     bufs([]uint64{0x1000, 0x2000, 0x3000, 0x4000}),
	})
	require.NoError(t, err)
	require.Equal(t, []Plane{{Addr: 0x1000, HeaderAddr: 0x3000}, {Addr: 0x2000, HeaderAddr: 0x4000}}, l.Buffers[0])

	p4bit8 := p010
	p4bit8.BitDepth = 8
	_, err = Build(Request{
		Format:      p4bit8,
		Compression: types.CompressionLossy,
		Size:        fhd,
		Buffers:     bufs([]uint64{0x1000, 0x2000, 0x3000, 0x4000}),
	})
	require.ErrorAs(t, err, &ErrPlaneCount{})

	_, err = Build(Request{
		Format:  p010,
		Size:    fhd,
		Buffers: bufs([]uint64{0x1000, 0x2000, 0x3000, 0x4000}),
	})
	require.ErrorAs(t, err, &ErrPlaneCount{})
}

func TestBuildNullAddress(t *testing.T) {
	for _, c := range []types.Compression{types.CompressionNone, types.CompressionLossless} {
		for _, planes := range [][]uint64{{0}, {0, 0x2000}, {0x1000, 0}} {
			_, err := Build(Request{
				Format:      nv12,
				Compression: c,
				Size:        fhd,
				Buffers:     bufs(planes),
			})
			require.ErrorAs(t, err, &ErrNullAddress{}, "compression %s planes %v", c, planes)
		}
	}
}

func TestBuildNullSplitHeaderAddress(t *testing.T) {
	p010 := types.ImageFormat{Format: types.PixelFormatYUV420, Planes: 4, BitDepth: 10}
	for _, tc := range []struct {
		planes []uint64
		plane  int
	}{
		{planes: []uint64{0x1000, 0x2000, 0, 0x4000}, plane: 0},
		{planes: []uint64{0x1000, 0x2000, 0x3000, 0}, plane: 1},
	} {
		_, err := Build(Request{
			Format:      p010,
			Compression: types.CompressionLossy,
			Size:        fhd,
			Buffers:     bufs([]uint64{0x1000, 0x2000, 0x3000, 0x4000}, tc.planes),
			NumBuffers:  2,
		})
		var errNull ErrNullAddress
		require.ErrorAs(t, err, &errNull, "planes %v", tc.planes)
		require.Equal(t, ErrNullAddress{Buffer: 1, Plane: tc.plane, Header: true}, errNull)
	}
}

func TestBuildRejects(t *testing.T) {
	_, err := Build(Request{Format: nv12, Size: types.Size{Width: 0, Height: 10}, Buffers: bufs([]uint64{0x1000})})
	require.ErrorAs(t, err, &ErrEmptyImage{})

	_, err = Build(Request{Format: nv12, Size: fhd, Buffers: bufs([]uint64{0x1000}), NumBuffers: 2})
	require.ErrorAs(t, err, &ErrNotEnoughBuffers{})

	_, err = Build(Request{Format: nv12, Size: fhd, Buffers: bufs([]uint64{0x1000, 0x2000, 0x3000})})
	require.ErrorAs(t, err, &ErrPlaneCount{})

	rgb := types.ImageFormat{Format: types.PixelFormatRGB, Planes: 2, BitDepth: 8}
	_, err = Build(Request{Format: rgb, Compression: types.CompressionLossless, Size: fhd, Buffers: bufs([]uint64{0x1000, 0x2000})})
	require.ErrorAs(t, err, &ErrCompressionUnsupported{})
}

func TestHeaderIsNullWithoutPayload(t *testing.T) {
	geom := CompressedPlanes(nv12, types.CompressionLossless, types.Size{Width: 0, Height: 1080})
	for _, p := range geom {
		require.Zero(t, p.PayloadSize())
		require.Zero(t, p.HeaderSize())
		require.Zero(t, headerAfterPayload(0x1000, p))
	}
}

func TestDescriptorFactory(t *testing.T) {
	d, err := DefaultFactory.NewDescriptor(1, KindOutput, 0)
	require.NoError(t, err)
	require.Equal(t, "dma1(output:0)", d.String())

	_, err = DefaultFactory.NewDescriptor(1, KindUndefined, 0)
	require.Error(t, err)
}
