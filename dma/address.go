package dma

import (
	"fmt"

	"github.com/xaionaro-go/mcscaler/format"
	"github.com/xaionaro-go/mcscaler/types"
)

// Plane is the DMA programming of one plane of one sub-buffer.
type Plane struct {
	Addr       uint64
	HeaderAddr uint64
}

// Layout is the DMA programming of one channel for one shot.
type Layout struct {
	// Buffers are indexed by the sub-buffer then by the plane.
	Buffers [][]Plane

	Strides       []uint32
	HeaderStrides []uint32
	Compressed    bool

	// TotalBytes is the size of one sub-buffer image (payload and headers).
	TotalBytes uint64
}

type Request struct {
	Format      types.ImageFormat
	Compression types.Compression

	// Size is the full destination image (it defines the strides).
	Size types.Size

	// OffsetX is the x-coordinate of the first written pixel (stripe mode).
	OffsetX uint32

	Buffers    types.BufferSet
	NumBuffers uint32
}

// Build computes the plane (and header) addresses of every sub-buffer.
func Build(req Request) (*Layout, error) {
	if req.Size.IsZero() {
		return nil, ErrEmptyImage{Size: req.Size}
	}
	numBuffers := int(req.NumBuffers)
	if numBuffers == 0 {
		numBuffers = 1
	}
	if len(req.Buffers.Buffers) < numBuffers {
		return nil, ErrNotEnoughBuffers{Expected: numBuffers, Actual: len(req.Buffers.Buffers)}
	}

	var (
		l   *Layout
		err error
	)
	if req.Compression.IsEnabled() {
		l, err = buildCompressed(req, numBuffers)
	} else {
		l, err = buildPlain(req, numBuffers)
	}
	if err != nil {
		return nil, err
	}
	for bufIdx, planes := range l.Buffers {
		for planeIdx, p := range planes {
			if p.Addr == 0 {
				return nil, ErrNullAddress{Buffer: bufIdx, Plane: planeIdx}
			}
			if l.Compressed && p.HeaderAddr == 0 {
				return nil, ErrNullAddress{Buffer: bufIdx, Plane: planeIdx, Header: true}
			}
		}
	}
	return l, nil
}

func checkPlaneCount(f types.ImageFormat, c types.Compression) error {
	switch f.Planes {
	case 1, 2, 3:
		if c.IsEnabled() && f.Planes != 2 {
			return ErrPlaneCount{Expected: 2, Actual: int(f.Planes)}
		}
		return nil
	case 4:
		if !c.IsEnabled() || f.BitDepth <= 8 {
			return ErrPlaneCount{Expected: 2, Actual: 4}
		}
		return nil
	default:
		return ErrPlaneCount{Expected: 0, Actual: int(f.Planes)}
	}
}

func buildPlain(req Request, numBuffers int) (*Layout, error) {
	if err := checkPlaneCount(req.Format, req.Compression); err != nil {
		return nil, err
	}
	planes := format.Planes(req.Format, req.Size)
	l := &Layout{
		Buffers: make([][]Plane, numBuffers),
		Strides: make([]uint32, len(planes)),
	}
	offsets := make([]uint64, len(planes))
	for idx, p := range planes {
		l.Strides[idx] = p.Stride
		l.TotalBytes += p.Size()
		bits := uint64(req.OffsetX) * uint64(format.BitsPerPixel(req.Format, idx))
		if bits%8 != 0 {
			return nil, ErrUnalignedOffset{OffsetX: req.OffsetX}
		}
		offsets[idx] = bits / 8
	}

	for bufIdx := 0; bufIdx < numBuffers; bufIdx++ {
		src := req.Buffers.Buffers[bufIdx].Planes
		result := make([]Plane, len(planes))
		switch {
		case len(src) == len(planes):
			for idx := range planes {
				result[idx].Addr = src[idx]
			}
		case len(src) == 1:
			// contiguous: the planes follow each other
			if src[0] == 0 {
				break
			}
			addr := src[0]
			for idx, p := range planes {
				result[idx].Addr = addr
				addr += p.Size()
			}
		default:
			return nil, ErrPlaneCount{Expected: len(planes), Actual: len(src)}
		}
		for idx := range result {
			if result[idx].Addr != 0 {
				result[idx].Addr += offsets[idx]
			}
		}
		l.Buffers[bufIdx] = result
	}
	return l, nil
}

func buildCompressed(req Request, numBuffers int) (*Layout, error) {
	if err := checkPlaneCount(req.Format, req.Compression); err != nil {
		return nil, err
	}
	if req.Format.Format != types.PixelFormatYUV420 {
		return nil, ErrCompressionUnsupported{Format: req.Format}
	}
	if req.OffsetX%OffsetAlign != 0 {
		return nil, ErrUnalignedOffset{OffsetX: req.OffsetX}
	}
	geom := CompressedPlanes(req.Format, req.Compression, req.Size)
	blocks := uint64(req.OffsetX / BlockWidth)
	payloadOffset := blocks * uint64(blockBytes(req.Format.BitDepth, req.Compression))
	headerOffset := blocks / 2

	l := &Layout{
		Buffers:       make([][]Plane, numBuffers),
		Strides:       []uint32{geom[0].PayloadStride, geom[1].PayloadStride},
		HeaderStrides: []uint32{geom[0].HeaderStride, geom[1].HeaderStride},
		Compressed:    true,
	}
	for _, p := range geom {
		l.TotalBytes += p.PayloadSize() + p.HeaderSize()
	}

	for bufIdx := 0; bufIdx < numBuffers; bufIdx++ {
		src := req.Buffers.Buffers[bufIdx].Planes
		result := make([]Plane, 2)
		switch {
		case req.Format.Planes == 4 && len(src) == 4:
			// split header: [Y payload, C payload, Y header, C header]
			for idx := 0; idx < 2; idx++ {
				result[idx] = Plane{Addr: src[idx], HeaderAddr: src[2+idx]}
			}
		case req.Format.Planes == 2 && len(src) == 2:
			for idx := 0; idx < 2; idx++ {
				result[idx] = Plane{Addr: src[idx], HeaderAddr: headerAfterPayload(src[idx], geom[idx])}
			}
		case req.Format.Planes == 2 && len(src) == 1:
			// contiguous: Y payload, Y header, C payload, C header
			y := src[0]
			c := uint64(0)
			if y != 0 {
				c = y + geom[0].PayloadSize() + geom[0].HeaderSize()
			}
			result[0] = Plane{Addr: y, HeaderAddr: headerAfterPayload(y, geom[0])}
			result[1] = Plane{Addr: c, HeaderAddr: headerAfterPayload(c, geom[1])}
		default:
			return nil, ErrPlaneCount{Expected: int(req.Format.Planes), Actual: len(src)}
		}
		for idx := range result {
			if result[idx].Addr != 0 {
				result[idx].Addr += payloadOffset
			}
			if result[idx].HeaderAddr != 0 {
				result[idx].HeaderAddr += headerOffset
			}
		}
		l.Buffers[bufIdx] = result
	}
	return l, nil
}

func headerAfterPayload(addr uint64, p CompressedPlane) uint64 {
	if addr == 0 || p.PayloadSize() == 0 {
		return 0
	}
	return addr + p.PayloadSize()
}

type ErrNullAddress struct {
	Buffer int
	Plane  int
	Header bool
}

func (e ErrNullAddress) Error() string {
	if e.Header {
		return fmt.Sprintf("null DMA header address of plane %d of sub-buffer %d", e.Plane, e.Buffer)
	}
	return fmt.Sprintf("null DMA address of plane %d of sub-buffer %d", e.Plane, e.Buffer)
}

type ErrPlaneCount struct {
	Expected int
	Actual   int
}

func (e ErrPlaneCount) Error() string {
	return fmt.Sprintf("unexpected plane count %d (expected %d)", e.Actual, e.Expected)
}

type ErrNotEnoughBuffers struct {
	Expected int
	Actual   int
}

func (e ErrNotEnoughBuffers) Error() string {
	return fmt.Sprintf("only %d sub-buffers provided, while %d are required", e.Actual, e.Expected)
}

type ErrEmptyImage struct {
	Size types.Size
}

func (e ErrEmptyImage) Error() string {
	return fmt.Sprintf("empty image %s", e.Size)
}

type ErrUnalignedOffset struct {
	OffsetX uint32
}

func (e ErrUnalignedOffset) Error() string {
	return fmt.Sprintf("the stripe offset %d is not aligned for the DMA", e.OffsetX)
}

type ErrCompressionUnsupported struct {
	Format types.ImageFormat
}

func (e ErrCompressionUnsupported) Error() string {
	return fmt.Sprintf("compression is not supported for %s", e.Format)
}
