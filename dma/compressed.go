package dma

import (
	"github.com/xaionaro-go/mcscaler/internal"
	"github.com/xaionaro-go/mcscaler/types"
)

const (
	BlockWidth  = 32
	BlockHeight = 4

	// OffsetAlign is the pixel alignment of a stripe origin in a compressed
	// image: two blocks share a header byte.
	OffsetAlign = 2 * BlockWidth

	payloadStrideAlign = 32
	headerStrideAlign  = 16
)

// blockBytes is the worst-case payload size of one block.
func blockBytes(bitDepth uint8, c types.Compression) uint32 {
	bits := uint32(8)
	if bitDepth > 8 {
		bits = 10
	}
	size := BlockWidth * BlockHeight * bits / 8
	if c == types.CompressionLossy {
		size /= 2
	}
	return size
}

// CompressedPlane is the memory geometry of one compressed plane.
type CompressedPlane struct {
	PayloadStride uint32
	HeaderStride  uint32
	Rows          uint32
}

func (p CompressedPlane) PayloadSize() uint64 {
	return uint64(p.PayloadStride) * uint64(p.Rows)
}

func (p CompressedPlane) HeaderSize() uint64 {
	if p.PayloadSize() == 0 {
		return 0
	}
	return internal.AlignUp(uint64(p.HeaderStride)*uint64(p.Rows), headerStrideAlign)
}

// CompressedPlanes returns the luma and chroma geometry of a compressed
// YUV420 image.
func CompressedPlanes(f types.ImageFormat, c types.Compression, size types.Size) [2]CompressedPlane {
	blocks := internal.DivRoundUp(size.Width, BlockWidth)
	payloadStride := internal.AlignUp(blocks*blockBytes(f.BitDepth, c), payloadStrideAlign)
	headerStride := internal.AlignUp(internal.DivRoundUp(blocks, 2), headerStrideAlign)
	if size.IsZero() {
		payloadStride, headerStride = 0, 0
	}
	chromaHeight := internal.DivRoundUp(size.Height, 2)
	return [2]CompressedPlane{
		{
			PayloadStride: payloadStride,
			HeaderStride:  headerStride,
			Rows:          internal.DivRoundUp(size.Height, BlockHeight),
		},
		{
			PayloadStride: payloadStride,
			HeaderStride:  headerStride,
			Rows:          internal.DivRoundUp(chromaHeight, BlockHeight),
		},
	}
}
