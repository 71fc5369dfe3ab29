package format

import (
	"github.com/xaionaro-go/mcscaler/internal"
	"github.com/xaionaro-go/mcscaler/types"
)

const (
	// StrideAlign is the alignment of every plane stride, in bytes.
	StrideAlign = 16
)

// Plane is the memory geometry of one uncompressed plane.
type Plane struct {
	Stride uint32
	Height uint32
}

func (p Plane) Size() uint64 {
	return uint64(p.Stride) * uint64(p.Height)
}

// bitsPerPixel returns the amount of bits per horizontal pixel of the plane.
func bitsPerPixel(f types.ImageFormat, plane int) uint32 {
	bd := uint32(f.BitDepth)
	switch f.Format {
	case types.PixelFormatRGB:
		return 32
	case types.PixelFormatMono:
		return bd
	case types.PixelFormatYUV444:
		if f.Planes == 1 {
			return 3 * bd
		}
		return bd
	case types.PixelFormatYUV422, types.PixelFormatYUV420:
		switch f.Planes {
		case 1:
			return 2 * bd
		case 3:
			if plane == 0 {
				return bd
			}
			return bd / 2
		default:
			// the chroma plane is interleaved CbCr of the half width
			return bd
		}
	}
	return 0
}

// storagePlanes is the amount of image planes (headers excluded).
func storagePlanes(f types.ImageFormat) int {
	if f.Planes == 4 {
		return 2
	}
	return int(f.Planes)
}

// Planes returns the geometry of the image planes (without compression
// headers) of an image of the given size.
func Planes(f types.ImageFormat, size types.Size) []Plane {
	n := storagePlanes(f)
	result := make([]Plane, 0, n)
	for idx := 0; idx < n; idx++ {
		bits := uint64(bitsPerPixel(f, idx)) * uint64(size.Width)
		stride := internal.AlignUp(uint32(internal.DivRoundUp(bits, 8)), StrideAlign)
		height := size.Height
		if idx > 0 && f.Format == types.PixelFormatYUV420 {
			height = internal.DivRoundUp(size.Height, 2)
		}
		result = append(result, Plane{Stride: stride, Height: height})
	}
	return result
}

// BitsPerPixel is the amount of bits per horizontal pixel in the plane.
func BitsPerPixel(f types.ImageFormat, plane int) uint32 {
	return bitsPerPixel(f, plane)
}
