// image_format.go defines the memory image formats accepted by the DMA paths.

package types

import (
	"fmt"
)

type PixelFormat uint8

const (
	PixelFormatUndefined = PixelFormat(iota)
	PixelFormatYUV420
	PixelFormatYUV422
	PixelFormatYUV444
	PixelFormatRGB
	PixelFormatMono
	endOfPixelFormat
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatUndefined:
		return "undefined"
	case PixelFormatYUV420:
		return "YUV420"
	case PixelFormatYUV422:
		return "YUV422"
	case PixelFormatYUV444:
		return "YUV444"
	case PixelFormatRGB:
		return "RGB"
	case PixelFormatMono:
		return "mono"
	default:
		return fmt.Sprintf("unknown_pixel_format_%d", uint8(f))
	}
}

// IsValid reports if the value is one of the known formats (excluding
// PixelFormatUndefined).
func (f PixelFormat) IsValid() bool {
	return f > PixelFormatUndefined && f < endOfPixelFormat
}

// Order is the component ordering, its meaning depends on the format:
//   - packed YUV422: OrderYUYV, OrderYVYU, OrderUYVY, OrderVYUY;
//   - semi-planar YUV: OrderCbCr, OrderCrCb;
//   - RGB: OrderARGB, OrderBGRA, OrderRGBA, OrderABGR.
type Order uint8

const (
	Order0 = Order(iota)
	Order1
	Order2
	Order3
)

const (
	OrderYUYV = Order0
	OrderYVYU = Order1
	OrderUYVY = Order2
	OrderVYUY = Order3

	OrderCbCr = Order0
	OrderCrCb = Order1

	OrderARGB = Order0
	OrderBGRA = Order1
	OrderRGBA = Order2
	OrderABGR = Order3
)

type ImageFormat struct {
	Format   PixelFormat
	Planes   uint8
	BitDepth uint8
	Order    Order
}

func (f ImageFormat) String() string {
	return fmt.Sprintf("%s/%dp/%dbit/o%d", f.Format, f.Planes, f.BitDepth, f.Order)
}

type Compression uint8

const (
	CompressionNone = Compression(iota)
	CompressionLossless
	CompressionLossy
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLossless:
		return "lossless"
	case CompressionLossy:
		return "lossy"
	default:
		return fmt.Sprintf("unknown_compression_%d", uint8(c))
	}
}

func (c Compression) IsEnabled() bool {
	return c != CompressionNone
}

type Flip uint8

const (
	FlipNone = Flip(0)
	FlipX    = Flip(1 << 0)
	FlipY    = Flip(1 << 1)
)

func (f Flip) Has(other Flip) bool {
	return f&other != 0
}
