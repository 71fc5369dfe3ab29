// Package format maps memory image formats onto the device DMA format codes.
package format

import (
	"fmt"

	"github.com/xaionaro-go/mcscaler/types"
)

// DeviceFormat is what is programmed into the DMA format register.
type DeviceFormat struct {
	Code uint32

	// Conv420 enables the 422->420 chroma down-sampling in front of the
	// DMA (the internal data path is always 4:2:2).
	Conv420 bool
}

func (f DeviceFormat) String() string {
	return fmt.Sprintf("0x%02x(conv420:%t)", f.Code, f.Conv420)
}

type key struct {
	Format   types.PixelFormat
	Planes   uint8
	BitDepth uint8
	Order    types.Order
}

var table = map[key]DeviceFormat{
	{types.PixelFormatYUV422, 1, 8, types.OrderYUYV}: {Code: 0x00},
	{types.PixelFormatYUV422, 1, 8, types.OrderYVYU}: {Code: 0x01},
	{types.PixelFormatYUV422, 1, 8, types.OrderUYVY}: {Code: 0x02},
	{types.PixelFormatYUV422, 1, 8, types.OrderVYUY}: {Code: 0x03},

	{types.PixelFormatYUV422, 2, 8, types.OrderCbCr}: {Code: 0x04},
	{types.PixelFormatYUV422, 2, 8, types.OrderCrCb}: {Code: 0x05},
	{types.PixelFormatYUV420, 2, 8, types.OrderCbCr}: {Code: 0x06, Conv420: true},
	{types.PixelFormatYUV420, 2, 8, types.OrderCrCb}: {Code: 0x07, Conv420: true},
	{types.PixelFormatYUV420, 3, 8, types.Order0}:    {Code: 0x08, Conv420: true},
	{types.PixelFormatYUV422, 3, 8, types.Order0}:    {Code: 0x09},

	{types.PixelFormatRGB, 1, 8, types.OrderARGB}: {Code: 0x0a},
	{types.PixelFormatRGB, 1, 8, types.OrderBGRA}: {Code: 0x0b},
	{types.PixelFormatRGB, 1, 8, types.OrderRGBA}: {Code: 0x0c},
	{types.PixelFormatRGB, 1, 8, types.OrderABGR}: {Code: 0x0d},

	{types.PixelFormatYUV444, 1, 8, types.Order0}: {Code: 0x0e},
	{types.PixelFormatYUV444, 3, 8, types.Order0}: {Code: 0x0f},

	{types.PixelFormatMono, 1, 8, types.Order0}:  {Code: 0x10},
	{types.PixelFormatMono, 1, 10, types.Order0}: {Code: 0x11},
	{types.PixelFormatMono, 1, 16, types.Order0}: {Code: 0x12},

	{types.PixelFormatYUV422, 2, 10, types.OrderCbCr}: {Code: 0x14},
	{types.PixelFormatYUV422, 2, 10, types.OrderCrCb}: {Code: 0x15},
	{types.PixelFormatYUV420, 2, 10, types.OrderCbCr}: {Code: 0x16, Conv420: true},
	{types.PixelFormatYUV420, 2, 10, types.OrderCrCb}: {Code: 0x17, Conv420: true},
	// split-header layout of the compressed 10-bit data
	{types.PixelFormatYUV420, 4, 10, types.OrderCbCr}: {Code: 0x16, Conv420: true},
	{types.PixelFormatYUV420, 4, 10, types.OrderCrCb}: {Code: 0x17, Conv420: true},

	{types.PixelFormatYUV422, 2, 16, types.OrderCbCr}: {Code: 0x18},
	{types.PixelFormatYUV422, 2, 16, types.OrderCrCb}: {Code: 0x19},
	{types.PixelFormatYUV420, 2, 16, types.OrderCbCr}: {Code: 0x1a, Conv420: true},
	{types.PixelFormatYUV420, 2, 16, types.OrderCrCb}: {Code: 0x1b, Conv420: true},
}

// Resolve returns the device format code of the given memory format.
// Every combination absent in the table is reported as ErrInvalidFormat.
func Resolve(f types.ImageFormat) (DeviceFormat, error) {
	df, ok := table[key(f)]
	if !ok {
		return DeviceFormat{}, ErrInvalidFormat{Format: f}
	}
	return df, nil
}

type ErrInvalidFormat struct {
	Format types.ImageFormat
}

func (e ErrInvalidFormat) Error() string {
	return fmt.Sprintf("unsupported image format combination %s", e.Format)
}
