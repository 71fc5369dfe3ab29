package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mcscaler/types"
)

func TestResolveTotal(t *testing.T) {
	var valid, invalid int
	for pf := types.PixelFormatUndefined; pf <= types.PixelFormatMono+1; pf++ {
		for planes := uint8(0); planes <= 5; planes++ {
			for _, bd := range []uint8{0, 8, 10, 12, 16} {
				for order := types.Order0; order <= types.Order3+1; order++ {
					f := types.ImageFormat{Format: pf, Planes: planes, BitDepth: bd, Order: order}
					df, err := Resolve(f)
					if err != nil {
						invalid++
						require.ErrorAs(t, err, &ErrInvalidFormat{})
						require.Equal(t, DeviceFormat{}, df)
						continue
					}
					valid++
					require.Equal(t, pf == types.PixelFormatYUV420, df.Conv420, f.String())
				}
			}
		}
	}
	require.Equal(t, len(table), valid)
	require.NotZero(t, invalid)
}

func TestApplierFallback(t *testing.T) {
	ctx := context.Background()
	a := NewApplier(2)

	_, ok, err := a.Apply(ctx, 0, types.ImageFormat{Format: types.PixelFormatRGB, Planes: 2, BitDepth: 8})
	require.Error(t, err)
	require.False(t, ok)

	nv12 := types.ImageFormat{Format: types.PixelFormatYUV420, Planes: 2, BitDepth: 8, Order: types.OrderCbCr}
	applied, ok, err := a.Apply(ctx, 0, nv12)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, DeviceFormat{Code: 0x06, Conv420: true}, applied.Device)
	require.Equal(t, nv12, applied.Format)

	bad := types.ImageFormat{Format: types.PixelFormatYUV420, Planes: 1, BitDepth: 8}
	for i := 0; i < 3; i++ {
		got, ok, err := a.Apply(ctx, 0, bad)
		require.ErrorAs(t, err, &ErrInvalidFormat{})
		require.True(t, ok)
		assert.Equal(t, applied, got)
		assert.Equal(t, nv12, got.Format, "the layout must be derived from the last valid format")
	}
	last, ok := a.Last(0)
	require.True(t, ok)
	require.Equal(t, applied, last)

	_, ok = a.Last(1)
	require.False(t, ok)

	a.Reset()
	_, ok = a.Last(0)
	require.False(t, ok)
}

func TestPlanes(t *testing.T) {
	nv12 := types.ImageFormat{Format: types.PixelFormatYUV420, Planes: 2, BitDepth: 8}
	planes := Planes(nv12, types.Size{Width: 1920, Height: 1080})
	require.Equal(t, []Plane{{Stride: 1920, Height: 1080}, {Stride: 1920, Height: 540}}, planes)

	yuyv := types.ImageFormat{Format: types.PixelFormatYUV422, Planes: 1, BitDepth: 8}
	planes = Planes(yuyv, types.Size{Width: 100, Height: 10})
	require.Equal(t, []Plane{{Stride: 208, Height: 10}}, planes)

	i420 := types.ImageFormat{Format: types.PixelFormatYUV420, Planes: 3, BitDepth: 8}
	planes = Planes(i420, types.Size{Width: 640, Height: 481})
	require.Equal(t, []Plane{{Stride: 640, Height: 481}, {Stride: 320, Height: 241}, {Stride: 320, Height: 241}}, planes)

	p010split := types.ImageFormat{Format: types.PixelFormatYUV420, Planes: 4, BitDepth: 10}
	require.Len(t, Planes(p010split, types.Size{Width: 64, Height: 64}), 2)
}
