package stripe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mcscaler/scaling"
	"github.com/xaionaro-go/mcscaler/types"
)

func partitionAll(
	t *testing.T,
	stripes []types.StripeContext,
	req Request,
) []Window {
	ctx := context.Background()
	p := NewPartitioner(0)
	var result []Window
	for idx := range stripes {
		if idx > 0 {
			stripes[idx].Channels = stripes[idx-1].Channels
		}
		require.NoError(t, stripes[idx].Validate())
		result = append(result, p.Partition(ctx, &stripes[idx], req))
	}
	return result
}

func TestClassify(t *testing.T) {
	require.Equal(t, PositionLeft, Classify(0, 3))
	require.Equal(t, PositionMiddle, Classify(1, 3))
	require.Equal(t, PositionRight, Classify(2, 3))
	require.Equal(t, PositionRight, Classify(1, 2))
}

func TestTwoStripesFullHD(t *testing.T) {
	full := types.Size{Width: 4032, Height: 3024}
	stripes := types.NewFrameStripes(full, 2, 16, 2)
	require.Equal(t, uint32(2016), stripes[1].RegionX)

	windows := partitionAll(t, stripes, Request{
		Crop:     types.FullRect(full),
		DstWidth: 1920,
		Ratio:    scaling.Ratio(4032, 1920),
		Align:    scaling.AlignGeneral,
	})

	require.Equal(t, PositionLeft, windows[0].Position)
	require.Equal(t, PositionRight, windows[1].Position)

	require.Equal(t, uint32(0), windows[0].DstX)
	require.Equal(t, uint32(960), windows[0].DstWidth)
	require.Equal(t, uint32(0), windows[0].SrcX)
	require.Equal(t, uint32(2016), windows[0].SrcWidth)
	require.Zero(t, windows[0].Phase)

	require.Equal(t, uint32(960), windows[1].DstX)
	require.Equal(t, uint32(960), windows[1].DstWidth)
	require.Equal(t, uint32(2015-2000), windows[1].SrcX)
	require.Equal(t, uint32(4032-2015), windows[1].SrcWidth)
	require.NotZero(t, windows[1].Phase)
}

func TestStripesAreContiguous(t *testing.T) {
	full := types.Size{Width: 4032, Height: 3024}
	for _, count := range []uint32{2, 3, 4, 5} {
		for _, dstWidth := range []uint32{1920, 1280, 640, 4032} {
			stripes := types.NewFrameStripes(full, count, 64, 2)
			windows := partitionAll(t, stripes, Request{
				Crop:     types.FullRect(full),
				DstWidth: dstWidth,
				Ratio:    scaling.Ratio(full.Width, dstWidth),
				Align:    scaling.AlignGeneral,
			})

			var next uint32
			for idx, w := range windows {
				require.Equal(t, SkipReasonNone, w.Skip, "count %d, dst %d, stripe %d", count, dstWidth, idx)
				require.Equal(t, next, w.DstX, "count %d, dst %d, stripe %d", count, dstWidth, idx)
				inWidth := stripes[idx].InputEnd() - stripes[idx].InputStart()
				require.LessOrEqual(t, w.SrcX+w.SrcWidth, inWidth)
				next = w.DstX + w.DstWidth
			}
			require.Equal(t, dstWidth, next)
		}
	}
}

func TestCropOutsideOfStripe(t *testing.T) {
	full := types.Size{Width: 4032, Height: 3024}
	stripes := types.NewFrameStripes(full, 2, 16, 2)
	windows := partitionAll(t, stripes, Request{
		Crop:     types.Rect{Width: 1000, Height: 1000},
		DstWidth: 500,
		Ratio:    scaling.Ratio(1000, 500),
		Align:    scaling.AlignGeneral,
	})
	require.Equal(t, SkipReasonNone, windows[0].Skip)
	require.Equal(t, uint32(500), windows[0].DstWidth)
	require.Equal(t, SkipReasonOutside, windows[1].Skip)
}

func TestMinimalOutputWidth(t *testing.T) {
	full := types.Size{Width: 4032, Height: 3024}
	stripes := types.NewFrameStripes(full, 2, 32, 2)
	windows := partitionAll(t, stripes, Request{
		Crop:     types.Rect{X: 2000, Width: 40, Height: 40},
		DstWidth: 20,
		Ratio:    scaling.Ratio(40, 20),
		Align:    scaling.AlignGeneral,
	})

	// the left stripe grows to the right
	require.Equal(t, uint32(0), windows[0].DstX)
	require.Equal(t, uint32(DefaultMinOutputWidth), windows[0].DstWidth)
	require.Equal(t, uint32(2000), windows[0].SrcX)
	require.Equal(t, uint32(32), windows[0].SrcWidth)

	// the right stripe grows to the left, over the left one
	require.Equal(t, uint32(4), windows[1].DstX)
	require.Equal(t, uint32(DefaultMinOutputWidth), windows[1].DstWidth)
	require.Equal(t, uint32(2008-1984), windows[1].SrcX)
	require.Equal(t, uint32(32), windows[1].SrcWidth)
}

func TestApplyNarrowsThePlan(t *testing.T) {
	plan := scaling.ComputePlan(context.Background(), scaling.Request{
		Src: types.Size{Width: 4032, Height: 3024},
		Dst: types.Size{Width: 640, Height: 360},
		Channel: scaling.Channel{
			HasPostChain:      true,
			PostChainMaxWidth: scaling.DefaultPostChainMaxWidth,
		},
	})
	require.True(t, plan.Post.Enabled)

	local := Apply(plan, Window{
		Position: PositionLeft,
		SrcWidth: 2016,
		DstWidth: 320,
		Align:    scaling.AlignGeneral,
	})
	require.Equal(t, uint32(2016), local.Poly.Src.Width)
	require.Equal(t, uint32(506), local.Poly.Dst.Width)
	require.Zero(t, local.Poly.Dst.Width%scaling.AlignGeneral)
	require.Equal(t, local.Poly.Dst.Width, local.Post.Src.Width)
	require.Equal(t, uint32(320), local.Output.Width)
	require.Equal(t, plan.Poly.HRatio, local.Poly.HRatio)
	require.Equal(t, plan.Output.Height, local.Output.Height)
}

func TestApplyAlignsCompressedPolyOutput(t *testing.T) {
	plan := scaling.ComputePlan(context.Background(), scaling.Request{
		Src:        types.Size{Width: 4032, Height: 3024},
		Dst:        types.Size{Width: 640, Height: 360},
		Compressed: true,
		Channel: scaling.Channel{
			HasPostChain:      true,
			PostChainMaxWidth: scaling.DefaultPostChainMaxWidth,
		},
	})
	require.True(t, plan.Post.Enabled)
	require.Equal(t, uint32(1120), plan.Poly.Dst.Width)

	for _, dstWidth := range []uint32{64, 300, 320, 333, 640} {
		local := Apply(plan, Window{
			Position: PositionMiddle,
			SrcWidth: 2016,
			DstWidth: dstWidth,
			Align:    scaling.AlignCompressedWidth,
		})
		require.Zero(t, local.Poly.Dst.Width%scaling.AlignCompressedWidth, "dst %d: poly %d", dstWidth, local.Poly.Dst.Width)
		require.LessOrEqual(t, local.Poly.Dst.Width, plan.Poly.Dst.Width)
		require.GreaterOrEqual(t, local.Poly.Dst.Width, scaling.ProjectUp(dstWidth, plan.Post.HRatio))
		require.Equal(t, local.Poly.Dst.Width, local.Post.Src.Width)
	}
}
