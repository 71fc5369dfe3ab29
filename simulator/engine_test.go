package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mcscaler/irq"
	"github.com/xaionaro-go/mcscaler/regs"
	"github.com/xaionaro-go/mcscaler/types"
)

func TestEngineReset(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	e.Set(ctx, regs.G(regs.FieldIntStatus), uint32(irq.StatusFrameEnd))

	e.Write(ctx, regs.G(regs.FieldSwReset), 1)
	require.Zero(t, e.Read(ctx, regs.G(regs.FieldSwResetStatus)))
	require.Zero(t, e.Read(ctx, regs.G(regs.FieldIntStatus)))

	e.StuckReset.Store(true)
	e.Write(ctx, regs.G(regs.FieldSwReset), 1)
	require.Equal(t, uint32(1), e.Read(ctx, regs.G(regs.FieldSwResetStatus)))
}

func TestEngineIntClear(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	e.Set(ctx, regs.G(regs.FieldIntStatus), uint32(irq.StatusFrameStart|irq.StatusFrameEnd))
	e.Write(ctx, regs.G(regs.FieldIntClear), uint32(irq.StatusFrameStart))
	require.Equal(t, uint32(irq.StatusFrameEnd), e.Read(ctx, regs.G(regs.FieldIntStatus)))
}

func TestEngineFrame(t *testing.T) {
	ctx := context.Background()
	statuses := make(chan irq.Status, 4)
	var e *Engine
	e = New(func(ctx context.Context) {
		status := e.Read(ctx, regs.G(regs.FieldIntStatus))
		e.Write(ctx, regs.G(regs.FieldIntClear), status)
		statuses <- irq.Status(status)
	})
	e.FailNextFrame.Store(0x0100)

	e.Write(ctx, regs.G(regs.FieldStartTrigger), 1)
	first := <-statuses
	require.True(t, first.Has(irq.StatusFrameStart))
	require.Equal(t, irq.Status(0x0100), first.Errors())
	second := <-statuses
	require.True(t, second.Has(irq.StatusFrameEnd))
	require.True(t, second.Has(irq.StatusDMAEnd))
	require.Zero(t, second.Errors())
	require.Equal(t, uint64(1), e.Frames.Load())
	require.Zero(t, e.Read(ctx, regs.G(regs.FieldStartTrigger)))

	e.DropFrameEnd.Store(true)
	e.Write(ctx, regs.G(regs.FieldStartTrigger), 1)
	require.True(t, (<-statuses).Has(irq.StatusFrameStart))
	select {
	case s := <-statuses:
		t.Fatalf("unexpected interrupt %s", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEngineRender(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	src := TestPattern(types.Size{Width: 64, Height: 32})
	require.Equal(t, 64, src.Bounds().Dx())

	_, err := e.Render(ctx, src, 0)
	require.Error(t, err)

	ch := func(id regs.FieldID, v uint32) {
		e.Write(ctx, regs.Ch(id, 0), v)
	}
	ch(regs.FieldOutputEnable, 1)
	ch(regs.FieldPolySrcX, 32)
	ch(regs.FieldPolySrcY, 0)
	ch(regs.FieldPolySrcWidth, 32)
	ch(regs.FieldPolySrcHeight, 32)
	ch(regs.FieldPolyDstWidth, 16)
	ch(regs.FieldPolyDstHeight, 16)

	img, err := e.Render(ctx, src, 0)
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())
	require.Equal(t, 16, img.Bounds().Dy())
	_, _, b, _ := img.At(0, 0).RGBA()
	require.NotZero(t, b, "the right half of the pattern is expected")

	ch(regs.FieldPostEnable, 1)
	ch(regs.FieldPostDstWidth, 8)
	ch(regs.FieldPostDstHeight, 4)
	ch(regs.FieldDMAFlip, uint32(types.FlipX|types.FlipY))
	img, err = e.Render(ctx, src, 0)
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 4, img.Bounds().Dy())

	ch(regs.FieldPolySrcWidth, 64)
	_, err = e.Render(ctx, src, 0)
	require.Error(t, err)
}

func TestEngineRenderHF(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	src := TestPattern(types.Size{Width: 32, Height: 32})
	_, err := e.RenderHF(ctx, src)
	require.Error(t, err)

	e.Write(ctx, regs.G(regs.FieldHFEnable), 1)
	e.Write(ctx, regs.G(regs.FieldHFWidth), 16)
	e.Write(ctx, regs.G(regs.FieldHFHeight), 16)
	img, err := e.RenderHF(ctx, src)
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())
}
