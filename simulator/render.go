package simulator

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	"github.com/xaionaro-go/mcscaler/regs"
	"github.com/xaionaro-go/mcscaler/types"
)

// Render produces the image the output channel would write for the given
// source, following the programmed poly-phase and post chains.
func (e *Engine) Render(
	ctx context.Context,
	src image.Image,
	ch int,
) (image.Image, error) {
	f := func(id regs.FieldID) uint32 {
		return e.Read(ctx, regs.Ch(id, ch))
	}
	if f(regs.FieldOutputEnable) == 0 {
		return nil, fmt.Errorf("output %d is not enabled", ch)
	}

	bounds := src.Bounds()
	rect := image.Rect(
		int(f(regs.FieldPolySrcX)), int(f(regs.FieldPolySrcY)),
		int(f(regs.FieldPolySrcX)+f(regs.FieldPolySrcWidth)),
		int(f(regs.FieldPolySrcY)+f(regs.FieldPolySrcHeight)),
	).Add(bounds.Min)
	if rect.Empty() || !rect.In(bounds) {
		return nil, fmt.Errorf("the source window %v of output %d is outside of the source %v", rect, ch, bounds)
	}

	img := image.Image(transform.Crop(src, rect))
	img = transform.Resize(img, int(f(regs.FieldPolyDstWidth)), int(f(regs.FieldPolyDstHeight)), transform.Linear)
	if f(regs.FieldPostEnable) != 0 {
		img = transform.Resize(img, int(f(regs.FieldPostDstWidth)), int(f(regs.FieldPostDstHeight)), transform.Linear)
	}

	flip := types.Flip(f(regs.FieldDMAFlip))
	if flip.Has(types.FlipX) {
		img = transform.FlipH(img)
	}
	if flip.Has(types.FlipY) {
		img = transform.FlipV(img)
	}
	return img, nil
}

// RenderHF produces the high-frequency detail layer of the source.
func (e *Engine) RenderHF(
	ctx context.Context,
	src image.Image,
) (image.Image, error) {
	if e.Read(ctx, regs.G(regs.FieldHFEnable)) == 0 {
		return nil, fmt.Errorf("the HF sub-path is not enabled")
	}
	width := int(e.Read(ctx, regs.G(regs.FieldHFWidth)))
	height := int(e.Read(ctx, regs.G(regs.FieldHFHeight)))
	img := image.Image(transform.Resize(src, width, height, transform.Linear))
	return blend.Difference(img, blur.Gaussian(img, 1.5)), nil
}

// TestPattern generates a gradient image with a distinct color per
// quadrant, suitable to check crops and flips.
func TestPattern(size types.Size) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(size.Width), int(size.Height)))
	w, h := int(size.Width), int(size.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				A: 0xff,
			}
			if x >= w/2 {
				c.B = 0x80
			}
			if y >= h/2 {
				c.B |= 0x40
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
