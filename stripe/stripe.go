// Package stripe projects the stripes of a wide input frame onto the output
// channels.
package stripe

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/mcscaler/internal"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/scaling"
	"github.com/xaionaro-go/mcscaler/types"
)

type Position uint8

const (
	PositionUndefined = Position(iota)
	PositionLeft
	PositionMiddle
	PositionRight
)

func (p Position) String() string {
	switch p {
	case PositionUndefined:
		return "undefined"
	case PositionLeft:
		return "left"
	case PositionMiddle:
		return "middle"
	case PositionRight:
		return "right"
	default:
		return fmt.Sprintf("unknown_position_%d", uint8(p))
	}
}

// Classify returns the position of the stripe index within count stripes.
func Classify(index, count uint32) Position {
	switch {
	case index == 0:
		return PositionLeft
	case index+1 >= count:
		return PositionRight
	default:
		return PositionMiddle
	}
}

const (
	// DefaultMinOutputWidth is the minimal width of the DMA write of one stripe.
	DefaultMinOutputWidth = 16
)

type SkipReason uint8

const (
	SkipReasonNone = SkipReason(iota)
	SkipReasonOutside
	SkipReasonZeroWidth
)

func (r SkipReason) String() string {
	switch r {
	case SkipReasonNone:
		return "none"
	case SkipReasonOutside:
		return "crop is outside of the stripe"
	case SkipReasonZeroWidth:
		return "zero width after the adjustment"
	default:
		return fmt.Sprintf("unknown_skip_reason_%d", uint8(r))
	}
}

// Request is the full-image geometry of one channel.
type Request struct {
	Channel int

	// Crop is in full-image coordinates.
	Crop types.Rect

	// DstWidth is the full-image output width of the channel.
	DstWidth uint32

	// Ratio is Crop.Width/DstWidth in fixed-point.
	Ratio uint32

	// Align is the data path alignment of the destination positions.
	Align uint32
}

// Window is the part of the channel produced by the current stripe.
type Window struct {
	Position Position
	Skip     SkipReason

	// SrcX is relative to the beginning of the input stripe buffer.
	SrcX     uint32
	SrcWidth uint32

	// Phase is the initial phase of the horizontal scaler.
	Phase uint32

	// DstX is where this stripe output starts within the full output.
	DstX     uint32
	DstWidth uint32

	// Align is the alignment of the stripe-local poly-phase output.
	Align uint32
}

func (w Window) String() string {
	if w.Skip != SkipReasonNone {
		return fmt.Sprintf("%s: skip (%s)", w.Position, w.Skip)
	}
	return fmt.Sprintf("%s: src %d+%d (phase 0x%x) -> dst %d+%d", w.Position, w.SrcX, w.SrcWidth, w.Phase, w.DstX, w.DstWidth)
}

type Partitioner struct {
	MinOutputWidth uint32
}

func NewPartitioner(minOutputWidth uint32) *Partitioner {
	if minOutputWidth == 0 {
		minOutputWidth = DefaultMinOutputWidth
	}
	return &Partitioner{MinOutputWidth: minOutputWidth}
}

func (p *Partitioner) project(req Request, x uint32) uint32 {
	if x <= req.Crop.X {
		return 0
	}
	dst := scaling.Apply(x-req.Crop.X, req.Ratio)
	return internal.AlignDown(internal.Min(dst, req.DstWidth), req.Align)
}

// Partition computes the window of the channel for the current stripe and
// records the progress into the channel state of the stripe context.
func (p *Partitioner) Partition(
	ctx context.Context,
	sc *types.StripeContext,
	req Request,
) (_ret Window) {
	logger.Tracef(ctx, "Partition: ch%d, stripe %d/%d", req.Channel, sc.Index, sc.Count)
	defer func() { logger.Tracef(ctx, "/Partition: ch%d: %s", req.Channel, _ret) }()

	w := Window{Position: Classify(sc.Index, sc.Count), Align: req.Align}
	state := &sc.Channels[req.Channel]
	if sc.Index == 0 {
		*state = types.StripeChannelState{}
	}

	regionStart, regionEnd := sc.RegionX, sc.RegionX+sc.RegionWidth
	cropStart, cropEnd := req.Crop.X, req.Crop.Right()
	if cropEnd <= regionStart || cropStart >= regionEnd || req.Ratio == 0 {
		w.Skip = SkipReasonOutside
		return w
	}

	var dstStart uint32
	switch {
	case cropStart >= regionStart:
		dstStart = 0
	case state.Started:
		dstStart = state.NextDstX
	default:
		dstStart = p.project(req, regionStart)
	}

	endsHere := cropEnd <= regionEnd
	dstEnd := req.DstWidth
	if !endsHere {
		dstEnd = p.project(req, regionEnd)
	}

	if dstEnd < dstStart+p.MinOutputWidth {
		if endsHere || w.Position == PositionRight {
			// grow to the left, over the output of the previous stripe
			if dstEnd > p.MinOutputWidth {
				dstStart = internal.AlignDown(dstEnd-p.MinOutputWidth, req.Align)
			} else {
				dstStart = 0
			}
		} else {
			// grow to the right, the next stripe starts later
			dstEnd = internal.Min(internal.AlignUp(dstStart+p.MinOutputWidth, req.Align), req.DstWidth)
		}
	}

	inStart, inEnd := sc.InputStart(), sc.InputEnd()
	srcStart := cropStart + scaling.Project(dstStart, req.Ratio)
	if srcStart < inStart {
		logger.Debugf(ctx, "ch%d: the stripe window starts at %d, before the input stripe at %d; the left margin is too narrow", req.Channel, srcStart, inStart)
		srcStart = inStart
	}
	srcEnd := internal.Min(cropStart+scaling.ProjectUp(dstEnd, req.Ratio), cropEnd)
	if srcEnd > inEnd {
		srcEnd = inEnd
		dstEnd = internal.Min(dstEnd, p.project(req, inEnd))
	}

	state.Started = true
	state.NextDstX = internal.Max(dstEnd, dstStart)
	if dstEnd <= dstStart || srcEnd <= srcStart {
		w.Skip = SkipReasonZeroWidth
		return w
	}

	w.SrcX = srcStart - inStart
	w.SrcWidth = srcEnd - srcStart
	w.Phase = scaling.Phase(dstStart, req.Ratio)
	w.DstX = dstStart
	w.DstWidth = dstEnd - dstStart
	internal.Assertf(ctx, w.SrcX+w.SrcWidth <= inEnd-inStart, "ch%d: the window %s exceeds the input stripe [%d, %d)", req.Channel, w, inStart, inEnd)
	return w
}

// Apply narrows a full-image plan to the stripe window. The stripe-local
// poly-phase output is aligned the same way as the full-image one and never
// exceeds it.
func Apply(plan scaling.Plan, w Window) scaling.Plan {
	plan.Poly.Src.Width = w.SrcWidth
	plan.Poly.HPhase = w.Phase
	plan.Output.Width = w.DstWidth
	if plan.Post.Enabled {
		polyDst := internal.AlignUp(scaling.ProjectUp(w.DstWidth, plan.Post.HRatio), w.Align)
		polyDst = internal.Min(polyDst, plan.Poly.Dst.Width)
		plan.Poly.Dst.Width = polyDst
		plan.Post.Src.Width = polyDst
		plan.Post.Dst.Width = w.DstWidth
		plan.Post.HPhase = scaling.Phase(w.DstX, plan.Post.HRatio)
	} else {
		plan.Poly.Dst.Width = w.DstWidth
	}
	return plan
}
