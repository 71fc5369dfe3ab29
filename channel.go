// channel.go programs one output channel for a shot.

package mcscaler

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaionaro-go/mcscaler/capability"
	"github.com/xaionaro-go/mcscaler/dma"
	"github.com/xaionaro-go/mcscaler/format"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/regs"
	"github.com/xaionaro-go/mcscaler/scaling"
	"github.com/xaionaro-go/mcscaler/setfile"
	"github.com/xaionaro-go/mcscaler/stripe"
	"github.com/xaionaro-go/mcscaler/types"
)

type DisableReason uint8

const (
	DisableReasonNone = DisableReason(iota)
	DisableReasonNotRequested
	DisableReasonNotPresent
	DisableReasonUnsupported
	DisableReasonInvalidSize
	DisableReasonInvalidFormat
	DisableReasonStripeOutside
	DisableReasonStripeZeroWidth
	DisableReasonNullAddress
	DisableReasonInvalidLayout
)

func (r DisableReason) String() string {
	switch r {
	case DisableReasonNone:
		return "none"
	case DisableReasonNotRequested:
		return "not_requested"
	case DisableReasonNotPresent:
		return "not_present"
	case DisableReasonUnsupported:
		return "unsupported"
	case DisableReasonInvalidSize:
		return "invalid_size"
	case DisableReasonInvalidFormat:
		return "invalid_format"
	case DisableReasonStripeOutside:
		return "stripe_outside"
	case DisableReasonStripeZeroWidth:
		return "stripe_zero_width"
	case DisableReasonNullAddress:
		return "null_address"
	case DisableReasonInvalidLayout:
		return "invalid_layout"
	default:
		return fmt.Sprintf("unknown_disable_reason_%d", uint8(r))
	}
}

// ChannelResult is the outcome of one output channel of a shot.
type ChannelResult struct {
	Enabled       bool
	DisableReason DisableReason

	// Err is the configuration error which disabled the channel, or which
	// made the channel fall back to the previous format.
	Err error

	Format format.DeviceFormat
	Plan   scaling.Plan
	Stripe *stripe.Window
	Layout *dma.Layout
}

func (d *Device) channelCrop(req *types.FrameRequest, cfg types.OutputConfig) types.Rect {
	if cfg.Crop.Width != 0 && cfg.Crop.Height != 0 {
		return cfg.Crop
	}
	return inputCrop(req.Input)
}

func (d *Device) programChannel(
	ctx context.Context,
	w regs.Writer,
	req *types.FrameRequest,
	ch int,
	entry *setfile.Entry,
) (_ret ChannelResult) {
	ctx = logger.CtxWithChannel(ctx, ch)
	logger.Tracef(ctx, "programChannel")
	defer func() { logger.Tracef(ctx, "/programChannel: %t %s", _ret.Enabled, _ret.DisableReason) }()

	cfg := req.Outputs[ch]
	disable := func(result ChannelResult, reason DisableReason, err error) ChannelResult {
		w.Write(ctx, regs.Ch(regs.FieldOutputEnable, ch), 0)
		w.Write(ctx, regs.Ch(regs.FieldDMAEnable, ch), 0)
		if reason != DisableReasonNotRequested {
			logger.Warnf(ctx, "output %d is disabled for %s: %s: %v", ch, req, reason, err)
			d.metrics.ChannelDisabled(ch, reason.String())
		}
		result.Enabled = false
		result.DisableReason = reason
		result.Err = err
		return result
	}

	if !cfg.Enabled {
		return disable(ChannelResult{}, DisableReasonNotRequested, nil)
	}
	c, err := d.capability.Channel(ch)
	if err != nil || !c.Present {
		return disable(ChannelResult{}, DisableReasonNotPresent, fmt.Errorf("the channel is not present in %s", d.variant))
	}
	if err := checkChannelFeatures(c, cfg); err != nil {
		return disable(ChannelResult{}, DisableReasonUnsupported, err)
	}

	crop := d.channelCrop(req, cfg)
	if err := d.checkChannelSize(crop, req.Input.Size, cfg.Target); err != nil {
		return disable(ChannelResult{}, DisableReasonInvalidSize, err)
	}

	applied, ok, err := d.formats.Apply(ctx, ch, cfg.Format)
	if !ok {
		return disable(ChannelResult{}, DisableReasonInvalidFormat, err)
	}
	result := ChannelResult{Enabled: true, Format: applied.Device, Err: err}

	compressed := cfg.Compression.IsEnabled()
	plan := scaling.ComputePlan(ctx, scaling.Request{
		Src:        crop.Size(),
		Dst:        cfg.Target,
		Compressed: compressed,
		Channel: scaling.Channel{
			HasPostChain:      c.HasPostChain,
			WideDownRatio:     c.WideDownRatio,
			PostChainMaxWidth: d.capability.PostChainMaxWidth,
		},
	})
	result.Plan = plan
	full := plan.Output

	srcX, offsetX := crop.X, uint32(0)
	if req.Stripe.IsActive() {
		align := uint32(scaling.AlignGeneral)
		if compressed {
			align = dma.OffsetAlign
		}
		win := d.partitioner.Partition(ctx, req.Stripe, stripe.Request{
			Channel:  ch,
			Crop:     crop,
			DstWidth: full.Width,
			Ratio:    plan.CombinedHRatio(),
			Align:    align,
		})
		result.Stripe = &win
		switch win.Skip {
		case stripe.SkipReasonNone:
		case stripe.SkipReasonOutside:
			return disable(result, DisableReasonStripeOutside, fmt.Errorf("the crop %s is outside of the stripe %d/%d", crop, req.Stripe.Index, req.Stripe.Count))
		default:
			return disable(result, DisableReasonStripeZeroWidth, fmt.Errorf("%s", win.Skip))
		}
		plan = stripe.Apply(plan, win)
		result.Plan = plan
		srcX = win.SrcX
		offsetX = win.DstX
		if cfg.Flip.Has(types.FlipX) {
			offsetX = full.Width - win.DstX - win.DstWidth
		}
	}

	layout, err := dma.Build(dma.Request{
		Format:      applied.Format,
		Compression: cfg.Compression,
		Size:        full,
		OffsetX:     offsetX,
		Buffers:     req.Destinations[ch],
		NumBuffers:  req.BatchSize(),
	})
	if err != nil {
		if errors.As(err, &dma.ErrNullAddress{}) {
			return disable(result, DisableReasonNullAddress, err)
		}
		return disable(result, DisableReasonInvalidLayout, err)
	}
	result.Layout = layout

	d.writeChannel(ctx, w, ch, channelProgram{
		Config:  cfg,
		Plan:    plan,
		SrcX:    srcX,
		SrcY:    crop.Y,
		Format:  applied.Device,
		Layout:  layout,
		Setfile: entry,
	})
	return result
}

func checkChannelFeatures(c capability.Channel, cfg types.OutputConfig) error {
	if cfg.Compression.IsEnabled() && !c.Compression {
		return fmt.Errorf("the channel does not support compression %s", cfg.Compression)
	}
	if cfg.HandOff && !c.HandOff {
		return fmt.Errorf("the channel does not support the encoder hand-off")
	}
	return nil
}

func (d *Device) checkChannelSize(crop types.Rect, input types.Size, target types.Size) error {
	if crop.Width == 0 || crop.Height == 0 || target.IsZero() {
		return fmt.Errorf("empty crop %s or target %s", crop, target)
	}
	if d.Debug.SkipSizeCheck.Load() {
		return nil
	}
	if !crop.Within(input) {
		return fmt.Errorf("the crop %s is outside of the input %s", crop, input)
	}
	maxOutput := d.capability.MaxOutput
	if target.Width > maxOutput.Width || target.Height > maxOutput.Height {
		return fmt.Errorf("the target %s exceeds the maximal output %s", target, maxOutput)
	}
	return nil
}

type channelProgram struct {
	Config  types.OutputConfig
	Plan    scaling.Plan
	SrcX    uint32
	SrcY    uint32
	Format  format.DeviceFormat
	Layout  *dma.Layout
	Setfile *setfile.Entry
}

func (d *Device) writeChannel(
	ctx context.Context,
	w regs.Writer,
	ch int,
	p channelProgram,
) {
	f := func(id regs.FieldID) regs.Field {
		return regs.Ch(id, ch)
	}
	poly, post := p.Plan.Poly, p.Plan.Post

	w.Write(ctx, f(regs.FieldOutputEnable), 1)
	w.Write(ctx, f(regs.FieldPolyEnable), 1)
	w.Write(ctx, f(regs.FieldPolySrcX), p.SrcX)
	w.Write(ctx, f(regs.FieldPolySrcY), p.SrcY)
	w.Write(ctx, f(regs.FieldPolySrcWidth), poly.Src.Width)
	w.Write(ctx, f(regs.FieldPolySrcHeight), poly.Src.Height)
	w.Write(ctx, f(regs.FieldPolyDstWidth), poly.Dst.Width)
	w.Write(ctx, f(regs.FieldPolyDstHeight), poly.Dst.Height)
	w.Write(ctx, f(regs.FieldPolyHRatio), poly.HRatio)
	w.Write(ctx, f(regs.FieldPolyVRatio), poly.VRatio)
	w.Write(ctx, f(regs.FieldPolyHPhase), poly.HPhase)
	w.Write(ctx, f(regs.FieldPolyVPhase), poly.VPhase)
	w.Write(ctx, f(regs.FieldPolyHCoefIndex), uint32(poly.HCoef))
	w.Write(ctx, f(regs.FieldPolyVCoefIndex), uint32(poly.VCoef))

	regs.WriteBool(ctx, w, f(regs.FieldPostEnable), post.Enabled)
	if post.Enabled {
		w.Write(ctx, f(regs.FieldPostDstWidth), post.Dst.Width)
		w.Write(ctx, f(regs.FieldPostDstHeight), post.Dst.Height)
		w.Write(ctx, f(regs.FieldPostHRatio), post.HRatio)
		w.Write(ctx, f(regs.FieldPostVRatio), post.VRatio)
		w.Write(ctx, f(regs.FieldPostHCoefIndex), uint32(post.HCoef))
		w.Write(ctx, f(regs.FieldPostVCoefIndex), uint32(post.VCoef))
	}

	if e := p.Setfile; e != nil {
		writeTaps(ctx, w, ch, regs.FieldPolyHCoef, e.Poly[poly.HCoef].H[:])
		writeTaps(ctx, w, ch, regs.FieldPolyVCoef, e.Poly[poly.VCoef].V[:])
		if post.Enabled {
			writeTaps(ctx, w, ch, regs.FieldPostHCoef, e.Post[post.HCoef].H[:])
			writeTaps(ctx, w, ch, regs.FieldPostVCoef, e.Post[post.VCoef].V[:])
		}
		if !e.Clamp.IsZero() {
			w.Write(ctx, f(regs.FieldClampYMin), uint32(e.Clamp.YMin))
			w.Write(ctx, f(regs.FieldClampYMax), uint32(e.Clamp.YMax))
			w.Write(ctx, f(regs.FieldClampCMin), uint32(e.Clamp.CMin))
			w.Write(ctx, f(regs.FieldClampCMax), uint32(e.Clamp.CMax))
		}
	}

	l := p.Layout
	w.Write(ctx, f(regs.FieldDMAEnable), 1)
	w.Write(ctx, f(regs.FieldDMAFormat), p.Format.Code)
	regs.WriteBool(ctx, w, f(regs.FieldDMAConv420), p.Format.Conv420)
	w.Write(ctx, f(regs.FieldDMAWidth), p.Plan.Output.Width)
	w.Write(ctx, f(regs.FieldDMAHeight), p.Plan.Output.Height)
	w.Write(ctx, f(regs.FieldDMAStrideY), l.Strides[0])
	if len(l.Strides) > 1 {
		w.Write(ctx, f(regs.FieldDMAStrideC), l.Strides[1])
	}
	if l.Compressed {
		w.Write(ctx, f(regs.FieldDMAHeaderStrideY), l.HeaderStrides[0])
		w.Write(ctx, f(regs.FieldDMAHeaderStrideC), l.HeaderStrides[1])
	}
	w.Write(ctx, f(regs.FieldDMAFlip), uint32(p.Config.Flip))
	w.Write(ctx, f(regs.FieldDMACompression), uint32(p.Config.Compression))
	for bufIdx, planes := range l.Buffers {
		for planeIdx, plane := range planes {
			regs.WriteAddr(ctx, w,
				regs.Buf(regs.FieldDMAAddrLo, ch, bufIdx, planeIdx),
				regs.Buf(regs.FieldDMAAddrHi, ch, bufIdx, planeIdx),
				plane.Addr,
			)
			if l.Compressed {
				regs.WriteAddr(ctx, w,
					regs.Buf(regs.FieldDMAHeaderAddrLo, ch, bufIdx, planeIdx),
					regs.Buf(regs.FieldDMAHeaderAddrHi, ch, bufIdx, planeIdx),
					plane.HeaderAddr,
				)
			}
		}
	}

	if p.Config.HandOff {
		w.Write(ctx, f(regs.FieldHWFCMode), 1)
		w.Write(ctx, f(regs.FieldHWFCTotalBytes), uint32(l.TotalBytes))
		w.Write(ctx, f(regs.FieldHWFCIndexReset), 1)
	} else {
		w.Write(ctx, f(regs.FieldHWFCMode), 0)
	}
}

func writeTaps(
	ctx context.Context,
	w regs.Writer,
	ch int,
	id regs.FieldID,
	taps []int16,
) {
	for idx, v := range taps {
		w.Write(ctx, regs.Tap(id, ch, idx), uint32(uint16(v)))
	}
}
