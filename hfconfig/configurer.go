package hfconfig

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/mcscaler/format"
	"github.com/xaionaro-go/mcscaler/internal"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/regs"
	"github.com/xaionaro-go/mcscaler/setfile"
	"github.com/xaionaro-go/mcscaler/types"
	"github.com/xaionaro-go/typing"
)

type Request struct {
	Config     types.HFConfig
	Buffers    types.BufferSet
	NumBuffers int
	NoiseIndex uint32

	// Tuning is nil when no setfile entry is active; the previously
	// programmed tuning is kept then.
	Tuning *setfile.HFTuning
}

type Params struct {
	NoiseIndex uint32
	Bracket    Bracket
	Weight     int32
}

func (p Params) String() string {
	return fmt.Sprintf("ni %d %s weight %d", p.NoiseIndex, p.Bracket, p.Weight)
}

type Result struct {
	Enabled bool

	// Reapplied reports the tuning was (re)programmed by this shot.
	Reapplied bool

	Params Params
}

// Configurer keeps the tuning state between the shots of a device.
type Configurer struct {
	lastNoiseIndex typing.Optional[uint32]
	lastTuning     *setfile.HFTuning
	params         Params
}

func NewConfigurer() *Configurer {
	return &Configurer{}
}

// Reset forces the next Configure to re-apply the tuning.
func (c *Configurer) Reset() {
	c.lastNoiseIndex.Unset()
	c.lastTuning = nil
	c.params = Params{}
}

func (c *Configurer) Configure(
	ctx context.Context,
	w regs.Writer,
	req Request,
) (_ret Result) {
	logger.Tracef(ctx, "Configure: ni %d", req.NoiseIndex)
	defer func() { logger.Tracef(ctx, "/Configure: %#+v", _ret) }()

	if !req.Config.Enabled {
		regs.WriteBool(ctx, w, regs.G(regs.FieldHFEnable), false)
		regs.WriteBool(ctx, w, regs.G(regs.FieldHFDMAEnable), false)
		return Result{}
	}

	if !c.writeDMA(ctx, w, req) {
		regs.WriteBool(ctx, w, regs.G(regs.FieldHFEnable), false)
		regs.WriteBool(ctx, w, regs.G(regs.FieldHFDMAEnable), false)
		return Result{}
	}
	regs.WriteBool(ctx, w, regs.G(regs.FieldHFEnable), true)

	result := Result{Enabled: true, Params: c.params}
	if req.Tuning == nil {
		return result
	}
	if c.lastNoiseIndex.IsSet() && c.lastNoiseIndex.Get() == req.NoiseIndex && c.lastTuning == req.Tuning {
		return result
	}

	bracket, ok := FindBracket(*req.Tuning, req.NoiseIndex)
	if !ok {
		logger.Debugf(ctx, "the HF tuning has no breakpoints, keeping the previous parameters")
		return result
	}
	c.params = Params{
		NoiseIndex: req.NoiseIndex,
		Bracket:    bracket,
		Weight:     Interpolate(*req.Tuning, bracket, req.NoiseIndex),
	}
	w.Write(ctx, regs.G(regs.FieldHFNoiseIndex), req.NoiseIndex)
	w.Write(ctx, regs.G(regs.FieldHFWeight), uint32(c.params.Weight))
	c.lastNoiseIndex.Set(req.NoiseIndex)
	c.lastTuning = req.Tuning
	logger.Debugf(ctx, "HF tuning applied: %s", c.params)

	result.Reapplied = true
	result.Params = c.params
	return result
}

func (c *Configurer) writeDMA(
	ctx context.Context,
	w regs.Writer,
	req Request,
) bool {
	size := req.Config.Size
	if size.IsZero() {
		logger.Warnf(ctx, "the HF sub-path is requested with zero size, disabling it for this frame")
		return false
	}
	numBuffers := internal.Max(req.NumBuffers, 1)
	if len(req.Buffers.Buffers) < numBuffers {
		logger.Warnf(ctx, "the HF sub-path has %d buffers, but %d are required; disabling it for this frame", len(req.Buffers.Buffers), numBuffers)
		return false
	}
	for idx := 0; idx < numBuffers; idx++ {
		b := req.Buffers.Buffers[idx]
		if len(b.Planes) == 0 || b.Planes[0] == 0 {
			logger.Warnf(ctx, "the HF sub-path has no DMA address in buffer #%d, disabling it for this frame", idx)
			return false
		}
	}

	w.Write(ctx, regs.G(regs.FieldHFWidth), size.Width)
	w.Write(ctx, regs.G(regs.FieldHFHeight), size.Height)
	w.Write(ctx, regs.G(regs.FieldHFStride), internal.AlignUp(size.Width, format.StrideAlign))
	for idx := 0; idx < numBuffers; idx++ {
		regs.WriteAddr(ctx, w,
			regs.Buf(regs.FieldHFAddrLo, 0, idx, 0),
			regs.Buf(regs.FieldHFAddrHi, 0, idx, 0),
			req.Buffers.Buffers[idx].Planes[0],
		)
	}
	regs.WriteBool(ctx, w, regs.G(regs.FieldHFDMAEnable), true)
	return true
}
