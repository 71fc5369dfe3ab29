// shot.go implements the per-frame programming of the engine.

package mcscaler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/mcscaler/hfconfig"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/regs"
	"github.com/xaionaro-go/mcscaler/setfile"
	"github.com/xaionaro-go/mcscaler/types"
	"github.com/xaionaro-go/xsync"
)

type ShotResult struct {
	FrameID  uint64
	Channels [types.NumOutputChannels]ChannelResult
	HF       hfconfig.Result

	// EnableMask has a bit set for every enabled output channel.
	EnableMask uint32

	// StagingIndex is the staging region the command list was built in.
	StagingIndex int
	Commits      int
}

func (r *ShotResult) String() string {
	var enabled []string
	for ch, c := range r.Channels {
		if c.Enabled {
			enabled = append(enabled, fmt.Sprintf("%d:%s", ch, c.Plan.Output))
		}
	}
	return fmt.Sprintf("frame %d: outputs [%s], hf %t", r.FrameID, strings.Join(enabled, " "), r.HF.Enabled)
}

// Shot programs the engine for the frame and triggers it. The frame is
// completed asynchronously, through HandleInterrupt and the Scheduler.
// Configuration errors of a single output disable that output only; the
// returned error means nothing was triggered.
func (d *Device) Shot(
	ctx context.Context,
	req *types.FrameRequest,
) (_ret *ShotResult, _err error) {
	ctx = d.ctx(ctx)
	logger.Tracef(ctx, "Shot: %s", req)
	defer func() { logger.Tracef(ctx, "/Shot: %s: %v", req, _err) }()
	return xsync.DoA2R2(ctx, &d.locker, d.shotLocked, ctx, req)
}

func (d *Device) shotLocked(
	ctx context.Context,
	req *types.FrameRequest,
) (*ShotResult, error) {
	startedAt := time.Now()
	if err := operationShot.check(d.State()); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrInvalidRequest{Reason: "no frame request"}
	}
	if prev := d.inFlight.Load(); prev != nil {
		return nil, ErrBusy{FrameID: prev.ID}
	}
	if req.BatchSize() > d.capability.MaxBatch {
		return nil, ErrInvalidRequest{Reason: fmt.Sprintf("batch of %d buffers exceeds the maximum %d", req.BatchSize(), d.capability.MaxBatch)}
	}

	result := &ShotResult{
		FrameID:      req.ID,
		StagingIndex: d.nextStaging,
	}
	var w regs.Writer = d.accessor
	if d.commandList != nil {
		d.commandList.Reset(d.staging[d.nextStaging].Bytes())
		d.nextStaging = (d.nextStaging + 1) % numStagingRegions
		w = d.commandList
	}

	if err := d.programInput(ctx, w, req); err != nil {
		return nil, err
	}

	if req.Stripe.IsActive() {
		d.loadStripeState(ctx, req.Stripe)
	}

	entry := d.setfileEntry(ctx)
	for ch := range req.Outputs {
		if ch >= d.capability.NumOutputs() && !req.Outputs[ch].Enabled {
			continue
		}
		r := d.programChannel(ctx, w, req, ch, entry)
		if r.Enabled {
			result.EnableMask |= 1 << ch
		}
		result.Channels[ch] = r
	}

	switch {
	case d.capability.HF:
		var tuning *setfile.HFTuning
		if entry != nil {
			tuning = &entry.HF
		}
		result.HF = d.hf.Configure(ctx, w, hfconfig.Request{
			Config:     req.HF,
			Buffers:    req.HFBuffers,
			NumBuffers: int(req.BatchSize()),
			NoiseIndex: req.NoiseIndex,
			Tuning:     tuning,
		})
	case req.HF.Enabled:
		logger.Warnf(ctx, "the HF sub-path is requested, but %s does not have it", d.variant)
	}

	w.Write(ctx, regs.G(regs.FieldEnableMask), result.EnableMask)
	w.Write(ctx, regs.G(regs.FieldBatchCount), req.BatchSize())
	regs.WriteBool(ctx, w, regs.G(regs.FieldTestPattern), d.Debug.TestPatternDMA.Load())

	if d.commandList != nil {
		if err := d.commandList.Commit(ctx); err != nil {
			return nil, fmt.Errorf("unable to commit the command list of %s: %w", req, err)
		}
		result.Commits = d.commandList.Commits()
	}
	d.enableMask = result.EnableMask
	if req.Stripe.IsActive() {
		d.stripeChannels = req.Stripe.Channels
	}

	if d.Debug.DumpRegsOnShot.Load() {
		var dump strings.Builder
		if err := regs.Dump(ctx, &dump, d.accessor, d.capability.NumOutputs()); err != nil {
			logger.Errorf(ctx, "unable to dump the registers: %v", err)
		}
		logger.Debugf(ctx, "shot %s:\n%s\nregisters:\n%s", req, spew.Sdump(result), dump.String())
	}

	d.inFlight.Store(req)
	d.irq.MarkInFlight(ctx)
	d.setState(StateRunning)
	d.accessor.Write(ctx, regs.G(regs.FieldStartTrigger), 1)
	d.metrics.ShotDuration(time.Since(startedAt))
	logger.Debugf(ctx, "triggered %s", result)
	return result, nil
}

// loadStripeState continues the frame from the progress of the previous
// stripe, unless the caller carries the progress in the context itself.
func (d *Device) loadStripeState(ctx context.Context, sc *types.StripeContext) {
	if sc.Index == 0 {
		sc.Channels = [types.NumOutputChannels]types.StripeChannelState{}
		return
	}
	for _, c := range sc.Channels {
		if c.Started {
			return
		}
	}
	logger.Tracef(ctx, "stripe %d/%d continues from the previous shot", sc.Index, sc.Count)
	sc.Channels = d.stripeChannels
}

func inputCrop(in types.InputConfig) types.Rect {
	if in.Crop.Width != 0 && in.Crop.Height != 0 {
		return in.Crop
	}
	return types.FullRect(in.Size)
}

func (d *Device) programInput(
	ctx context.Context,
	w regs.Writer,
	req *types.FrameRequest,
) error {
	in := req.Input
	if in.Size.IsZero() {
		return ErrInvalidRequest{Reason: "empty input"}
	}
	if !d.Debug.SkipSizeCheck.Load() {
		maxInput := d.capability.MaxInput
		if in.Size.Width > maxInput.Width || in.Size.Height > maxInput.Height {
			return ErrInvalidRequest{Reason: fmt.Sprintf("the input %s exceeds the maximal input %s", in.Size, maxInput)}
		}
	}
	crop := inputCrop(in)
	if !crop.Within(in.Size) {
		return ErrInvalidRequest{Reason: fmt.Sprintf("the input crop %s is outside of the input %s", crop, in.Size)}
	}
	applied, ok, err := d.inputFormat.Apply(ctx, 0, in.Format)
	if !ok {
		return ErrInvalidRequest{Reason: fmt.Sprintf("the input format: %v", err)}
	}
	if len(req.Source.Planes) == 0 || req.Source.Planes[0] == 0 {
		return ErrInvalidRequest{Reason: "the source buffer has no address"}
	}

	width := in.Size.Width
	striped := req.Stripe.IsActive()
	if striped {
		if err := req.Stripe.Validate(); err != nil {
			return ErrInvalidRequest{Reason: fmt.Sprintf("stripe: %v", err)}
		}
		if req.Stripe.Full != in.Size {
			return ErrInvalidRequest{Reason: fmt.Sprintf("the stripe full size %s does not match the input %s", req.Stripe.Full, in.Size)}
		}
		width = req.Stripe.InputEnd() - req.Stripe.InputStart()
	}

	w.Write(ctx, regs.G(regs.FieldInputWidth), width)
	w.Write(ctx, regs.G(regs.FieldInputHeight), in.Size.Height)
	w.Write(ctx, regs.G(regs.FieldInputFormat), applied.Device.Code)
	w.Write(ctx, regs.G(regs.FieldInputCropX), crop.X)
	w.Write(ctx, regs.G(regs.FieldInputCropY), crop.Y)
	w.Write(ctx, regs.G(regs.FieldInputCropWidth), crop.Width)
	w.Write(ctx, regs.G(regs.FieldInputCropHeight), crop.Height)
	regs.WriteBool(ctx, w, regs.G(regs.FieldInputStripeEnable), striped)
	regs.WriteAddr(ctx, w, regs.G(regs.FieldInputAddrLo), regs.G(regs.FieldInputAddrHi), req.Source.Planes[0])
	return nil
}

// setfileEntry returns the tuning to apply, or nil.
func (d *Device) setfileEntry(ctx context.Context) *setfile.Entry {
	if d.setfiles == nil || d.Debug.SkipSetfile.Load() {
		return nil
	}
	e := d.setfiles.Current(ctx, d.stream)
	if e == nil {
		logger.Debugf(ctx, "no setfile entry is selected for stream %d", d.stream)
	}
	return e
}
