// Package scaling computes the poly-phase and post-chain scaler setup of an
// output channel.
package scaling

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/mcscaler/internal"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/types"
)

// Stage is the programming of one scaler stage.
type Stage struct {
	Enabled bool
	Src     types.Size
	Dst     types.Size
	HRatio  uint32
	VRatio  uint32

	// HPhase is the initial horizontal phase (non-zero in stripe mode only).
	HPhase uint32
	VPhase uint32

	HCoef int
	VCoef int
}

type Plan struct {
	Poly Stage
	Post Stage

	HTier Tier
	VTier Tier

	// Output is the size actually produced, it differs from the requested
	// one only when the request is out of range.
	Output types.Size

	OutOfRange bool

	// PostForcedOff reports the post-chain was needed, but its line buffer
	// is too narrow for the poly-phase output.
	PostForcedOff bool
}

func (p Plan) String() string {
	return fmt.Sprintf("poly %s->%s (%s/%s), post %t %s->%s, out %s",
		p.Poly.Src, p.Poly.Dst, p.HTier, p.VTier, p.Post.Enabled, p.Post.Src, p.Post.Dst, p.Output)
}

// CombinedHRatio is the horizontal source/output ratio of both stages.
func (p Plan) CombinedHRatio() uint32 {
	return Ratio(p.Poly.Src.Width, p.Output.Width)
}

// Channel is the part of the channel capability the planner depends on.
type Channel struct {
	HasPostChain      bool
	WideDownRatio     bool
	PostChainMaxWidth uint32
}

type Request struct {
	// Src is the crop size on the input of the channel.
	Src types.Size
	Dst types.Size

	// Compressed selects the alignment of the compressed data path.
	Compressed bool

	Channel Channel
}

func (r Request) widthAlign() uint32 {
	if r.Compressed {
		return AlignCompressedWidth
	}
	return AlignGeneral
}

func (r Request) heightAlign() uint32 {
	if r.Compressed {
		return AlignCompressedHeight
	}
	return AlignGeneral
}

// ComputePlan computes the scaler setup. It never fails: out-of-range requests are
// logged and clamped to the closest achievable size.
func ComputePlan(ctx context.Context, req Request) Plan {
	postMaxWidth := req.Channel.PostChainMaxWidth
	if postMaxWidth == 0 {
		postMaxWidth = DefaultPostChainMaxWidth
	}
	h := selectTier(axisInput{
		Src:     req.Src.Width,
		Dst:     req.Dst.Width,
		Align:   req.widthAlign(),
		HasPost: req.Channel.HasPostChain,
		Wide:    req.Channel.WideDownRatio,
	})
	v := selectTier(axisInput{
		Src:     req.Src.Height,
		Dst:     req.Dst.Height,
		Align:   req.heightAlign(),
		HasPost: req.Channel.HasPostChain,
		Wide:    req.Channel.WideDownRatio,
	})

	plan := Plan{
		HTier:      h.Tier,
		VTier:      v.Tier,
		OutOfRange: h.OutOfRange || v.OutOfRange,
	}
	if plan.OutOfRange {
		logger.Warnf(ctx, "scaling %s -> %s is out of the supported range (tiers %s/%s), clamping", req.Src, req.Dst, h.Tier, v.Tier)
	}

	post := h.NeedsPost || v.NeedsPost
	if post && h.PolyDst > postMaxWidth {
		logger.Debugf(ctx, "the post-chain input width %d exceeds the line buffer %d, disabling the post-chain", h.PolyDst, postMaxWidth)
		post = false
		plan.PostForcedOff = true
		h = revertToPolyOnly(ctx, req.Src.Width, req.Dst.Width, req.widthAlign())
		v = revertToPolyOnly(ctx, req.Src.Height, req.Dst.Height, req.heightAlign())
		if h.OutOfRange || v.OutOfRange {
			plan.OutOfRange = true
		}
	}

	if post {
		h.PolyDst = adjustPostInput(ctx, "horizontal", req.Src.Width, h, req.widthAlign(), postMaxWidth)
		v.PolyDst = adjustPostInput(ctx, "vertical", req.Src.Height, v, req.heightAlign(), 0)
	}

	plan.Output = types.Size{Width: h.Out, Height: v.Out}
	plan.Poly = Stage{
		Enabled: true,
		Src:     req.Src,
		Dst:     types.Size{Width: h.PolyDst, Height: v.PolyDst},
		HRatio:  Ratio(req.Src.Width, h.PolyDst),
		VRatio:  Ratio(req.Src.Height, v.PolyDst),
	}
	plan.Poly.HCoef = CoefficientIndex(plan.Poly.HRatio)
	plan.Poly.VCoef = CoefficientIndex(plan.Poly.VRatio)
	if post {
		plan.Post = Stage{
			Enabled: true,
			Src:     plan.Poly.Dst,
			Dst:     plan.Output,
			HRatio:  Ratio(h.PolyDst, h.Out),
			VRatio:  Ratio(v.PolyDst, v.Out),
		}
		plan.Post.HCoef = CoefficientIndex(plan.Post.HRatio)
		plan.Post.VCoef = CoefficientIndex(plan.Post.VRatio)
	}
	logger.Tracef(ctx, "plan %s -> %s: %s", req.Src, req.Dst, plan)
	return plan
}

// revertToPolyOnly drives the poly-phase scaler directly to the requested
// length, clamping to its maximal down ratio.
func revertToPolyOnly(ctx context.Context, src, dst, align uint32) axisResult {
	r := clampPolyOnly(axisInput{Src: src, Dst: dst, Align: align}, PolyMaxRatioDown)
	if r.OutOfRange {
		logger.Warnf(ctx, "scaling %d -> %d by the poly-phase scaler alone is out of range, the output is %d", src, dst, r.Out)
	}
	return r
}

// adjustPostInput moves the post-chain input length (the poly-phase output)
// to the closest value giving a post-chain ratio which is an exact multiple
// of 1/PostRatioGranularity while keeping both stages within their bounds.
// maxLen of zero means no line-buffer limit.
func adjustPostInput(
	ctx context.Context,
	axis string,
	src uint32,
	r axisResult,
	align uint32,
	maxLen uint32,
) uint32 {
	if isExactPostRatio(r.PolyDst, r.Out) {
		return r.PolyDst
	}

	polyBound := uint32(PolyQualityRatioDown)
	if r.Tier == TierC || r.Tier == TierD {
		polyBound = PolyMaxRatioDown
	}
	lower := internal.Max(r.Out, internal.DivRoundUp(src, polyBound))
	upper := r.Out * PostRatioDown
	if maxLen != 0 {
		upper = internal.Min(upper, maxLen)
	}
	valid := func(c uint32) bool {
		return c >= lower && c <= upper && isExactPostRatio(c, r.Out)
	}

	step := internal.LCM(r.Out/internal.GCD(r.Out, PostRatioGranularity), internal.Max(align, 1))
	up := internal.AlignUp(r.PolyDst, step)
	down := internal.AlignDown(r.PolyDst, step)
	candidates := []uint32{up, down}
	if r.PolyDst-down < up-r.PolyDst {
		candidates = []uint32{down, up}
	}
	for _, c := range candidates {
		if valid(c) {
			logger.Tracef(ctx, "%s post-chain input %d -> %d (output %d)", axis, r.PolyDst, c, r.Out)
			return c
		}
	}
	logger.Warnf(ctx, "unable to find a %s post-chain input length near %d giving an exact ratio for %d", axis, r.PolyDst, r.Out)
	return r.PolyDst
}

func isExactPostRatio(polyDst, out uint32) bool {
	if out == 0 {
		return false
	}
	return (uint64(polyDst)*PostRatioGranularity)%uint64(out) == 0
}
