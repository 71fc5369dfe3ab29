package scaling

import (
	"fmt"

	"github.com/xaionaro-go/mcscaler/internal"
)

type Tier uint8

const (
	TierUndefined = Tier(iota)

	// TierA: the poly-phase scaler alone at its quality bound.
	TierA

	// TierB: the poly-phase scaler at the quality bound plus the post-chain.
	TierB

	// TierC: both scalers, the post-chain at its bound.
	TierC

	// TierD: out of the supported range, best effort.
	TierD
)

func (t Tier) String() string {
	switch t {
	case TierUndefined:
		return "undefined"
	case TierA:
		return "A"
	case TierB:
		return "B"
	case TierC:
		return "C"
	case TierD:
		return "D"
	default:
		return fmt.Sprintf("unknown_tier_%d", uint8(t))
	}
}

type axisInput struct {
	Src     uint32
	Dst     uint32
	Align   uint32
	HasPost bool
	Wide    bool
}

// polyDownBound is the poly-phase down bound for a channel without the post-chain.
func (a axisInput) polyDownBound() uint64 {
	if a.Wide {
		return PolyMaxRatioDown
	}
	return PolyQualityRatioDown
}

type axisResult struct {
	Tier       Tier
	PolyDst    uint32
	Out        uint32
	NeedsPost  bool
	OutOfRange bool
}

type tierRule struct {
	Tier  Tier
	Match func(a axisInput) bool
	Apply func(a axisInput) axisResult
}

func upWithinBound(a axisInput) bool {
	return uint64(a.Dst) <= uint64(a.Src)*PolyRatioUp
}

// postTiers is the decision table for channels with the post-chain, matched
// in order.
var postTiers = []tierRule{
	{
		Tier: TierA,
		Match: func(a axisInput) bool {
			return uint64(a.Src) <= uint64(a.Dst)*PolyQualityRatioDown && upWithinBound(a)
		},
		Apply: func(a axisInput) axisResult {
			return axisResult{Tier: TierA, PolyDst: a.Dst, Out: a.Dst}
		},
	},
	{
		Tier: TierB,
		Match: func(a axisInput) bool {
			return uint64(a.Src) > uint64(a.Dst)*PolyQualityRatioDown && uint64(a.Src) <= uint64(a.Dst)*WideRatioDown
		},
		Apply: func(a axisInput) axisResult {
			return fitPost(a, TierB, PolyQualityRatioDown, internal.DivRoundUp(a.Src, PolyQualityRatioDown))
		},
	},
	{
		Tier: TierC,
		Match: func(a axisInput) bool {
			return uint64(a.Src) > uint64(a.Dst)*WideRatioDown && uint64(a.Src) <= uint64(a.Dst)*MaxRatioDown
		},
		Apply: func(a axisInput) axisResult {
			return fitPost(a, TierC, PolyMaxRatioDown, a.Dst*PostRatioDown)
		},
	},
	{
		Tier:  TierD,
		Match: func(a axisInput) bool { return true },
		Apply: applyTierD,
	},
}

// fitPost places the poly-phase output of a post-scaled axis on the
// alignment grid, as close to target as the bounds of both stages allow.
// When no aligned length is within the bounds, the output is grown to what
// the post-chain bound allows and the result is out of range.
func fitPost(a axisInput, tier Tier, polyBound uint32, target uint32) axisResult {
	lower := internal.Max(a.Dst, internal.DivRoundUp(a.Src, polyBound))
	upper := a.Dst * PostRatioDown
	polyDst := internal.Clamp(target, lower, upper)
	if up := internal.AlignUp(polyDst, a.Align); up <= upper {
		return axisResult{Tier: tier, PolyDst: up, Out: a.Dst, NeedsPost: true}
	}
	if down := internal.AlignDown(polyDst, a.Align); down >= lower {
		return axisResult{Tier: tier, PolyDst: down, Out: a.Dst, NeedsPost: true}
	}
	polyDst = internal.AlignUp(lower, a.Align)
	return axisResult{
		Tier:       tier,
		PolyDst:    polyDst,
		Out:        internal.Max(a.Dst, internal.DivRoundUp(polyDst, PostRatioDown)),
		NeedsPost:  true,
		OutOfRange: true,
	}
}

// applyTierD is the best-effort fallback: the engine is driven at its
// maximal ratios and the output size is whatever these ratios give.
func applyTierD(a axisInput) axisResult {
	if !upWithinBound(a) {
		polyDst := a.Src * PolyRatioUp
		return axisResult{Tier: TierD, PolyDst: polyDst, Out: polyDst, OutOfRange: true}
	}
	polyDst := internal.AlignUp(internal.DivRoundUp(a.Src, PolyMaxRatioDown), a.Align)
	out := internal.Max(a.Dst, internal.DivRoundUp(polyDst, PostRatioDown))
	return axisResult{Tier: TierD, PolyDst: polyDst, Out: out, NeedsPost: true, OutOfRange: true}
}

// noPostTiers is the decision table for channels without the post-chain.
var noPostTiers = []tierRule{
	{
		Tier: TierA,
		Match: func(a axisInput) bool {
			return uint64(a.Src) <= uint64(a.Dst)*a.polyDownBound() && upWithinBound(a)
		},
		Apply: func(a axisInput) axisResult {
			return axisResult{Tier: TierA, PolyDst: a.Dst, Out: a.Dst}
		},
	},
	{
		Tier:  TierD,
		Match: func(a axisInput) bool { return true },
		Apply: func(a axisInput) axisResult {
			return clampPolyOnly(a, a.polyDownBound())
		},
	},
}

// clampPolyOnly fits the poly-phase scaler alone into its bounds.
func clampPolyOnly(a axisInput, downBound uint64) axisResult {
	if !upWithinBound(a) {
		polyDst := a.Src * PolyRatioUp
		return axisResult{Tier: TierD, PolyDst: polyDst, Out: polyDst, OutOfRange: true}
	}
	if uint64(a.Src) <= uint64(a.Dst)*downBound {
		return axisResult{Tier: TierA, PolyDst: a.Dst, Out: a.Dst}
	}
	polyDst := internal.AlignUp(internal.DivRoundUp(a.Src, uint32(downBound)), a.Align)
	return axisResult{Tier: TierD, PolyDst: polyDst, Out: polyDst, OutOfRange: true}
}

func selectTier(a axisInput) axisResult {
	rules := noPostTiers
	if a.HasPost {
		rules = postTiers
	}
	for _, rule := range rules {
		if rule.Match(a) {
			return rule.Apply(a)
		}
	}
	panic("the decision table is not exhaustive")
}
