// Package hfconfig programs the high-frequency (detail enhancement) sub-path
// and interpolates its tuning by the noise index of the frame.
package hfconfig

import (
	"fmt"

	"github.com/xaionaro-go/mcscaler/setfile"
)

type BracketKind uint8

const (
	BracketKindUndefined = BracketKind(iota)
	BracketKindBeforeFirst
	BracketKindAfterLast
	BracketKindExact
	BracketKindBetween
)

func (k BracketKind) String() string {
	switch k {
	case BracketKindUndefined:
		return "undefined"
	case BracketKindBeforeFirst:
		return "before_first"
	case BracketKindAfterLast:
		return "after_last"
	case BracketKindExact:
		return "exact"
	case BracketKindBetween:
		return "between"
	default:
		return fmt.Sprintf("unknown_bracket_kind_%d", uint8(k))
	}
}

// Bracket is the pair of breakpoints enclosing a noise index. Min equals
// Max for every kind except BracketKindBetween.
type Bracket struct {
	Kind BracketKind
	Min  int
	Max  int
}

func (b Bracket) String() string {
	return fmt.Sprintf("%s[%d:%d]", b.Kind, b.Min, b.Max)
}

// FindBracket returns false if the tuning has no breakpoints.
func FindBracket(t setfile.HFTuning, noiseIndex uint32) (Bracket, bool) {
	n := int(t.NumBreakpoints)
	if n == 0 {
		return Bracket{}, false
	}
	if n > setfile.MaxBreakpoints {
		n = setfile.MaxBreakpoints
	}
	switch {
	case noiseIndex < t.NoiseIndex[0]:
		return Bracket{Kind: BracketKindBeforeFirst}, true
	case noiseIndex > t.NoiseIndex[n-1]:
		return Bracket{Kind: BracketKindAfterLast, Min: n - 1, Max: n - 1}, true
	}
	for idx := 0; idx < n; idx++ {
		if noiseIndex == t.NoiseIndex[idx] {
			return Bracket{Kind: BracketKindExact, Min: idx, Max: idx}, true
		}
		if idx+1 < n && noiseIndex < t.NoiseIndex[idx+1] {
			return Bracket{Kind: BracketKindBetween, Min: idx, Max: idx + 1}, true
		}
	}
	return Bracket{Kind: BracketKindAfterLast, Min: n - 1, Max: n - 1}, true
}

// Interpolate returns the weight for the noise index. The weight is
// interpolated linearly only strictly between two breakpoints.
func Interpolate(t setfile.HFTuning, b Bracket, noiseIndex uint32) int32 {
	if b.Kind != BracketKindBetween {
		return t.Weight[b.Min]
	}
	x0, x1 := int64(t.NoiseIndex[b.Min]), int64(t.NoiseIndex[b.Max])
	y0, y1 := int64(t.Weight[b.Min]), int64(t.Weight[b.Max])
	return int32(y0 + (y1-y0)*(int64(noiseIndex)-x0)/(x1-x0))
}
