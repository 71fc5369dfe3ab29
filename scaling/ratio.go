package scaling

// Ratio returns src/dst as a fixed-point number.
func Ratio(src, dst uint32) uint32 {
	if dst == 0 {
		return 0
	}
	return uint32((uint64(src) << PrecisionShift) / uint64(dst))
}

// Apply returns the length produced by scaling src by ratio.
func Apply(src, ratio uint32) uint32 {
	if ratio == 0 {
		return 0
	}
	return uint32((uint64(src) << PrecisionShift) / uint64(ratio))
}

// Project maps a length in the destination domain onto the source domain.
func Project(dst, ratio uint32) uint32 {
	return uint32((uint64(dst) * uint64(ratio)) >> PrecisionShift)
}

// ProjectUp is Project rounded up.
func ProjectUp(dst, ratio uint32) uint32 {
	return uint32((uint64(dst)*uint64(ratio) + uint64(RatioOne) - 1) >> PrecisionShift)
}

// Phase is the fractional part of the projection of dst.
func Phase(dst, ratio uint32) uint32 {
	return uint32((uint64(dst) * uint64(ratio)) & uint64(RatioOne-1))
}

// CoefficientIndex selects the filter coefficients set for the ratio: 0 is
// for up-scaling and x8/8, then x7/8 ... x2/8 and smaller.
func CoefficientIndex(ratio uint32) int {
	r := uint64(ratio)
	one := uint64(RatioOne)
	switch {
	case r <= one:
		return 0
	case r*7 <= one*8:
		return 1
	case r*6 <= one*8:
		return 2
	case r*5 <= one*8:
		return 3
	case r*4 <= one*8:
		return 4
	case r*3 <= one*8:
		return 5
	default:
		return 6
	}
}
