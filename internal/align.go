// align.go provides the integer rounding helpers shared by the size and
// address computations.

// Package internal contains helpers which are not a part of the public API.
package internal

import (
	"golang.org/x/exp/constraints"
)

// AlignUp rounds v up to the closest multiple of align. Zero align means
// no alignment.
func AlignUp[T constraints.Unsigned](v, align T) T {
	if align <= 1 {
		return v
	}
	return (v + align - 1) / align * align
}

// AlignDown rounds v down to the closest multiple of align.
func AlignDown[T constraints.Unsigned](v, align T) T {
	if align <= 1 {
		return v
	}
	return v / align * align
}

// DivRoundUp is ceil(a/b) for b > 0.
func DivRoundUp[T constraints.Unsigned](a, b T) T {
	return (a + b - 1) / b
}

func GCD[T constraints.Unsigned](a, b T) T {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func LCM[T constraints.Unsigned](a, b T) T {
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp returns v limited to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
