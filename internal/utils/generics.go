// Package utils holds the small pieces of math shared by every rendering
// component: Web Mercator projection, coordinate wrapping, and RGB-to-palette
// color conversion.
package utils

import "golang.org/x/exp/constraints"

// Number mirrors sparques-fansiterm's generic numeric constraint, used for
// the handful of clamp/abs helpers that recur across the rasterizer.
type Number interface {
	constraints.Integer | constraints.Float
}

func Abs[N Number](n N) N {
	if n < 0 {
		return -n
	}
	return n
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp[N Number](v, lo, hi N) N {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func Min[N Number](a, b N) N {
	if a < b {
		return a
	}
	return b
}

func Max[N Number](a, b N) N {
	if a > b {
		return a
	}
	return b
}
