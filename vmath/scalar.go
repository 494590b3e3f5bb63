package vmath

import "math"

// Epsilon is the default tolerance for near-equality tests on unit vectors
const Epsilon = 1e-3

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Approach moves cur toward target by at most step, never overshooting
func Approach(cur, target, step float64) float64 {
	if step <= 0 {
		return cur
	}
	if cur < target {
		return math.Min(cur+step, target)
	}
	return math.Max(cur-step, target)
}

// SafeInv returns 1/x, or 0 when x is too small to invert
func SafeInv(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 0
	}
	return 1 / x
}

func DegToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// AcosClamped is math.Acos with the argument clamped to [-1, 1]
func AcosClamped(x float64) float64 {
	return math.Acos(Clamp(x, -1, 1))
}
