package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector, Z up
type Vec3F struct {
	X, Y, Z float64
}

var (
	V3FZero = Vec3F{}
	V3FUp   = Vec3F{0, 0, 1}
)

func V3F(x, y, z float64) Vec3F {
	return Vec3F{x, y, z}
}

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

func V3FNeg(v Vec3F) Vec3F {
	return Vec3F{-v.X, -v.Y, -v.Z}
}

// V3FMulAdd returns a + b*s
func V3FMulAdd(a, b Vec3F, s float64) Vec3F {
	return Vec3F{a.X + b.X*s, a.Y + b.Y*s, a.Z + b.Z*s}
}

func V3FDot(a, b Vec3F) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3FCross(a, b Vec3F) Vec3F {
	return Vec3F{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func V3FMagSq(v Vec3F) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

func V3FDist(a, b Vec3F) float64 {
	return V3FMag(V3FSub(a, b))
}

// V3FNormalize returns the unit vector, zero vector stays zero
func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FNormalizeLen returns the unit vector and the original length
func V3FNormalizeLen(v Vec3F) (Vec3F, float64) {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}, 0
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}, mag
}

func V3FLerp(a, b Vec3F, t float64) Vec3F {
	return Vec3F{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// V3FReject removes the component of v along unit axis n
func V3FReject(v, n Vec3F) Vec3F {
	return V3FMulAdd(v, n, -V3FDot(v, n))
}

// V3FIsZero is an exact test, used where a zero vector has protocol meaning
func V3FIsZero(v Vec3F) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// V3FNearlyEqual compares component-wise within eps
func V3FNearlyEqual(a, b Vec3F, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps &&
		math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.Z-b.Z) <= eps
}

// V3FPerpendicular returns a unit vector orthogonal to unit n
// Picks the world axis least aligned with n to keep the cross product well conditioned
func V3FPerpendicular(n Vec3F) Vec3F {
	axis := Vec3F{1, 0, 0}
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	if ay <= ax && ay <= az {
		axis = Vec3F{0, 1, 0}
	} else if az <= ax && az <= ay {
		axis = Vec3F{0, 0, 1}
	}
	return V3FNormalize(V3FCross(n, axis))
}

// V3FRotateAxis rotates v about unit axis k by angle radians (Rodrigues)
func V3FRotateAxis(v, k Vec3F, angle float64) Vec3F {
	s, c := math.Sincos(angle)
	kv := V3FCross(k, v)
	kd := V3FDot(k, v) * (1 - c)
	return Vec3F{
		v.X*c + kv.X*s + k.X*kd,
		v.Y*c + kv.Y*s + k.Y*kd,
		v.Z*c + kv.Z*s + k.Z*kd,
	}
}

// ClosestPointOnLine projects p onto the line through a and b
// Returns the projected point and its unclamped fraction along a->b, degenerate lines yield (a, 0)
func ClosestPointOnLine(p, a, b Vec3F) (Vec3F, float64) {
	ab := V3FSub(b, a)
	lenSq := V3FMagSq(ab)
	if lenSq == 0 {
		return a, 0
	}
	t := V3FDot(V3FSub(p, a), ab) / lenSq
	return V3FMulAdd(a, ab, t), t
}
