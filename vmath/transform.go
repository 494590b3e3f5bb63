package vmath

import "github.com/go-gl/mathgl/mgl64"

// Transform is an affine map held as a column-major homogeneous matrix
// The zero value is not the identity; use IdentityTransform
type Transform struct {
	m mgl64.Mat4
}

func IdentityTransform() Transform {
	return Transform{m: mgl64.Ident4()}
}

// FrameTransform maps coordinates along the axes x, y, z into world space at origin
func FrameTransform(origin, x, y, z Vec3F) Transform {
	return Transform{m: mgl64.Mat4FromCols(
		toMgl(x).Vec4(0),
		toMgl(y).Vec4(0),
		toMgl(z).Vec4(0),
		toMgl(origin).Vec4(1),
	)}
}

// HalfTurnZ rotates half a turn about +Z, exact in every component
func HalfTurnZ() Transform {
	return Transform{m: mgl64.Scale3D(-1, -1, 1)}
}

// Mul returns t∘o, applying o first
func (t Transform) Mul(o Transform) Transform {
	return Transform{m: t.m.Mul4(o.m)}
}

func (t Transform) Inverse() Transform {
	return Transform{m: t.m.Inv()}
}

// Point applies rotation and translation
func (t Transform) Point(p Vec3F) Vec3F {
	return fromMgl(mgl64.TransformCoordinate(toMgl(p), t.m))
}

// Vector applies rotation only
func (t Transform) Vector(v Vec3F) Vec3F {
	return fromMgl(mgl64.TransformNormal(toMgl(v), t.m))
}

func toMgl(v Vec3F) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) Vec3F {
	return Vec3F{v[0], v[1], v[2]}
}
