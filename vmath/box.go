package vmath

import "math"

// Box is an axis-aligned bounding box
type Box struct {
	Min, Max Vec3F
}

// BoxAround returns a cube of half-size h centred on c
func BoxAround(c Vec3F, h float64) Box {
	return Box{
		Min: Vec3F{c.X - h, c.Y - h, c.Z - h},
		Max: Vec3F{c.X + h, c.Y + h, c.Z + h},
	}
}

func (b Box) Center() Vec3F {
	return V3FScale(V3FAdd(b.Min, b.Max), 0.5)
}

func (b Box) Contains(p Vec3F) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Expand grows the box by d on every side
func (b Box) Expand(d float64) Box {
	return Box{
		Min: Vec3F{b.Min.X - d, b.Min.Y - d, b.Min.Z - d},
		Max: Vec3F{b.Max.X + d, b.Max.Y + d, b.Max.Z + d},
	}
}

// Sweep extends the box along delta, covering its start and end placement
func (b Box) Sweep(delta Vec3F) Box {
	moved := Box{Min: V3FAdd(b.Min, delta), Max: V3FAdd(b.Max, delta)}
	return b.Union(moved)
}

func (b Box) Union(o Box) Box {
	return Box{
		Min: Vec3F{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Vec3F{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// SegmentHit is the result of clipping a segment against a box
type SegmentHit struct {
	Hit         bool
	StartInside bool
	Fraction    float64 // entry fraction along the segment
	Normal      Vec3F   // outward face normal at entry
}

// ClipSegment intersects segment a->c with the box using the slab method
// Touching or grazing a face is not a hit, so a point resting on a surface can slide along it
func (b Box) ClipSegment(a, c Vec3F) SegmentHit {
	d := V3FSub(c, a)
	tEnter, tExit := math.Inf(-1), math.Inf(1)
	var normal Vec3F

	origin := [3]float64{a.X, a.Y, a.Z}
	dir := [3]float64{d.X, d.Y, d.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] <= lo[axis] || origin[axis] >= hi[axis] {
				return SegmentHit{}
			}
			continue
		}
		inv := 1 / dir[axis]
		t0 := (lo[axis] - origin[axis]) * inv
		t1 := (hi[axis] - origin[axis]) * inv
		sign := -1.0
		if t0 > t1 {
			t0, t1 = t1, t0
			sign = 1.0
		}
		if t0 > tEnter {
			tEnter = t0
			normal = Vec3F{}
			switch axis {
			case 0:
				normal.X = sign
			case 1:
				normal.Y = sign
			case 2:
				normal.Z = sign
			}
		}
		if t1 < tExit {
			tExit = t1
		}
	}

	if tEnter >= tExit || tExit <= 0 || tEnter > 1 {
		return SegmentHit{}
	}
	if tEnter < 0 {
		return SegmentHit{Hit: true, StartInside: true}
	}
	return SegmentHit{Hit: true, Fraction: tEnter, Normal: normal}
}
