package world

import (
	"github.com/lixenwraith/paintblob/parameter"
	"github.com/lixenwraith/paintblob/vmath"
)

const (
	MaxRayEntities = parameter.MaxRayEntities
	MaxRaySegments = parameter.MaxRaySegments
)

// Ray is a bounded query segment, Extent > 0 sweeps a capsule of that radius
type Ray struct {
	Start, End vmath.Vec3F
	Extent     float64
}

func (r Ray) Delta() vmath.Vec3F {
	return vmath.V3FSub(r.End, r.Start)
}

func (r Ray) Length() float64 {
	return vmath.V3FMag(r.Delta())
}

// Reverse returns the same ray traced End->Start
func (r Ray) Reverse() Ray {
	return Ray{Start: r.End, End: r.Start, Extent: r.Extent}
}

const maxFilterExcludes = 4

// Filter excludes entities from a query
// Fixed capacity keeps filters on the stack
type Filter struct {
	exclude        [maxFilterExcludes]Handle
	n              int
	ExcludePlayers bool
}

// Skip returns a copy of f that also excludes h, zero handles and overflow are ignored
func (f Filter) Skip(h Handle) Filter {
	if h.IsZero() || f.n == maxFilterExcludes {
		return f
	}
	f.exclude[f.n] = h
	f.n++
	return f
}

// Excludes reports whether e is filtered out
func (f *Filter) Excludes(e Entity) bool {
	if f.ExcludePlayers && e.Kind() == KindPlayer {
		return true
	}
	h := e.Handle()
	for i := 0; i < f.n; i++ {
		if f.exclude[i] == h {
			return true
		}
	}
	return false
}

// Trace is the result of a swept query
type Trace struct {
	Hit        bool
	StartSolid bool
	Fraction   float64 // 1 when nothing was hit
	EndPos     vmath.Vec3F
	Normal     vmath.Vec3F
	Entity     Handle // blocker, zero for no hit
}

// MissTrace returns a trace that travelled the whole ray
func MissTrace(r Ray) Trace {
	return Trace{Fraction: 1, EndPos: r.End}
}

// Segment is one straight piece of a portal-aware ray
type Segment struct {
	Start, End vmath.Vec3F
	// Portal is entered at End, zero when the segment ends at the target or a blocker
	Portal Handle
	// Trace is the segment's own trace, Fraction relative to the remaining ray length at Start
	Trace Trace
}

// SegmentHit is an entity touched by a segment of a portal-aware ray
type SegmentHit struct {
	Entity  Entity
	Segment int
}

// PortalTrace is caller-owned storage for TraceThroughPortals
type PortalTrace struct {
	Segments    [MaxRaySegments]Segment
	NumSegments int
	Hits        [MaxRayEntities]SegmentHit
	NumHits     int

	SegmentOverflow bool
	HitOverflow     bool
}

// Reset clears counts and overflow flags, storage is reused
func (p *PortalTrace) Reset() {
	p.NumSegments = 0
	p.NumHits = 0
	p.SegmentOverflow = false
	p.HitOverflow = false
}

// AddSegment appends s, reports false and flags overflow when full
func (p *PortalTrace) AddSegment(s Segment) bool {
	if p.NumSegments == MaxRaySegments {
		p.SegmentOverflow = true
		return false
	}
	p.Segments[p.NumSegments] = s
	p.NumSegments++
	return true
}

// AddHit appends an entity hit, reports false and flags overflow when full
func (p *PortalTrace) AddHit(e Entity, segment int) bool {
	if p.NumHits == MaxRayEntities {
		p.HitOverflow = true
		return false
	}
	p.Hits[p.NumHits] = SegmentHit{Entity: e, Segment: segment}
	p.NumHits++
	return true
}

// Last returns the final segment, callers check NumSegments first
func (p *PortalTrace) Last() *Segment {
	return &p.Segments[p.NumSegments-1]
}

// Gateway is the spatial query surface of the world
// Every method is bounded and non-allocating for the caller; overflow is reported, never fatal
type Gateway interface {
	// TraceStaticWorld sweeps the ray against static world geometry only
	TraceStaticWorld(ray Ray) Trace
	// EnumerateAlongRay fills out with dynamic entities whose volume the ray touches, in a stable order
	// overflow is true when more entities than len(out) were touched
	EnumerateAlongRay(ray Ray, filter Filter, out []Entity) (n int, overflow bool)
	// ClipRayToEntity sweeps the ray against a single entity
	ClipRayToEntity(ray Ray, e Entity) Trace
	// FirstPortalAlongRay is the cheap straight-ray portal test
	FirstPortalAlongRay(ray Ray) (Handle, bool)
	// TraceThroughPortals decomposes the ray at portal crossings into out
	TraceThroughPortals(ray Ray, filter Filter, out *PortalTrace)
	// BoxContainsWorld reports whether any static geometry overlaps box
	BoxContainsWorld(box vmath.Box) bool

	Entity(h Handle) (Entity, bool)
	Portal(h Handle) (Portal, bool)
	Beam(h Handle) (Beam, bool)
}
