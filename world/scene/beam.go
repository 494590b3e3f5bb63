package scene

import (
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// Beam is a capsule-shaped tractor beam volume
type Beam struct {
	Object

	start, end  vmath.Vec3F
	radius      float64
	force       float64
	reversed    bool
	portalStart bool
	portalEnd   bool
	clone       world.Handle

	members []world.BlobID
}

// AddBeam adds a beam flowing start->end
func (s *Scene) AddBeam(start, end vmath.Vec3F, radius, force float64) *Beam {
	b := &Beam{
		Object: Object{kind: world.KindTractorBeam},
		start:  start,
		end:    end,
		radius: radius,
		force:  force,
	}
	b.box = vmath.Box{Min: start, Max: start}.Union(vmath.Box{Min: end, Max: end}).Expand(radius)
	b.handle = s.objects.Insert(b)
	s.beams = append(s.beams, b)
	return b
}

func (b *Beam) Start() vmath.Vec3F            { return b.start }
func (b *Beam) End() vmath.Vec3F              { return b.end }
func (b *Beam) Radius() float64               { return b.radius }
func (b *Beam) LinearForce() float64          { return b.force }
func (b *Beam) Reversed() bool                { return b.reversed }
func (b *Beam) PortalAtStart() bool           { return b.portalStart }
func (b *Beam) PortalAtEnd() bool             { return b.portalEnd }
func (b *Beam) CloneHelper() world.Handle     { return b.clone }
func (b *Beam) SetReversed(reversed bool)     { b.reversed = reversed }
func (b *Beam) SetCloneHelper(h world.Handle) { b.clone = h }

// SetPortalEnds marks which beam ends open onto a portal
func (b *Beam) SetPortalEnds(start, end bool) {
	b.portalStart, b.portalEnd = start, end
}

// Members returns the captured blob ids in capture order, callers must not retain it
func (b *Beam) Members() []world.BlobID {
	return b.members
}

func (b *Beam) AddMember(id world.BlobID) {
	for _, m := range b.members {
		if m == id {
			return
		}
	}
	b.members = append(b.members, id)
}

func (b *Beam) RemoveMember(id world.BlobID) {
	for i, m := range b.members {
		if m == id {
			b.members = append(b.members[:i], b.members[i+1:]...)
			return
		}
	}
}

// touches reports whether a capsule of radius extent along a->c overlaps the beam volume
func (b *Beam) touches(a, c vmath.Vec3F, extent float64) bool {
	return vmath.SegmentDistance(a, c, b.start, b.end) <= b.radius+extent
}
