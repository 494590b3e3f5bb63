package scene

import (
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// portalTieBreak lets a portal win over the wall it is mounted on
const portalTieBreak = 1e-6

func clipBox(box vmath.Box, ray world.Ray, h world.Handle) world.Trace {
	hit := box.Expand(ray.Extent).ClipSegment(ray.Start, ray.End)
	if !hit.Hit {
		return world.MissTrace(ray)
	}
	if hit.StartInside {
		return world.Trace{
			Hit:        true,
			StartSolid: true,
			EndPos:     ray.Start,
			Entity:     h,
		}
	}
	return world.Trace{
		Hit:      true,
		Fraction: hit.Fraction,
		EndPos:   vmath.V3FLerp(ray.Start, ray.End, hit.Fraction),
		Normal:   hit.Normal,
		Entity:   h,
	}
}

func nearer(a, b world.Trace) world.Trace {
	if b.Hit && (!a.Hit || b.Fraction < a.Fraction) {
		return b
	}
	return a
}

func (s *Scene) TraceStaticWorld(ray world.Ray) world.Trace {
	best := world.MissTrace(ray)
	for _, box := range s.statics {
		best = nearer(best, clipBox(box, ray, s.world.handle))
		if best.StartSolid {
			break
		}
	}
	return best
}

func (s *Scene) touches(e world.Entity, ray world.Ray) bool {
	if b, ok := e.(*Beam); ok {
		return b.touches(ray.Start, ray.End, ray.Extent)
	}
	return e.Bounds().Expand(ray.Extent).ClipSegment(ray.Start, ray.End).Hit
}

func (s *Scene) EnumerateAlongRay(ray world.Ray, filter world.Filter, out []world.Entity) (n int, overflow bool) {
	s.objects.Range(func(_ world.Handle, e world.Entity) bool {
		if e.Kind() == world.KindWorld || filter.Excludes(e) || !s.touches(e, ray) {
			return true
		}
		if n == len(out) {
			overflow = true
			return false
		}
		out[n] = e
		n++
		return true
	})
	return n, overflow
}

func (s *Scene) ClipRayToEntity(ray world.Ray, e world.Entity) world.Trace {
	if e.Kind() == world.KindWorld {
		return s.TraceStaticWorld(ray)
	}
	return clipBox(e.Bounds(), ray, e.Handle())
}

// FirstPortalAlongRay reports the nearest active linked portal the straight ray enters
func (s *Scene) FirstPortalAlongRay(ray world.Ray) (world.Handle, bool) {
	p, _ := s.firstPortal(ray.Start, ray.End)
	if p == nil {
		return world.Handle{}, false
	}
	return p.handle, true
}

func (s *Scene) firstPortal(a, b vmath.Vec3F) (*Portal, float64) {
	var best *Portal
	bestT := 2.0
	for _, p := range s.portals {
		if !world.ActiveAndLinked(p) {
			continue
		}
		if t, ok := p.crossing(a, b); ok && t < bestT {
			best, bestT = p, t
		}
	}
	return best, bestT
}

// blocker is the nearest static or solid entity hit, the terminator of a segment
func (s *Scene) blocker(ray world.Ray, filter world.Filter) world.Trace {
	best := s.TraceStaticWorld(ray)
	s.objects.Range(func(_ world.Handle, e world.Entity) bool {
		switch e.Kind() {
		case world.KindSolid, world.KindPlayer:
		default:
			return true
		}
		if !e.CollisionEligible() || filter.Excludes(e) {
			return true
		}
		best = nearer(best, clipBox(e.Bounds(), ray, e.Handle()))
		return true
	})
	return best
}

func (s *Scene) collectHits(ray world.Ray, filter world.Filter, segment int, out *world.PortalTrace) {
	s.objects.Range(func(_ world.Handle, e world.Entity) bool {
		if e.Kind() == world.KindWorld || filter.Excludes(e) || !s.touches(e, ray) {
			return true
		}
		return out.AddHit(e, segment)
	})
}

// TraceThroughPortals walks the ray, continuing out of every active linked portal it enters
// Each segment keeps its own length share; the walk ends at a blocker, the ray end, or the segment bound
func (s *Scene) TraceThroughPortals(ray world.Ray, filter world.Filter, out *world.PortalTrace) {
	out.Reset()

	start := ray.Start
	dir, remaining := vmath.V3FNormalizeLen(ray.Delta())
	if remaining == 0 {
		out.AddSegment(world.Segment{Start: start, End: start, Trace: world.MissTrace(ray)})
		return
	}

	for {
		seg := world.Ray{Start: start, End: vmath.V3FMulAdd(start, dir, remaining), Extent: ray.Extent}
		portal, tp := s.firstPortal(seg.Start, seg.End)
		block := s.blocker(seg, filter)

		if block.Hit && (portal == nil || block.Fraction+portalTieBreak < tp) {
			if !out.AddSegment(world.Segment{Start: seg.Start, End: block.EndPos, Trace: block}) {
				return
			}
			s.collectHits(world.Ray{Start: seg.Start, End: block.EndPos, Extent: ray.Extent}, filter, out.NumSegments-1, out)
			return
		}

		if portal == nil {
			if out.AddSegment(world.Segment{Start: seg.Start, End: seg.End, Trace: world.MissTrace(seg)}) {
				s.collectHits(seg, filter, out.NumSegments-1, out)
			}
			return
		}

		entry := vmath.V3FLerp(seg.Start, seg.End, tp)
		if !out.AddSegment(world.Segment{
			Start:  seg.Start,
			End:    entry,
			Portal: portal.handle,
			Trace:  world.Trace{Fraction: tp, EndPos: entry},
		}) {
			return
		}
		s.collectHits(world.Ray{Start: seg.Start, End: entry, Extent: ray.Extent}, filter, out.NumSegments-1, out)

		exit, _ := s.portal(portal.linked)
		m := portal.Transform()
		dir = vmath.V3FNormalize(m.Vector(dir))
		start = vmath.V3FMulAdd(m.Point(entry), exit.forward, exitPushOut)
		remaining -= tp * remaining
	}
}

// BoxContainsWorld reports whether any static box overlaps box
func (s *Scene) BoxContainsWorld(box vmath.Box) bool {
	for _, b := range s.statics {
		if b.Intersects(box) {
			return true
		}
	}
	return false
}
