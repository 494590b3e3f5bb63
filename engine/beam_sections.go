package engine

import (
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/physics"
	"github.com/lixenwraith/paintblob/world"
)

// section is a centerline fraction range where the beam volume meets an obstruction
type section struct {
	lo, hi float64
}

func (s section) contains(f float64) bool {
	return f >= s.lo && f <= s.hi
}

// beamPass integrates each beam's captured blobs and commits those safely inside it
// Blobs past either end or inside an obstructed section are appended to s.routed
func (s *Simulation) beamPass(now float64, tun *config.Tunables, st *Stats) {
	s.beams = s.beams[:0]
	for _, b := range s.beam {
		if !containsHandle(s.beams, b.Beam) {
			s.beams = append(s.beams, b.Beam)
		}
	}

	for _, h := range s.beams {
		beam, ok := s.gw.Beam(h)
		if !ok {
			continue
		}
		s.members = s.members[:0]
		for _, b := range s.beam {
			if b.Beam == h {
				s.members = append(s.members, b)
			}
		}

		physics.IntegrateBeam(beam, s.members, now, tun)
		sections := s.badSections(beam, st)

		for _, b := range s.members {
			if b.BeamFraction < 0 || b.BeamFraction > 1 || inAnySection(sections, b.BeamFraction) {
				s.routed = append(s.routed, b)
				continue
			}
			b.Commit()
			b.InBeamThisTick = true
			st.Committed++
		}
	}
	s.committed.Add(int64(st.Committed))
}

// badSections finds where the beam capsule meets static world or obstructing entities
// Each obstruction is clipped from both ends; a range that does not close is dropped and counted
func (s *Simulation) badSections(beam world.Beam, st *Stats) []section {
	s.sections = s.sections[:0]
	ray := world.Ray{Start: beam.Start(), End: beam.End(), Extent: beam.Radius()}

	if fwd := s.gw.TraceStaticWorld(ray); fwd.Hit {
		rev := s.gw.TraceStaticWorld(ray.Reverse())
		s.addSection(fwd, rev, st)
	}

	filter := world.Filter{}.Skip(beam.Handle()).Skip(beam.CloneHelper())
	n, overflow := s.gw.EnumerateAlongRay(ray, filter, s.entities[:])
	if overflow {
		s.log.Warn("beam obstruction overflow", "beam", beam.Handle().String(), "bound", world.MaxRayEntities)
	}
	for i := 0; i < n; i++ {
		e := s.entities[i]
		if !obstructs(e) {
			continue
		}
		fwd := s.gw.ClipRayToEntity(ray, e)
		rev := s.gw.ClipRayToEntity(ray.Reverse(), e)
		s.addSection(fwd, rev, st)
	}
	return s.sections
}

func (s *Simulation) addSection(fwd, rev world.Trace, st *Stats) {
	if !fwd.Hit || !rev.Hit {
		s.dropSection(st)
		return
	}
	sec := section{lo: fwd.Fraction, hi: 1 - rev.Fraction}
	if sec.hi <= sec.lo {
		s.dropSection(st)
		return
	}
	s.sections = append(s.sections, sec)
}

func (s *Simulation) dropSection(st *Stats) {
	st.DegenerateSections++
	s.degenerate.Add(1)
}

// obstructs reports entities that can change a captured blob's path
func obstructs(e world.Entity) bool {
	switch e.Kind() {
	case world.KindPlayer, world.KindPaintCleanser, world.KindPortal:
		return true
	case world.KindSolid:
		return e.CollisionEligible()
	}
	return false
}

func inAnySection(sections []section, f float64) bool {
	for _, sec := range sections {
		if sec.contains(f) {
			return true
		}
	}
	return false
}

func containsHandle(hs []world.Handle, h world.Handle) bool {
	for _, x := range hs {
		if x == h {
			return true
		}
	}
	return false
}
