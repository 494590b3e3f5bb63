package engine

import (
	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/physics"
)

// Update advances every blob to now
// Runs to completion; blobs are flagged Deleted, never removed from the slice
func (s *Simulation) Update(now float64, blobs []*blob.Blob) Stats {
	tun := s.store.Load()
	s.resolver.SetTunables(tun)
	s.machine.SetTunables(tun)

	var st Stats
	s.firstPass(now, blobs, tun, &st)
	s.partition(&st)

	physics.IntegrateAir(s.air, now, tun)
	physics.IntegrateStreak(s.streak, now, tun)

	s.routed = s.routed[:0]
	s.beamPass(now, tun, &st)
	s.routed = append(s.routed, s.air...)
	s.routed = append(s.routed, s.streak...)
	st.Routed = len(s.routed)

	for _, b := range s.routed {
		s.resolve(b, now, &st)
	}

	// Stamp last, after all mutation, including blobs that never moved
	for _, b := range s.first {
		b.LastUpdate = now
		if b.Deleted {
			st.Deleted++
		}
		if b.Teleported {
			st.Teleported++
		}
	}
	st.Deleted += st.Expired

	st.Overflow = s.resolver.TakeOverflow()
	if st.Overflow.Any() {
		s.log.Warn("capacity overflow, excess obstructions ignored",
			"entities", st.Overflow.Entities,
			"segments", st.Overflow.Segments,
			"records", st.Overflow.Records,
			"blob", st.Overflow.Blob,
		)
	}

	s.ticks.Add(1)
	s.lastBlobs.Set(float64(st.FirstPass()))
	s.lastRouted.Set(float64(st.Routed))
	return st
}

// firstPass selects blobs due for an update and applies the lifetime cap
func (s *Simulation) firstPass(now float64, blobs []*blob.Blob, tun *config.Tunables, st *Stats) {
	s.first = s.first[:0]
	for _, b := range blobs {
		if b.Deleted {
			continue
		}
		dt := b.Elapsed(now)
		if dt < tun.MinUpdateInterval {
			b.ClearTickSignals()
			st.Skipped++
			continue
		}
		b.Lifetime += dt
		if tun.LimitedLifetime && b.Lifetime >= tun.MaxLifetime {
			s.machine.Delete(b)
			st.Expired++
			continue
		}
		b.BeginTick()
		s.first = append(s.first, b)
	}
}

// partition splits the first pass by mode, preserving input order within each group
// A captured blob whose beam is gone falls back to Air
func (s *Simulation) partition(st *Stats) {
	s.beam, s.air, s.streak = s.beam[:0], s.air[:0], s.streak[:0]
	for _, b := range s.first {
		if b.Mode == blob.ModeTractorBeam {
			if _, ok := s.gw.Beam(b.Beam); !ok {
				s.machine.ExitBeam(b)
			}
		}
		switch b.Mode {
		case blob.ModeTractorBeam:
			s.beam = append(s.beam, b)
		case blob.ModeStreak:
			s.streak = append(s.streak, b)
		default:
			s.air = append(s.air, b)
		}
	}
	st.Beam, st.Air, st.Streak = len(s.beam), len(s.air), len(s.streak)
}

// resolve runs collision, the state machine and the streak tick for one routed blob
func (s *Simulation) resolve(b *blob.Blob, now float64, st *Stats) {
	if b.Deleted || b.TentativePos == b.Pos {
		return
	}
	dt := b.Elapsed(now)
	wasCaptured := b.Mode == blob.ModeTractorBeam

	recs := s.resolver.Resolve(b, b.Pos, b.TentativePos, now, dt)
	s.machine.Apply(b, recs)
	st.Resolved++

	if wasCaptured && !b.InBeamThisTick {
		s.machine.ExitBeam(b)
	}
	s.machine.StreakTick(b, dt)
}
