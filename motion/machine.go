// Package motion is the blob movement state machine: Air, Streak and TractorBeam
package motion

import (
	"sync/atomic"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/collision"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/event"
	"github.com/lixenwraith/paintblob/status"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// contactSkin is the smallest distance a blob rests from a surface it struck
const contactSkin = 1.0 / 32

// Machine applies interaction records to blobs
// Runs only in the sequential phase of a tick: it mutates beam membership and visit history
type Machine struct {
	gw      world.Gateway
	painter world.Painter
	sink    event.Sink
	history BeamHistory
	tun     *config.Tunables

	entities [world.MaxRayEntities]world.Entity

	deleted        *atomic.Int64
	teleports      *atomic.Int64
	entityOverflow *atomic.Int64
}

// NewMachine wires the state machine to its collaborators, a nil sink discards signals
func NewMachine(gw world.Gateway, painter world.Painter, sink event.Sink, history BeamHistory, metrics *status.Registry) *Machine {
	if sink == nil {
		sink = event.Discard
	}
	return &Machine{
		gw:             gw,
		painter:        painter,
		sink:           sink,
		history:        history,
		tun:            config.Default(),
		deleted:        metrics.Counter(status.KeyDeleted),
		teleports:      metrics.Counter(status.KeyTeleports),
		entityOverflow: metrics.Counter(status.KeyEntityOverflow),
	}
}

// SetTunables selects the parameter set for subsequent calls, read once per tick
func (m *Machine) SetTunables(tun *config.Tunables) {
	m.tun = tun
}

// Apply adopts the tentative state, then processes recs in order until the blob is deleted
func (m *Machine) Apply(b *blob.Blob, recs []collision.Record) {
	if b.Deleted {
		return
	}
	b.Commit()

	for i := range recs {
		if b.Deleted {
			return
		}
		rec := &recs[i]
		switch rec.Kind {
		case collision.PortalCrossing:
			m.crossPortal(b, rec)
		case collision.TractorBeamTrigger:
			m.enterBeam(b, rec)
		case collision.PropPortal:
			b.Pos = rec.Target
			b.Vel = b.TentativeVel
			if p, ok := m.gw.Portal(rec.Entity); ok && world.ActiveAndLinked(p) {
				b.GhostPortal = rec.Entity
			}
		case collision.PaintCleanser:
			b.Pos = rec.Target
			m.splat(b, rec.Target, rec.Normal)
			m.sound(b, event.SoundCleanse, rec.Target)
			m.Delete(b)
		case collision.World, collision.Player, collision.Other:
			b.Pos = m.standOff(rec.Target, rec.Normal)
			b.Vel = b.TentativeVel
			if !m.ShouldStreak(b, rec.Normal, rec.Target) {
				m.Delete(b)
			}
		}
	}
}

// standOff lifts a contact point off the struck surface so the next in-plane ray cannot start inside it
func (m *Machine) standOff(point, normal vmath.Vec3F) vmath.Vec3F {
	d := m.tun.StreakRadius
	if d < contactSkin {
		d = contactSkin
	}
	return vmath.V3FMulAdd(point, normal, d)
}

// Delete flags b and releases its beam membership
func (m *Machine) Delete(b *blob.Blob) {
	if b.Deleted {
		return
	}
	m.leaveBeam(b)
	b.Delete()
	m.deleted.Add(1)
}

// crossPortal teleports b, a streaking blob is deleted instead
func (m *Machine) crossPortal(b *blob.Blob, rec *collision.Record) {
	if b.Mode == blob.ModeStreak {
		m.Delete(b)
		return
	}
	p, ok := m.gw.Portal(rec.Entity)
	if !ok || !world.ActiveAndLinked(p) {
		return
	}

	xf := p.Transform()
	vel := xf.Vector(b.TentativeVel)

	exitForward := xf.Vector(vmath.V3FNeg(p.Forward()))
	if exit, ok := m.gw.Portal(p.Linked()); ok {
		exitForward = exit.Forward()
	}
	vel = FloorSpeed(vel, exitForward, m.tun.PortalExitSpeedMin)

	b.Pos = rec.Target
	b.Vel = vel
	// Later records adopting the tentative velocity must see the transformed one
	b.TentativeVel = vel
	b.TeleportCount++
	b.Mode = blob.ModeAir
	m.leaveBeam(b)
	m.teleports.Add(1)
	m.sound(b, event.SoundTeleport, rec.Target)
}

// FloorSpeed raises |v| to min, a zero vector leaves along forward
func FloorSpeed(v, forward vmath.Vec3F, min float64) vmath.Vec3F {
	speed := vmath.V3FMag(v)
	if speed >= min {
		return v
	}
	if speed == 0 {
		return vmath.V3FScale(vmath.V3FNormalize(forward), min)
	}
	return vmath.V3FScale(v, min/speed)
}

// enterBeam associates b with the beam behind rec
// The vortex radius is only re-derived from the current offset when this beam is not
// the one the blob most recently visited, avoiding a visible jump on re-entry
func (m *Machine) enterBeam(b *blob.Blob, rec *collision.Record) {
	beam, ok := m.gw.Beam(rec.Entity)
	if !ok {
		return
	}

	b.Pos = rec.Target
	b.Vel = b.TentativeVel

	if b.Beam != rec.Entity {
		m.leaveBeam(b)
		b.Beam = rec.Entity
		beam.AddMember(b.ID)

		if recent, ok := m.history.MostRecent(b.ID); !ok || recent != rec.Entity {
			closest, _ := vmath.ClosestPointOnLine(b.Pos, beam.Start(), beam.End())
			b.VortexRadius = vmath.V3FDist(b.Pos, closest)
		}
		m.history.Visit(b.ID, rec.Entity)

		dest := beam.Radius() - m.tun.BeamRadiusOffset
		if dest < 0 {
			dest = 0
		}
		b.DestVortexRadius = dest * b.RadiusScale
		m.sound(b, event.SoundBeamCapture, b.Pos)
	}

	b.InBeamThisTick = true
	if b.Mode != blob.ModeStreak {
		b.Mode = blob.ModeTractorBeam
	}
}

// leaveBeam drops the beam association, stale beams are simply forgotten
func (m *Machine) leaveBeam(b *blob.Blob) {
	if b.Beam.IsZero() {
		return
	}
	if beam, ok := m.gw.Beam(b.Beam); ok {
		beam.RemoveMember(b.ID)
	}
	b.Beam = world.Handle{}
}

// ExitBeam returns a captured blob that left its beam to free flight
func (m *Machine) ExitBeam(b *blob.Blob) {
	if b.Deleted {
		return
	}
	m.leaveBeam(b)
	if b.Mode == blob.ModeTractorBeam {
		b.Mode = blob.ModeAir
	}
}

// splat paints and requests the contact effect
func (m *Machine) splat(b *blob.Blob, point, normal vmath.Vec3F) {
	m.paint(b, point)
	if b.Silent || b.DrawOnly {
		return
	}
	m.sink.ContactEffect(b.ID, point, normal, b.Power)
	m.sink.PlaySound(b.ID, event.SoundImpact, point)
}

func (m *Machine) paint(b *blob.Blob, point vmath.Vec3F) {
	if b.DrawOnly || b.Power == world.PowerNone || m.painter == nil {
		return
	}
	m.painter.Paint(point, b.Power)
}

func (m *Machine) sound(b *blob.Blob, kind event.SoundKind, pos vmath.Vec3F) {
	if b.Silent {
		return
	}
	m.sink.PlaySound(b.ID, kind, pos)
}
