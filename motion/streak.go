package motion

import (
	"math"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// wallNormalZ is the largest |normal.Z| still treated as a wall
const wallNormalZ = 0.5

// ShouldStreak decides whether b keeps sliding on the surface it hit at point
// Paints in every branch; false means the caller deletes the blob
func (m *Machine) ShouldStreak(b *blob.Blob, normal, point vmath.Vec3F) bool {
	if b.StreakTime <= 0 || b.InBeam() {
		m.splat(b, point, normal)
		return false
	}

	tangential := vmath.V3FReject(b.Vel, normal)
	angle := vmath.AcosClamped(vmath.V3FDot(vmath.V3FNormalize(tangential), vmath.V3FNormalize(b.Vel)))
	wallLike := math.Abs(normal.Z) <= wallNormalZ

	sameSurface := b.Mode == blob.ModeStreak &&
		vmath.V3FNearlyEqual(vmath.V3FNeg(b.StreakDir), normal, vmath.Epsilon)

	if (wallLike || angle < m.tun.StreakAngleThresholdRad()) && !sameSurface {
		dir := vmath.V3FNeg(normal)
		if !vmath.V3FNearlyEqual(b.StreakDir, dir, vmath.Epsilon) {
			b.StreakDirChanged = true
		}
		m.leaveBeam(b)
		b.Mode = blob.ModeStreak
		b.Vel = tangential
		b.StreakDir = dir
		m.splat(b, point, normal)
		return true
	}

	m.splat(b, point, normal)
	return false
}

// StreakTick runs after collision for a surviving blob
func (m *Machine) StreakTick(b *blob.Blob, dt float64) {
	if b.Deleted {
		return
	}

	if b.Mode == blob.ModeStreak {
		if vmath.V3FIsZero(b.Vel) {
			m.Delete(b)
			return
		}
		b.StreakTime -= dt
		m.Resample(b)

		dir, speed := vmath.V3FNormalizeLen(b.Vel)
		speed -= b.StreakDampenRate * dt
		if b.Deleted || b.StreakTime < 0 || speed < 0 {
			m.Delete(b)
			return
		}
		b.Vel = vmath.V3FScale(dir, speed)
		b.StreakDirChanged = false
	}

	if b.Mode != blob.ModeTractorBeam {
		b.VortexSpeed = vmath.Approach(b.VortexSpeed, 0, vmath.DegToRad(m.tun.BeamVortexAccel)*dt)
	}
}

// Resample paints where a short ray into the streak surface lands
// A portal ends the streak; finding no surface does too, unless the direction changed this tick
func (m *Machine) Resample(b *blob.Blob) {
	if b.Deleted {
		return
	}
	ray := world.Ray{
		Start: b.Pos,
		End:   vmath.V3FMulAdd(b.Pos, b.StreakDir, m.tun.StreakTraceRange),
	}

	if _, ok := m.gw.FirstPortalAlongRay(ray); ok {
		m.Delete(b)
		return
	}

	best := m.gw.TraceStaticWorld(ray)
	n, overflow := m.gw.EnumerateAlongRay(ray, world.Filter{ExcludePlayers: true}, m.entities[:])
	if overflow {
		m.entityOverflow.Add(1)
	}
	for i := 0; i < n; i++ {
		e := m.entities[i]
		if e.Kind() != world.KindSolid || !e.CollisionEligible() {
			continue
		}
		if tr := m.gw.ClipRayToEntity(ray, e); tr.Hit && (!best.Hit || tr.Fraction < best.Fraction) {
			best = tr
		}
	}

	if best.Hit {
		m.paint(b, best.EndPos)
		return
	}
	if !b.StreakDirChanged {
		m.Delete(b)
	}
}
