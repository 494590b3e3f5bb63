package physics

import (
	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// BeamFrame is the per-beam data shared by every member blob in one pass
type BeamFrame struct {
	Start, End  vmath.Vec3F
	Axis        vmath.Vec3F // unit Start->End
	Flow        vmath.Vec3F // unit direction of travel
	Length      float64
	Radius      float64
	TargetSpeed float64
	Reversed    bool
	ExitPortal  bool
}

// NewBeamFrame snapshots the beam geometry, target speed is half the linear force
func NewBeamFrame(b world.Beam) BeamFrame {
	axis, length := vmath.V3FNormalizeLen(vmath.V3FSub(b.End(), b.Start()))
	flow := axis
	if b.Reversed() {
		flow = vmath.V3FNeg(axis)
	}
	return BeamFrame{
		Start:       b.Start(),
		End:         b.End(),
		Axis:        axis,
		Flow:        flow,
		Length:      length,
		Radius:      b.Radius(),
		TargetSpeed: b.LinearForce() * 0.5,
		Reversed:    b.Reversed(),
		ExitPortal:  world.BeamExitHasPortal(b),
	}
}

// BeamState is the per-blob input and output of BeamStep
type BeamState struct {
	Pos, Vel         vmath.Vec3F
	VortexRadius     float64
	VortexSpeed      float64 // radians/sec
	DestVortexRadius float64
	VortexDir        vmath.Vec3F // fallback radial direction on the centerline
	Fraction         float64
}

// BeamStep advances one captured blob
// Along-beam speed approaches the target without going negative, the blob then spirals about the axis
func BeamStep(s BeamState, f *BeamFrame, dt float64, tun *config.Tunables) BeamState {
	if dt <= 0 {
		_, s.Fraction = vmath.ClosestPointOnLine(s.Pos, f.Start, f.End)
		return s
	}

	along := vmath.V3FDot(s.Vel, f.Flow)
	along = vmath.Approach(along, f.TargetSpeed, tun.BeamAccel*dt)
	if along < 0 {
		along = 0
	}
	alongVel := vmath.V3FScale(f.Flow, along)
	p := vmath.V3FMulAdd(s.Pos, alongVel, dt)

	closest, frac := vmath.ClosestPointOnLine(p, f.Start, f.End)
	distStart := frac * f.Length
	distEnd := (1 - frac) * f.Length

	circulation := tun.BeamCirculation
	if distStart < tun.BeamVortexDistance || distEnd < tun.BeamVortexDistance {
		circulation = tun.BeamPortalCirculation
	}

	distExit := distEnd
	if f.Reversed {
		distExit = distStart
	}
	destRadius := s.DestVortexRadius
	if f.ExitPortal && distExit < tun.BeamVortexDistance {
		destRadius = tun.BeamVortexMinRadius
	}

	radius := vmath.Approach(s.VortexRadius, destRadius, tun.BeamVortexRadiusRate*dt)
	speed := vmath.Approach(s.VortexSpeed, vmath.DegToRad(circulation), vmath.DegToRad(tun.BeamVortexAccel)*dt)

	angle := speed * dt
	spin := 1.0
	if f.Reversed {
		spin = -1.0
	}
	angle *= spin

	dir := radialDir(vmath.V3FSub(p, closest), s.VortexDir, f.Axis)
	dir = vmath.V3FRotateAxis(dir, f.Axis, angle)

	// Tangential contribution fades to zero at the centerline, full at the beam radius
	tangent := vmath.V3FCross(f.Axis, dir)
	falloff := vmath.Clamp01(radius * vmath.SafeInv(f.Radius))
	swirl := vmath.V3FScale(tangent, spin*speed*radius*falloff)

	s.Pos = vmath.V3FMulAdd(closest, dir, radius)
	s.Vel = vmath.V3FAdd(alongVel, swirl)
	s.VortexRadius = radius
	s.VortexSpeed = speed
	s.Fraction = frac
	return s
}

// radialDir returns the unit offset from the axis, seeding from the blob's vortex direction on the centerline
func radialDir(offset, seed, axis vmath.Vec3F) vmath.Vec3F {
	if dir := vmath.V3FNormalize(vmath.V3FReject(offset, axis)); !vmath.V3FIsZero(dir) {
		return dir
	}
	if dir := vmath.V3FNormalize(vmath.V3FReject(seed, axis)); !vmath.V3FIsZero(dir) {
		return dir
	}
	return vmath.V3FPerpendicular(axis)
}

// IntegrateBeam writes the tentative state of every blob captured by beam
func IntegrateBeam(beam world.Beam, blobs []*blob.Blob, now float64, tun *config.Tunables) {
	frame := NewBeamFrame(beam)
	for _, b := range blobs {
		out := BeamStep(BeamState{
			Pos:              b.Pos,
			Vel:              b.Vel,
			VortexRadius:     b.VortexRadius,
			VortexSpeed:      b.VortexSpeed,
			DestVortexRadius: b.DestVortexRadius,
			VortexDir:        b.VortexDir,
		}, &frame, b.Elapsed(now), tun)

		b.TentativePos = out.Pos
		b.TentativeVel = out.Vel
		b.VortexRadius = out.VortexRadius
		b.VortexSpeed = out.VortexSpeed
		b.BeamFraction = out.Fraction
	}
}
