package physics

import (
	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/vmath"
)

// StreakStep is AirStep confined to the streak plane
// Velocity and positional delta lose their component along the surface normal (-streakDir)
func StreakStep(pos, vel, streakDir vmath.Vec3F, dt, gravity, drag float64) (vmath.Vec3F, vmath.Vec3F) {
	if dt <= 0 {
		return pos, vel
	}
	p, v := AirStep(pos, vel, dt, gravity, drag)

	n := vmath.V3FNormalize(vmath.V3FNeg(streakDir))
	if vmath.V3FIsZero(n) {
		return p, v
	}
	v = vmath.V3FReject(v, n)
	delta := vmath.V3FReject(vmath.V3FSub(p, pos), n)
	return vmath.V3FAdd(pos, delta), v
}

// IntegrateStreak writes the tentative state of every streaking blob
func IntegrateStreak(blobs []*blob.Blob, now float64, tun *config.Tunables) {
	gravity := tun.EffectiveGravity()
	for _, b := range blobs {
		b.TentativePos, b.TentativeVel = StreakStep(b.Pos, b.Vel, b.StreakDir, b.Elapsed(now), gravity, tun.AirDrag)
	}
}
