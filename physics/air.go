package physics

import (
	"math"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/vmath"
)

// AirStep integrates one blob in free flight
// Trapezoidal vertical integration under gravity, exponential drag, position from the average velocity
func AirStep(pos, vel vmath.Vec3F, dt, gravity, drag float64) (vmath.Vec3F, vmath.Vec3F) {
	if dt <= 0 {
		return pos, vel
	}
	next := vel
	next.Z -= gravity * dt
	next = vmath.V3FScale(next, math.Exp(-drag*dt))

	avg := vmath.V3FScale(vmath.V3FAdd(vel, next), 0.5)
	return vmath.V3FMulAdd(pos, avg, dt), next
}

// IntegrateAir writes the tentative state of every blob in free flight
// Elapsed time is per blob; no blob reads another
func IntegrateAir(blobs []*blob.Blob, now float64, tun *config.Tunables) {
	gravity := tun.EffectiveGravity()
	for _, b := range blobs {
		b.TentativePos, b.TentativeVel = AirStep(b.Pos, b.Vel, b.Elapsed(now), gravity, tun.AirDrag)
	}
}
