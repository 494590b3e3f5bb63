package collision

import (
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// Classify maps an entity to the interaction it produces for a blob at pos
// A player only counts once the blob is outside the player's box swept over the frame,
// so a blob never hits the player that just fired it
func Classify(e world.Entity, pos vmath.Vec3F, dt float64, tun *config.Tunables) Kind {
	switch e.Kind() {
	case world.KindWorld:
		return World
	case world.KindPlayer:
		if !tun.PlayerPaintEnabled {
			return None
		}
		swept := e.Bounds().Sweep(vmath.V3FScale(e.Velocity(), dt))
		if swept.Contains(pos) {
			return None
		}
		return Player
	case world.KindSolid:
		if e.CollisionEligible() {
			return Other
		}
	case world.KindPaintCleanser:
		if c, ok := e.(world.Cleanser); ok && c.IsEnabled() {
			return PaintCleanser
		}
	case world.KindTractorBeam:
		return TractorBeamTrigger
	case world.KindPortal:
		return PropPortal
	}
	return None
}
