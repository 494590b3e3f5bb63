package scene

import (
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// portalThickness is the half depth of a portal's entity bounds
const portalThickness = 0.5

// exitPushOut moves a teleported ray off the exit plane so it does not start on the exit wall
const exitPushOut = 0.01

// Portal is a rectangular opening facing Forward
type Portal struct {
	Object
	scene *Scene

	center  vmath.Vec3F
	forward vmath.Vec3F
	left    vmath.Vec3F
	up      vmath.Vec3F

	halfWidth  float64
	halfHeight float64

	active bool
	linked world.Handle
}

// AddPortal adds an active, unlinked portal centred on center facing forward
func (s *Scene) AddPortal(center, forward, up vmath.Vec3F, halfWidth, halfHeight float64) *Portal {
	f := vmath.V3FNormalize(forward)
	u := vmath.V3FNormalize(vmath.V3FReject(up, f))
	if vmath.V3FIsZero(u) {
		u = vmath.V3FPerpendicular(f)
	}
	p := &Portal{
		Object:     Object{kind: world.KindPortal},
		scene:      s,
		center:     center,
		forward:    f,
		left:       vmath.V3FCross(u, f),
		up:         u,
		halfWidth:  halfWidth,
		halfHeight: halfHeight,
		active:     true,
	}
	p.box = p.bounds()
	p.handle = s.objects.Insert(p)
	s.portals = append(s.portals, p)
	return p
}

// Link pairs two portals with each other
func Link(a, b *Portal) {
	a.linked = b.handle
	b.linked = a.handle
}

func (p *Portal) bounds() vmath.Box {
	w := vmath.V3FScale(p.left, p.halfWidth)
	h := vmath.V3FScale(p.up, p.halfHeight)
	box := vmath.Box{Min: p.center, Max: p.center}
	for _, sw := range [2]float64{-1, 1} {
		for _, sh := range [2]float64{-1, 1} {
			corner := vmath.V3FAdd(vmath.V3FMulAdd(p.center, w, sw), vmath.V3FScale(h, sh))
			box = box.Union(vmath.Box{Min: corner, Max: corner})
		}
	}
	return box.Expand(portalThickness)
}

func (p *Portal) Active() bool          { return p.active }
func (p *Portal) SetActive(active bool) { p.active = active }
func (p *Portal) Forward() vmath.Vec3F  { return p.forward }
func (p *Portal) Center() vmath.Vec3F   { return p.center }

// Linked returns the counterpart, zero when unlinked or removed
func (p *Portal) Linked() world.Handle {
	if _, ok := p.scene.portal(p.linked); !ok {
		return world.Handle{}
	}
	return p.linked
}

// frame maps portal-local (forward, left, up) coordinates into world space
func (p *Portal) frame() vmath.Transform {
	return vmath.FrameTransform(p.center, p.forward, p.left, p.up)
}

// Transform carries a point entering this portal out of the linked one
// Entering against Forward exits along the counterpart's Forward
func (p *Portal) Transform() vmath.Transform {
	other, ok := p.scene.portal(p.linked)
	if !ok {
		return vmath.IdentityTransform()
	}
	return other.frame().Mul(vmath.HalfTurnZ()).Mul(p.frame().Inverse())
}

func (p *Portal) ReverseTransform() vmath.Transform {
	other, ok := p.scene.portal(p.linked)
	if !ok {
		return vmath.IdentityTransform()
	}
	return other.Transform()
}

// crossing returns the fraction where a->b passes through the portal from its front side
func (p *Portal) crossing(a, b vmath.Vec3F) (float64, bool) {
	da := vmath.V3FDot(vmath.V3FSub(a, p.center), p.forward)
	db := vmath.V3FDot(vmath.V3FSub(b, p.center), p.forward)
	if da < 0 || db >= 0 {
		return 0, false
	}
	t := da / (da - db)
	off := vmath.V3FSub(vmath.V3FLerp(a, b, t), p.center)
	if abs(vmath.V3FDot(off, p.left)) > p.halfWidth || abs(vmath.V3FDot(off, p.up)) > p.halfHeight {
		return 0, false
	}
	return t, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
