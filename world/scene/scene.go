// Package scene is an in-memory world: static boxes, solid props, players,
// cleansers, linked portals and tractor beams behind the world.Gateway surface
package scene

import (
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// Object is a box-shaped entity living in a Scene
type Object struct {
	handle  world.Handle
	kind    world.EntityKind
	box     vmath.Box
	vel     vmath.Vec3F
	solid   bool
	enabled bool
}

func (o *Object) Handle() world.Handle      { return o.handle }
func (o *Object) Kind() world.EntityKind    { return o.kind }
func (o *Object) Bounds() vmath.Box         { return o.box }
func (o *Object) Velocity() vmath.Vec3F     { return o.vel }
func (o *Object) CollisionEligible() bool   { return o.solid }
func (o *Object) IsEnabled() bool           { return o.enabled }
func (o *Object) SetEnabled(enabled bool)   { o.enabled = enabled }
func (o *Object) SetVelocity(v vmath.Vec3F) { o.vel = v }

// MoveTo recentres the object's box on c
func (o *Object) MoveTo(c vmath.Vec3F) {
	d := vmath.V3FSub(c, o.box.Center())
	o.box = vmath.Box{Min: vmath.V3FAdd(o.box.Min, d), Max: vmath.V3FAdd(o.box.Max, d)}
}

// Splat is one recorded paint deposit
type Splat struct {
	Point vmath.Vec3F
	Power world.PaintPower
}

// Scene implements world.Gateway and world.Painter
// Not safe for concurrent use; the simulation tick is single-threaded
type Scene struct {
	objects *world.Registry[world.Entity]
	statics []vmath.Box
	world   *Object
	portals []*Portal
	beams   []*Beam
	splats  []Splat
}

var (
	_ world.Gateway = (*Scene)(nil)
	_ world.Painter = (*Scene)(nil)
)

// New creates an empty scene holding only the static world entity
func New() *Scene {
	s := &Scene{
		objects: world.NewRegistry[world.Entity](64),
	}
	s.world = s.insert(&Object{kind: world.KindWorld, solid: true})
	return s
}

func (s *Scene) insert(o *Object) *Object {
	o.handle = s.objects.Insert(o)
	return o
}

// World returns the handle reported for static geometry hits
func (s *Scene) World() world.Handle {
	return s.world.handle
}

// AddStatic adds an immovable world box
func (s *Scene) AddStatic(b vmath.Box) {
	s.statics = append(s.statics, b)
	if len(s.statics) == 1 {
		s.world.box = b
	} else {
		s.world.box = s.world.box.Union(b)
	}
}

// Statics returns the static world boxes
func (s *Scene) Statics() []vmath.Box {
	return s.statics
}

// AddSolid adds a collision-eligible prop
func (s *Scene) AddSolid(b vmath.Box) *Object {
	return s.insert(&Object{kind: world.KindSolid, box: b, solid: true})
}

// AddPlayer adds a player volume moving at vel
func (s *Scene) AddPlayer(b vmath.Box, vel vmath.Vec3F) *Object {
	return s.insert(&Object{kind: world.KindPlayer, box: b, vel: vel, solid: true})
}

// AddCleanser adds a paint cleanser field
func (s *Scene) AddCleanser(b vmath.Box, enabled bool) *Object {
	return s.insert(&Object{kind: world.KindPaintCleanser, box: b, enabled: enabled})
}

// AddTrigger adds a non-solid trigger volume
func (s *Scene) AddTrigger(b vmath.Box) *Object {
	return s.insert(&Object{kind: world.KindTrigger, box: b})
}

// Remove deletes the entity behind h, outstanding handles go stale
func (s *Scene) Remove(h world.Handle) bool {
	if h == s.world.handle {
		return false
	}
	e, ok := s.objects.Get(h)
	if !ok {
		return false
	}
	switch v := e.(type) {
	case *Portal:
		s.portals = removeItem(s.portals, v)
	case *Beam:
		s.beams = removeItem(s.beams, v)
	}
	return s.objects.Remove(h)
}

func removeItem[T comparable](items []T, v T) []T {
	for i, it := range items {
		if it == v {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// Range visits live entities in handle order, static world excluded
func (s *Scene) Range(fn func(e world.Entity) bool) {
	s.objects.Range(func(_ world.Handle, e world.Entity) bool {
		if e.Kind() == world.KindWorld {
			return true
		}
		return fn(e)
	})
}

// Portals returns the scene portals in creation order
func (s *Scene) Portals() []*Portal {
	return s.portals
}

// Beams returns the scene beams in creation order
func (s *Scene) Beams() []*Beam {
	return s.beams
}

func (s *Scene) Entity(h world.Handle) (world.Entity, bool) {
	return s.objects.Get(h)
}

func (s *Scene) Portal(h world.Handle) (world.Portal, bool) {
	p, ok := s.portal(h)
	if !ok {
		return nil, false
	}
	return p, true
}

func (s *Scene) portal(h world.Handle) (*Portal, bool) {
	e, ok := s.objects.Get(h)
	if !ok {
		return nil, false
	}
	p, ok := e.(*Portal)
	return p, ok
}

func (s *Scene) Beam(h world.Handle) (world.Beam, bool) {
	e, ok := s.objects.Get(h)
	if !ok {
		return nil, false
	}
	b, ok := e.(*Beam)
	if !ok {
		return nil, false
	}
	return b, true
}

// Paint records a deposit
func (s *Scene) Paint(point vmath.Vec3F, power world.PaintPower) {
	s.splats = append(s.splats, Splat{Point: point, Power: power})
}

// Splats returns the deposits recorded since the last ClearSplats
func (s *Scene) Splats() []Splat {
	return s.splats
}

func (s *Scene) ClearSplats() {
	s.splats = s.splats[:0]
}
