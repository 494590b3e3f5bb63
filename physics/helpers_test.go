package physics

import (
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

type stubBeam struct {
	start, end    vmath.Vec3F
	radius, force float64
	reversed      bool
	members       []world.BlobID
}

func (b *stubBeam) Handle() world.Handle      { return world.Handle{} }
func (b *stubBeam) Start() vmath.Vec3F        { return b.start }
func (b *stubBeam) End() vmath.Vec3F          { return b.end }
func (b *stubBeam) Radius() float64           { return b.radius }
func (b *stubBeam) LinearForce() float64      { return b.force }
func (b *stubBeam) Reversed() bool            { return b.reversed }
func (b *stubBeam) PortalAtStart() bool       { return false }
func (b *stubBeam) PortalAtEnd() bool         { return false }
func (b *stubBeam) CloneHelper() world.Handle { return world.Handle{} }
func (b *stubBeam) Members() []world.BlobID   { return b.members }
func (b *stubBeam) AddMember(id world.BlobID) { b.members = append(b.members, id) }
func (b *stubBeam) RemoveMember(id world.BlobID) {
	for i, m := range b.members {
		if m == id {
			b.members = append(b.members[:i], b.members[i+1:]...)
			return
		}
	}
}
