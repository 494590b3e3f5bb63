package world

import "github.com/lixenwraith/paintblob/vmath"

// Portal is one side of a linked portal pair
type Portal interface {
	Handle() Handle
	Active() bool
	// Linked returns the counterpart handle, zero when unlinked
	Linked() Handle
	// Transform maps this portal's space into the linked portal's space
	Transform() vmath.Transform
	// ReverseTransform is the counterpart's transform back into this portal's space
	ReverseTransform() vmath.Transform
	// Forward is the outward facing normal
	Forward() vmath.Vec3F
}

// ActiveAndLinked reports whether p can teleport
func ActiveAndLinked(p Portal) bool {
	return p != nil && p.Active() && !p.Linked().IsZero()
}
