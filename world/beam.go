package world

import "github.com/lixenwraith/paintblob/vmath"

// Beam is a tractor beam force volume around the segment Start-End
// Flow runs Start->End, or End->Start when Reversed
type Beam interface {
	Handle() Handle
	Start() vmath.Vec3F
	End() vmath.Vec3F
	Radius() float64
	LinearForce() float64
	Reversed() bool
	PortalAtStart() bool
	PortalAtEnd() bool
	// CloneHelper is an auxiliary entity excluded from obstruction traces, may be zero
	CloneHelper() Handle

	Members() []BlobID
	AddMember(id BlobID)
	RemoveMember(id BlobID)
}

// BeamFlow returns the unit flow direction of b
func BeamFlow(b Beam) vmath.Vec3F {
	axis := vmath.V3FNormalize(vmath.V3FSub(b.End(), b.Start()))
	if b.Reversed() {
		return vmath.V3FNeg(axis)
	}
	return axis
}

// BeamExitHasPortal reports whether the end the flow heads into holds a portal
func BeamExitHasPortal(b Beam) bool {
	if b.Reversed() {
		return b.PortalAtStart()
	}
	return b.PortalAtEnd()
}
