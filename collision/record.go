// Package collision turns a blob's tentative displacement into ordered interaction records
package collision

import (
	"github.com/lixenwraith/paintblob/parameter"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// MaxRecords bounds the interactions produced by one Resolve call
const MaxRecords = parameter.MaxRayEntities

// Kind is the interaction a blob has with one obstruction
type Kind uint8

const (
	None Kind = iota
	World
	Player
	Other
	PaintCleanser
	TractorBeamTrigger
	PropPortal
	PortalCrossing
)

var kindNames = [...]string{
	None:               "none",
	World:              "world",
	Player:             "player",
	Other:              "other",
	PaintCleanser:      "paint_cleanser",
	TractorBeamTrigger: "tractor_beam_trigger",
	PropPortal:         "prop_portal",
	PortalCrossing:     "portal_crossing",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Blocking reports kinds that stop the blob at their contact point
func (k Kind) Blocking() bool {
	switch k {
	case World, Player, Other, PaintCleanser:
		return true
	}
	return false
}

// Record is one resolved interaction
// Fraction is measured along the original, untransformed ray so records from different segments compare
type Record struct {
	Kind     Kind
	Entity   world.Handle
	Normal   vmath.Vec3F
	Fraction float64
	Target   vmath.Vec3F
}
