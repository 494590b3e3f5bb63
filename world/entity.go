package world

import "github.com/lixenwraith/paintblob/vmath"

// EntityKind is the closed set of entity capabilities the blob core distinguishes
// Resolved once by the gateway, never by string comparison along a trace
type EntityKind uint8

const (
	KindNone EntityKind = iota
	KindWorld
	KindPlayer
	KindSolid
	KindPaintCleanser
	KindTractorBeam
	KindPortal
	KindTrigger
)

var kindNames = [...]string{
	KindNone:          "none",
	KindWorld:         "world",
	KindPlayer:        "player",
	KindSolid:         "solid",
	KindPaintCleanser: "paint_cleanser",
	KindTractorBeam:   "tractor_beam",
	KindPortal:        "portal",
	KindTrigger:       "trigger",
}

func (k EntityKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Entity is the view of a world entity the blob core consumes
type Entity interface {
	Handle() Handle
	Kind() EntityKind
	Bounds() vmath.Box
	Velocity() vmath.Vec3F
	// CollisionEligible reports solid entities that participate in blob collision
	CollisionEligible() bool
}

// Cleanser is implemented by KindPaintCleanser entities
type Cleanser interface {
	Entity
	IsEnabled() bool
}

// BlobID is the stable identity of a blob, assigned by its spawner
type BlobID uint64

// PaintPower is the paint type carried by a blob
type PaintPower uint8

const (
	PowerBounce PaintPower = iota
	PowerSpeed
	PowerPortal
	PowerReflect
	PowerNone
)

// Painter receives paint deposits
type Painter interface {
	Paint(point vmath.Vec3F, power PaintPower)
}
