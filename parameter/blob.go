package parameter

import "time"

// Air
const (
	// Gravity is world gravity in units per second², scaled per blob by GravityScale
	Gravity = 600.0
	// GravityScale multiplies Gravity for blobs in flight
	GravityScale = 1.0
	// AirDrag is the exponential velocity damping coefficient (1/sec)
	AirDrag = 0.1
)

// Portals
const (
	// PortalExitSpeedMin is the floor applied to velocity magnitude after a teleport (units/sec)
	PortalExitSpeedMin = 225.0
)

// Blob shape
const (
	// RadiusScaleMin/Max bound the random per-blob radius scale assigned at spawn
	RadiusScaleMin = 0.8
	RadiusScaleMax = 1.2
	// CollisionBoxHalfSize is the half extent of the cached static-world occupancy cube
	CollisionBoxHalfSize = 48.0
)

// Streak
const (
	// StreakRadius is the presentation radius of a streaking blob, which rides this far off its surface
	StreakRadius = 1.25
	// StreakAngleThresholdDeg is the maximum impact angle (degrees) accepted for streaking on non-wall surfaces
	StreakAngleThresholdDeg = 45.0
	// StreakTraceRange is the length of the re-sampling ray cast into the streak surface
	StreakTraceRange = 2.0
)

// Tractor beam
const (
	// BeamAccel is the along-beam acceleration toward the target speed (units/sec²)
	BeamAccel = 400.0
	// BeamCirculationDeg is the vortex angular speed in the beam body (degrees/sec)
	BeamCirculationDeg = 180.0
	// BeamPortalCirculationDeg is the vortex angular speed near either beam end (degrees/sec)
	BeamPortalCirculationDeg = 540.0
	// BeamVortexRadiusRate is how fast the vortex radius moves toward its destination (units/sec)
	BeamVortexRadiusRate = 100.0
	// BeamVortexAccelDeg is how fast vortex angular speed moves toward its destination (degrees/sec²)
	BeamVortexAccelDeg = 900.0
	// BeamVortexDistance is the distance from a beam end at which the near-end vortex applies
	BeamVortexDistance = 60.0
	// BeamVortexMinRadius is the destination radius when heading into a portal
	BeamVortexMinRadius = 0.0
	// BeamRadiusOffset shrinks the beam radius to the visual vortex radius
	BeamRadiusOffset = 8.0
)

// Lifetime
const (
	// LimitedLifetime toggles deletion after MaxLifetime
	LimitedLifetime = false
	// MaxLifetime is the lifetime cap when LimitedLifetime is on
	MaxLifetime = 3 * time.Second
	// MinUpdateInterval skips blobs updated more recently than this
	MinUpdateInterval = 100 * time.Microsecond
)

// Gameplay switches
const (
	// PlayerPaintEnabled lets blobs hit and paint players
	PlayerPaintEnabled = true
	// ServerMode records per-crossing teleport history
	ServerMode = true
)

// Query bounds
const (
	// MaxRayEntities caps entities gathered along one ray and interaction records per resolve
	MaxRayEntities = 64
	// MaxRaySegments caps portal-separated pieces of one ray
	MaxRaySegments = 16
	// BeamHistorySize is the number of recently visited beams remembered per blob
	BeamHistorySize = 6
	// VisitHistoryCapacity bounds the number of blobs tracked by the beam visit history
	VisitHistoryCapacity = 4096
)
