package blob

import (
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/parameter"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// ID is the stable identity of a blob
type ID = world.BlobID

// Mode is the blob movement mode, exactly one is active
type Mode uint8

const (
	ModeAir Mode = iota
	ModeStreak
	ModeTractorBeam
)

func (m Mode) String() string {
	switch m {
	case ModeAir:
		return "air"
	case ModeStreak:
		return "streak"
	case ModeTractorBeam:
		return "tractor_beam"
	default:
		return "invalid"
	}
}

// Valid reports whether m is one of the three movement modes
func (m Mode) Valid() bool {
	return m <= ModeTractorBeam
}

// MaxTeleports bounds the per-tick teleport history, one record per portal crossing
const MaxTeleports = parameter.MaxRaySegments

// TeleportRecord describes one portal crossing within a tick, presentation only
type TeleportRecord struct {
	Entry, Exit world.Handle
	Transform   vmath.Transform
	Reverse     vmath.Transform
	EntryPoint  vmath.Vec3F
	ExitPoint   vmath.Vec3F
	Time        float64
}

// BoxCache remembers whether a cube around Center overlaps static world
// Purely a shortcut: dropping it only costs extra traces
type BoxCache struct {
	Center   vmath.Vec3F
	HalfSize float64
	HasWorld bool
	Valid    bool
}

// Covers reports whether both points lie inside the cached cube
func (c *BoxCache) Covers(a, b vmath.Vec3F) bool {
	if !c.Valid {
		return false
	}
	box := vmath.BoxAround(c.Center, c.HalfSize)
	return box.Contains(a) && box.Contains(b)
}

// Blob is one simulated paint particle
// Owned by its spawner; the simulation mutates it and only ever flags deletion
type Blob struct {
	ID ID

	Pos     vmath.Vec3F
	PrevPos vmath.Vec3F
	Vel     vmath.Vec3F

	// Scratch, valid only within the tick that wrote it
	TentativePos vmath.Vec3F
	TentativeVel vmath.Vec3F
	BeamFraction float64

	Mode  Mode
	Power world.PaintPower
	Owner world.Handle

	StreakDir        vmath.Vec3F // points into the streak surface
	StreakTime       float64
	StreakDampenRate float64
	StreakDirChanged bool

	RadiusScale float64

	VortexRadius     float64
	VortexSpeed      float64 // radians/sec
	VortexDir        vmath.Vec3F
	DestVortexRadius float64

	Beam           world.Handle
	InBeamThisTick bool

	Deleted    bool
	Lifetime   float64
	LastUpdate float64

	Teleported    bool
	TeleportCount int
	Teleports     [MaxTeleports]TeleportRecord
	NumTeleports  int

	Silent   bool
	DrawOnly bool

	GhostPortal world.Handle

	Box BoxCache
}

// Spawn carries the spawner-supplied initial state
type Spawn struct {
	Origin           vmath.Vec3F
	Velocity         vmath.Vec3F
	Power            world.PaintPower
	MaxStreakTime    float64
	StreakDampenRate float64
	Owner            world.Handle
	Silent           bool
	DrawOnly         bool
	Now              float64
}

// New returns a blob with identity id, call Init before simulating
func New(id ID) *Blob {
	return &Blob{ID: id}
}

// Init resets b to Air at the spawn origin; never fails
// Radius scale and vortex seed come from rng so spawns are reproducible
func (b *Blob) Init(s Spawn, rng *vmath.FastRand, tun *config.Tunables) {
	id := b.ID
	*b = Blob{ID: id}

	b.Pos = s.Origin
	b.PrevPos = s.Origin
	b.Vel = s.Velocity
	b.TentativePos = s.Origin
	b.TentativeVel = s.Velocity
	b.Mode = ModeAir
	b.Power = s.Power
	b.Owner = s.Owner
	b.StreakTime = s.MaxStreakTime
	b.StreakDampenRate = s.StreakDampenRate
	b.Silent = s.Silent
	b.DrawOnly = s.DrawOnly
	b.LastUpdate = s.Now

	b.RadiusScale = rng.Range(tun.RadiusScaleMin, tun.RadiusScaleMax)
	b.VortexDir = rng.UnitVector()
}

// Delete flags the blob for removal by its owner, terminal for the tick
func (b *Blob) Delete() {
	b.Deleted = true
}

// MoveTo sets the position, keeping the previous one
func (b *Blob) MoveTo(p vmath.Vec3F) {
	b.PrevPos = b.Pos
	b.Pos = p
}

// Commit adopts the tentative state
func (b *Blob) Commit() {
	b.MoveTo(b.TentativePos)
	b.Vel = b.TentativeVel
}

// Elapsed returns seconds since the last update
func (b *Blob) Elapsed(now float64) float64 {
	return now - b.LastUpdate
}

// BeginTick clears per-tick flags and scratch
func (b *Blob) BeginTick() {
	b.ClearTickSignals()
	b.StreakDirChanged = false
	b.TentativePos = b.Pos
	b.TentativeVel = b.Vel
}

// ClearTickSignals drops the per-tick outputs, also for blobs skipped this tick
func (b *Blob) ClearTickSignals() {
	b.Teleported = false
	b.NumTeleports = 0
	b.InBeamThisTick = false
}

// AddTeleport appends a crossing record, reports false when the history is full
func (b *Blob) AddTeleport(r TeleportRecord) bool {
	if b.NumTeleports == MaxTeleports {
		return false
	}
	b.Teleports[b.NumTeleports] = r
	b.NumTeleports++
	return true
}

// TeleportHistory returns this tick's crossing records
func (b *Blob) TeleportHistory() []TeleportRecord {
	return b.Teleports[:b.NumTeleports]
}

// InBeam reports an active beam association handle, liveness is the caller's check
func (b *Blob) InBeam() bool {
	return !b.Beam.IsZero()
}
