// Package event carries the signals the blob simulation produces for presentation layers
package event

import (
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// SoundKind selects the cue a PlaySound request asks for
type SoundKind uint8

const (
	SoundImpact SoundKind = iota
	SoundTeleport
	SoundCleanse
	SoundBeamCapture
)

func (k SoundKind) String() string {
	switch k {
	case SoundImpact:
		return "impact"
	case SoundTeleport:
		return "teleport"
	case SoundCleanse:
		return "cleanse"
	case SoundBeamCapture:
		return "beam_capture"
	}
	return "unknown"
}

// SignalType distinguishes queued signals
type SignalType uint8

const (
	SignalContact SignalType = iota
	SignalSound
)

// Signal is one produced request
type Signal struct {
	Type   SignalType
	Blob   world.BlobID
	Pos    vmath.Vec3F
	Normal vmath.Vec3F
	Power  world.PaintPower
	Sound  SoundKind
}

// Sink receives contact effect and sound requests
// Called from the sequential phase of a tick, implementations must not block
type Sink interface {
	ContactEffect(id world.BlobID, pos, normal vmath.Vec3F, power world.PaintPower)
	PlaySound(id world.BlobID, kind SoundKind, pos vmath.Vec3F)
}

// Discard drops every signal
var Discard Sink = discard{}

type discard struct{}

func (discard) ContactEffect(world.BlobID, vmath.Vec3F, vmath.Vec3F, world.PaintPower) {}
func (discard) PlaySound(world.BlobID, SoundKind, vmath.Vec3F)                         {}

// Recorder keeps every signal in arrival order
type Recorder struct {
	Signals []Signal
}

func (r *Recorder) ContactEffect(id world.BlobID, pos, normal vmath.Vec3F, power world.PaintPower) {
	r.Signals = append(r.Signals, Signal{Type: SignalContact, Blob: id, Pos: pos, Normal: normal, Power: power})
}

func (r *Recorder) PlaySound(id world.BlobID, kind SoundKind, pos vmath.Vec3F) {
	r.Signals = append(r.Signals, Signal{Type: SignalSound, Blob: id, Pos: pos, Sound: kind})
}

// Count returns the number of recorded signals of type t
func (r *Recorder) Count(t SignalType) int {
	n := 0
	for _, s := range r.Signals {
		if s.Type == t {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.Signals = r.Signals[:0]
}
