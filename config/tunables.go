package config

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/paintblob/parameter"
	"github.com/lixenwraith/paintblob/vmath"
)

// ErrInvalid is wrapped by every Validate failure
var ErrInvalid = errors.New("invalid tunables")

// Tunables is the runtime-configurable blob simulation parameter set
// Values are immutable once published; reload swaps the whole struct
type Tunables struct {
	Gravity      float64 `toml:"gravity" yaml:"gravity"`
	GravityScale float64 `toml:"gravity_scale" yaml:"gravity_scale"`
	AirDrag      float64 `toml:"air_drag" yaml:"air_drag"`

	PortalExitSpeedMin float64 `toml:"portal_exit_speed_min" yaml:"portal_exit_speed_min"`

	RadiusScaleMin       float64 `toml:"radius_scale_min" yaml:"radius_scale_min"`
	RadiusScaleMax       float64 `toml:"radius_scale_max" yaml:"radius_scale_max"`
	CollisionBoxHalfSize float64 `toml:"collision_box_half_size" yaml:"collision_box_half_size"`

	StreakRadius         float64 `toml:"streak_radius" yaml:"streak_radius"`
	StreakAngleThreshold float64 `toml:"streak_angle_threshold" yaml:"streak_angle_threshold"` // degrees
	StreakTraceRange     float64 `toml:"streak_trace_range" yaml:"streak_trace_range"`

	BeamAccel             float64 `toml:"beam_accel" yaml:"beam_accel"`
	BeamCirculation       float64 `toml:"beam_circulation" yaml:"beam_circulation"`               // degrees/sec
	BeamPortalCirculation float64 `toml:"beam_portal_circulation" yaml:"beam_portal_circulation"` // degrees/sec
	BeamVortexRadiusRate  float64 `toml:"beam_vortex_radius_rate" yaml:"beam_vortex_radius_rate"`
	BeamVortexAccel       float64 `toml:"beam_vortex_accel" yaml:"beam_vortex_accel"` // degrees/sec²
	BeamVortexDistance    float64 `toml:"beam_vortex_distance" yaml:"beam_vortex_distance"`
	BeamVortexMinRadius   float64 `toml:"beam_vortex_min_radius" yaml:"beam_vortex_min_radius"`
	BeamRadiusOffset      float64 `toml:"beam_radius_offset" yaml:"beam_radius_offset"`

	LimitedLifetime   bool    `toml:"limited_lifetime" yaml:"limited_lifetime"`
	MaxLifetime       float64 `toml:"max_lifetime" yaml:"max_lifetime"`               // seconds
	MinUpdateInterval float64 `toml:"min_update_interval" yaml:"min_update_interval"` // seconds

	PlayerPaintEnabled bool `toml:"player_paint_enabled" yaml:"player_paint_enabled"`
	ServerMode         bool `toml:"server_mode" yaml:"server_mode"`
}

// Default returns the compiled-in parameter set
func Default() *Tunables {
	return &Tunables{
		Gravity:      parameter.Gravity,
		GravityScale: parameter.GravityScale,
		AirDrag:      parameter.AirDrag,

		PortalExitSpeedMin: parameter.PortalExitSpeedMin,

		RadiusScaleMin:       parameter.RadiusScaleMin,
		RadiusScaleMax:       parameter.RadiusScaleMax,
		CollisionBoxHalfSize: parameter.CollisionBoxHalfSize,

		StreakRadius:         parameter.StreakRadius,
		StreakAngleThreshold: parameter.StreakAngleThresholdDeg,
		StreakTraceRange:     parameter.StreakTraceRange,

		BeamAccel:             parameter.BeamAccel,
		BeamCirculation:       parameter.BeamCirculationDeg,
		BeamPortalCirculation: parameter.BeamPortalCirculationDeg,
		BeamVortexRadiusRate:  parameter.BeamVortexRadiusRate,
		BeamVortexAccel:       parameter.BeamVortexAccelDeg,
		BeamVortexDistance:    parameter.BeamVortexDistance,
		BeamVortexMinRadius:   parameter.BeamVortexMinRadius,
		BeamRadiusOffset:      parameter.BeamRadiusOffset,

		LimitedLifetime:   parameter.LimitedLifetime,
		MaxLifetime:       parameter.MaxLifetime.Seconds(),
		MinUpdateInterval: parameter.MinUpdateInterval.Seconds(),

		PlayerPaintEnabled: parameter.PlayerPaintEnabled,
		ServerMode:         parameter.ServerMode,
	}
}

// Clone returns a copy safe to mutate before publishing
func (t *Tunables) Clone() *Tunables {
	c := *t
	return &c
}

// Validate rejects inverted ranges and negative rates
func (t *Tunables) Validate() error {
	if t.RadiusScaleMin > t.RadiusScaleMax {
		return fmt.Errorf("%w: radius_scale_min %g > radius_scale_max %g", ErrInvalid, t.RadiusScaleMin, t.RadiusScaleMax)
	}
	if t.StreakRadius < 0 || t.StreakRadius >= t.StreakTraceRange {
		return fmt.Errorf("%w: streak_radius %g must be in [0, streak_trace_range %g)", ErrInvalid, t.StreakRadius, t.StreakTraceRange)
	}
	if t.StreakAngleThreshold < 0 || t.StreakAngleThreshold > 180 {
		return fmt.Errorf("%w: streak_angle_threshold %g outside [0,180]", ErrInvalid, t.StreakAngleThreshold)
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"air_drag", t.AirDrag},
		{"portal_exit_speed_min", t.PortalExitSpeedMin},
		{"collision_box_half_size", t.CollisionBoxHalfSize},
		{"streak_trace_range", t.StreakTraceRange},
		{"beam_accel", t.BeamAccel},
		{"beam_vortex_radius_rate", t.BeamVortexRadiusRate},
		{"beam_vortex_accel", t.BeamVortexAccel},
		{"beam_vortex_distance", t.BeamVortexDistance},
		{"beam_vortex_min_radius", t.BeamVortexMinRadius},
		{"max_lifetime", t.MaxLifetime},
		{"min_update_interval", t.MinUpdateInterval},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %g", ErrInvalid, f.name, f.value)
		}
	}
	return nil
}

// StreakAngleThresholdRad returns the streak acceptance angle in radians
func (t *Tunables) StreakAngleThresholdRad() float64 {
	return vmath.DegToRad(t.StreakAngleThreshold)
}

// EffectiveGravity is the downward acceleration applied to blobs in flight
func (t *Tunables) EffectiveGravity() float64 {
	return t.Gravity * t.GravityScale
}
