package audio

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/lixenwraith/paintblob/event"
)

// Config controls cue playback
type Config struct {
	Enabled      bool
	MasterVolume float64
	// EffectVolumes is indexed by event.SoundKind
	EffectVolumes [soundKinds]float64
	SampleRate    int
	// MinGap is the shortest interval between two cues of the same kind
	MinGap time.Duration
}

const soundKinds = int(event.SoundBeamCapture) + 1

// DefaultConfig returns audible defaults with impact cues kept quiet, they fire in bursts
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		MasterVolume: 0.5,
		EffectVolumes: [soundKinds]float64{
			event.SoundImpact:      0.3,
			event.SoundTeleport:    0.6,
			event.SoundCleanse:     0.5,
			event.SoundBeamCapture: 0.6,
		},
		SampleRate: 48000,
		MinGap:     40 * time.Millisecond,
	}
}

// LoadConfig applies PAINTBLOB_* environment overrides to the defaults
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("PAINTBLOB_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// 0-100
	if volume := os.Getenv("PAINTBLOB_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clampVolume(float64(val) / 100.0)
		}
	}

	// JSON object keyed by cue name, e.g. {"impact":0.1,"teleport":0.8}
	if effectVols := os.Getenv("PAINTBLOB_SFX_VOLUMES"); effectVols != "" {
		var volumes map[string]float64
		if err := json.Unmarshal([]byte(effectVols), &volumes); err == nil {
			for k := 0; k < soundKinds; k++ {
				if v, ok := volumes[event.SoundKind(k).String()]; ok {
					cfg.EffectVolumes[k] = clampVolume(v)
				}
			}
		}
	}

	if sampleRate := os.Getenv("PAINTBLOB_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if gap := os.Getenv("PAINTBLOB_CUE_GAP"); gap != "" {
		if d, err := time.ParseDuration(gap); err == nil && d >= 0 {
			cfg.MinGap = d
		}
	}

	return cfg
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
