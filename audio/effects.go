// Package audio turns blob sound requests into short synthesized cues played through beep
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/paintblob/event"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a finite wave, optionally gliding from freq to endFreq
type oscillator struct {
	freq, endFreq float64
	phase         float64
	duration      int
	position      int
	wave          WaveType
	rate          beep.SampleRate
}

// NewOscillator creates a fixed-pitch oscillator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewGlide(freq, freq, duration, wave, rate)
}

// NewGlide creates an oscillator whose pitch moves linearly from freq to endFreq
func NewGlide(freq, endFreq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		endFreq:  endFreq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		progress := float64(o.position) / float64(o.duration)
		freq := o.freq + (o.endFreq-o.freq)*progress
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope wraps s with a linear attack and release over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly; math.Log2(0) is -Inf so zero volume is mapped to silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

const (
	impactDuration   = 70 * time.Millisecond
	teleportDuration = 180 * time.Millisecond
	cleanseDuration  = 220 * time.Millisecond
	captureDuration  = 260 * time.Millisecond
	cueAttack        = 4 * time.Millisecond
)

// CueDuration is the playing time of the cue for kind
func CueDuration(kind event.SoundKind) time.Duration {
	switch kind {
	case event.SoundImpact:
		return impactDuration
	case event.SoundTeleport:
		return teleportDuration
	case event.SoundCleanse:
		return cleanseDuration
	case event.SoundBeamCapture:
		return captureDuration
	}
	return 0
}

// createImpact is a low falling thud
func createImpact(rate beep.SampleRate) beep.Streamer {
	osc := NewGlide(180, 60, impactDuration, WaveSine, rate)
	return NewEnvelope(osc, impactDuration, cueAttack, impactDuration-cueAttack, rate)
}

// createTeleport is a rising sweep
func createTeleport(rate beep.SampleRate) beep.Streamer {
	osc := NewGlide(300, 1200, teleportDuration, WaveSine, rate)
	return NewEnvelope(osc, teleportDuration, cueAttack, teleportDuration/2, rate)
}

// createCleanse is a hiss over a buzz
func createCleanse(rate beep.SampleRate) beep.Streamer {
	noise := NewEnvelope(NewOscillator(0, cleanseDuration, WaveNoise, rate), cleanseDuration, cueAttack, cleanseDuration-cueAttack, rate)
	buzz := NewEnvelope(NewOscillator(110, cleanseDuration, WaveSaw, rate), cleanseDuration, cueAttack, cleanseDuration/2, rate)
	return beep.Mix(newVolume(noise, 0.6), newVolume(buzz, 0.3))
}

// createCapture is a two-partial bell
func createCapture(rate beep.SampleRate) beep.Streamer {
	fund := NewEnvelope(NewOscillator(660, captureDuration, WaveSine, rate), captureDuration, cueAttack, captureDuration-cueAttack, rate)
	over := NewEnvelope(NewOscillator(1320, captureDuration, WaveSine, rate), captureDuration, cueAttack, captureDuration/3, rate)
	return beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.3))
}

// Cue returns the volume-scaled streamer for kind, nil for unknown kinds
func Cue(kind event.SoundKind, cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	var s beep.Streamer
	switch kind {
	case event.SoundImpact:
		s = createImpact(rate)
	case event.SoundTeleport:
		s = createTeleport(rate)
	case event.SoundCleanse:
		s = createCleanse(rate)
	case event.SoundBeamCapture:
		s = createCapture(rate)
	default:
		return nil
	}
	return newVolume(s, cfg.EffectVolumes[kind]*cfg.MasterVolume)
}
