package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/paintblob/event"
)

// ErrDisabled is returned by Initialize when the config turns audio off
var ErrDisabled = errors.New("audio disabled")

// Player mixes cues for blob sound signals
// Every method is safe before Initialize and after Cleanup; cues are then counted but not heard
type Player struct {
	mu          sync.Mutex
	cfg         *Config
	mixer       *beep.Mixer
	initialized bool

	now  func() time.Time
	last [soundKinds]time.Time

	played    int
	throttled int

	buf []event.Signal
}

// NewPlayer creates a player, a nil cfg uses DefaultConfig
func NewPlayer(cfg *Config) *Player {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Player{
		cfg:   cfg,
		mixer: &beep.Mixer{},
		now:   time.Now,
		buf:   make([]event.Signal, 0, event.QueueSize),
	}
}

// Initialize opens the speaker and starts the mixer
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if !p.cfg.Enabled {
		return ErrDisabled
	}

	rate := beep.SampleRate(p.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup silences all cues
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// Play starts the cue for kind unless one of the same kind started within MinGap
// Returns false when throttled
func (p *Player) Play(kind event.SoundKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.play(kind)
}

func (p *Player) play(kind event.SoundKind) bool {
	if int(kind) >= soundKinds {
		return false
	}
	now := p.now()
	if last := p.last[kind]; !last.IsZero() && now.Sub(last) < p.cfg.MinGap {
		p.throttled++
		return false
	}
	p.last[kind] = now
	p.played++

	if !p.initialized {
		return true
	}
	if s := Cue(kind, p.cfg); s != nil {
		speaker.Lock()
		p.mixer.Add(s)
		speaker.Unlock()
	}
	return true
}

// Drain consumes q and plays every sound signal, returns the number of signals consumed
func (p *Player) Drain(q *event.Queue) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = q.Consume(p.buf[:0])
	for _, s := range p.buf {
		if s.Type == event.SignalSound {
			p.play(s.Sound)
		}
	}
	return len(p.buf)
}

// Stats returns cues played and throttled since creation
func (p *Player) Stats() (played, throttled int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played, p.throttled
}
