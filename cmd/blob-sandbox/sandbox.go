package main

import (
	"log/slog"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/engine"
	"github.com/lixenwraith/paintblob/event"
	"github.com/lixenwraith/paintblob/status"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
	"github.com/lixenwraith/paintblob/world/scene"
)

const (
	maxBlobs      = 4000
	maxSplats     = 20000
	burstSize     = 40
	pruneInterval = 2.0 // seconds of simulation time

	emitterSpeed  = 550.0
	emitterJitter = 60.0
	streakTime    = 1.5
	streakDampen  = 120.0
)

// Arena bounds in world units, X right and Z up
var arena = vmath.Box{Min: vmath.V3F(-50, -50, -20), Max: vmath.V3F(1050, 50, 400)}

// sandbox owns the demo world and the blobs fired into it
type sandbox struct {
	scene *scene.Scene
	sim   *engine.Simulation
	store *config.Store
	queue *event.Queue
	rng   *vmath.FastRand
	log   *slog.Logger

	blobs  []*blob.Blob
	nextID blob.ID
	power  world.PaintPower
	stats  engine.Stats

	emitterPos vmath.Vec3F
	emitterDir vmath.Vec3F
	rate       float64 // blobs per second
	spawnAcc   float64
	lastTime   float64
	lastPrune  float64

	cleanser *scene.Object
	beam     *scene.Beam
	portals  [2]*scene.Portal
}

func newSandbox(store *config.Store, logger *slog.Logger, seed uint64, rate float64) *sandbox {
	sb := &sandbox{
		scene:      scene.New(),
		store:      store,
		queue:      event.NewQueue(),
		rng:        vmath.NewFastRand(seed),
		log:        logger.With("component", "sandbox"),
		power:      world.PowerBounce,
		emitterPos: vmath.V3F(60, 0, 120),
		emitterDir: vmath.V3FNormalize(vmath.V3F(1, 0, 0.5)),
		rate:       rate,
	}
	sb.build()
	sb.sim = engine.New(engine.Options{
		Gateway: sb.scene,
		Painter: sb.scene,
		Sink:    sb.queue,
		Store:   store,
		Logger:  logger,
		Metrics: status.NewRegistry(),
	})
	return sb
}

// build lays out floor, walls, a platform, a cleanser field, a vertical beam and a wall portal pair
func (sb *sandbox) build() {
	s := sb.scene
	s.AddStatic(vmath.Box{Min: vmath.V3F(-50, -50, -20), Max: vmath.V3F(1050, 50, 0)})
	s.AddStatic(vmath.Box{Min: vmath.V3F(-50, -50, 0), Max: vmath.V3F(0, 50, 400)})
	s.AddStatic(vmath.Box{Min: vmath.V3F(1000, -50, 0), Max: vmath.V3F(1050, 50, 400)})
	s.AddStatic(vmath.Box{Min: vmath.V3F(400, -50, 150), Max: vmath.V3F(600, 50, 170)})

	sb.cleanser = s.AddCleanser(vmath.Box{Min: vmath.V3F(250, -50, 0), Max: vmath.V3F(300, 50, 120)}, true)
	sb.beam = s.AddBeam(vmath.V3F(800, 0, 0), vmath.V3F(800, 0, 350), 30, 300)

	a := s.AddPortal(vmath.V3F(1000, 0, 60), vmath.V3F(-1, 0, 0), vmath.V3FUp, 40, 40)
	b := s.AddPortal(vmath.V3F(0, 0, 300), vmath.V3F(1, 0, 0), vmath.V3FUp, 40, 40)
	scene.Link(a, b)
	sb.portals = [2]*scene.Portal{a, b}
}

// fire spawns n blobs from the emitter with a jittered velocity
func (sb *sandbox) fire(n int, now float64) {
	tun := sb.store.Load()
	for i := 0; i < n && len(sb.blobs) < maxBlobs; i++ {
		sb.nextID++
		jitter := vmath.V3FScale(sb.rng.UnitVector(), emitterJitter)
		jitter.Y = 0
		vel := vmath.V3FAdd(vmath.V3FScale(sb.emitterDir, emitterSpeed), jitter)

		b := blob.New(sb.nextID)
		b.Init(blob.Spawn{
			Origin:           sb.emitterPos,
			Velocity:         vel,
			Power:            sb.power,
			MaxStreakTime:    streakTime,
			StreakDampenRate: streakDampen,
			Now:              now,
		}, sb.rng, tun)
		sb.blobs = append(sb.blobs, b)
	}
}

// step advances the simulation to now and drops deleted blobs
func (sb *sandbox) step(now float64) {
	dt := now - sb.lastTime
	sb.lastTime = now
	if dt > 0 {
		sb.spawnAcc += sb.rate * dt
		if n := int(sb.spawnAcc); n > 0 {
			sb.spawnAcc -= float64(n)
			sb.fire(n, now)
		}
	}

	sb.stats = sb.sim.Update(now, sb.blobs)
	sb.sim.Metrics().Gauge(status.KeySignalsDropped).Set(float64(sb.queue.Dropped()))

	live := sb.blobs[:0]
	for _, b := range sb.blobs {
		if !b.Deleted && !arena.Contains(b.Pos) {
			sb.sim.Machine().Delete(b)
		}
		if !b.Deleted {
			live = append(live, b)
		}
	}
	clear(sb.blobs[len(live):])
	sb.blobs = live

	if now-sb.lastPrune >= pruneInterval {
		sb.lastPrune = now
		sb.prune()
	}
	if len(sb.scene.Splats()) > maxSplats {
		sb.scene.ClearSplats()
	}
}

// prune drops visit history for blobs no longer owned
func (sb *sandbox) prune() {
	alive := make(map[blob.ID]struct{}, len(sb.blobs))
	for _, b := range sb.blobs {
		alive[b.ID] = struct{}{}
	}
	sb.sim.PruneVisitHistory(func(id blob.ID) bool {
		_, ok := alive[id]
		return ok
	})
}

// reset removes every blob and splat
func (sb *sandbox) reset() {
	for _, b := range sb.blobs {
		sb.sim.Machine().Delete(b)
	}
	clear(sb.blobs)
	sb.blobs = sb.blobs[:0]
	sb.scene.ClearSplats()
	sb.prune()
	sb.log.Info("sandbox reset")
}

func (sb *sandbox) toggleCleanser() {
	sb.cleanser.SetEnabled(!sb.cleanser.IsEnabled())
	sb.log.Info("cleanser toggled", "enabled", sb.cleanser.IsEnabled())
}

func (sb *sandbox) reverseBeam() {
	sb.beam.SetReversed(!sb.beam.Reversed())
	sb.log.Info("beam reversed", "reversed", sb.beam.Reversed())
}

func (sb *sandbox) togglePortals() {
	active := !sb.portals[0].Active()
	for _, p := range sb.portals {
		p.SetActive(active)
	}
	sb.log.Info("portals toggled", "active", active)
}

func (sb *sandbox) setPower(p world.PaintPower) {
	sb.power = p
}
