package engine

import (
	"bytes"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/event"
	"github.com/lixenwraith/paintblob/status"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
	"github.com/lixenwraith/paintblob/world/scene"
)

type fixture struct {
	scene *scene.Scene
	tun   *config.Tunables
	rec   *event.Recorder
	log   *bytes.Buffer
	sim   *Simulation
	rng   *vmath.FastRand
}

func newFixture(mutate func(t *config.Tunables)) *fixture {
	tun := config.Default()
	if mutate != nil {
		mutate(tun)
	}
	f := &fixture{
		scene: scene.New(),
		tun:   tun,
		rec:   &event.Recorder{},
		log:   &bytes.Buffer{},
		rng:   vmath.NewFastRand(1),
	}
	f.sim = New(Options{
		Gateway: f.scene,
		Painter: f.scene,
		Sink:    f.rec,
		Store:   config.NewStore(tun),
		Logger:  slog.New(slog.NewTextHandler(f.log, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Metrics: status.NewRegistry(),
	})
	return f
}

func (f *fixture) spawn(id blob.ID, pos, vel vmath.Vec3F) *blob.Blob {
	b := blob.New(id)
	b.Init(blob.Spawn{Origin: pos, Velocity: vel, MaxStreakTime: 1, StreakDampenRate: 10}, f.rng, f.tun)
	return b
}

// capture puts b into beam as if it had been caught on a previous tick
func capture(b *blob.Blob, beam *scene.Beam) {
	b.Mode = blob.ModeTractorBeam
	b.Beam = beam.Handle()
	beam.AddMember(b.ID)
	closest, _ := vmath.ClosestPointOnLine(b.Pos, beam.Start(), beam.End())
	b.VortexRadius = vmath.V3FDist(b.Pos, closest)
	b.DestVortexRadius = b.VortexRadius
}

func TestUpdate_FreeFall(t *testing.T) {
	f := newFixture(func(t *config.Tunables) { t.AirDrag = 0 })
	b := f.spawn(1, vmath.V3F(0, 0, 1000), vmath.Vec3F{})

	const (
		dt = 1.0 / 60
		n  = 20
	)
	for i := 1; i <= n; i++ {
		st := f.sim.Update(float64(i)*dt, []*blob.Blob{b})
		require.Equal(t, 1, st.Air)
	}

	assert.False(t, b.Deleted)
	assert.Equal(t, blob.ModeAir, b.Mode)
	assert.InDelta(t, -f.tun.EffectiveGravity()*n*dt, b.Vel.Z, 1e-6)
	assert.InDelta(t, n*dt, b.LastUpdate, 1e-12)
	assert.Equal(t, int64(n), f.sim.Metrics().Counter(status.KeyTicks).Load())
}

func TestUpdate_PartitionStable(t *testing.T) {
	f := newFixture(nil)
	beam := f.scene.AddBeam(vmath.V3F(0, 0, 0), vmath.V3F(0, 0, 1000), 40, 200)

	var blobs []*blob.Blob
	for i := 0; i < 9; i++ {
		b := f.spawn(blob.ID(i+1), vmath.V3F(float64(i)*100+500, 0, 500), vmath.V3F(10, 0, 0))
		switch i % 3 {
		case 1:
			b.Pos = vmath.V3F(5, 0, float64(100+i*50))
			capture(b, beam)
		case 2:
			b.Mode = blob.ModeStreak
			b.StreakDir = vmath.V3F(0, 0, -1)
		}
		blobs = append(blobs, b)
	}
	// Updated too recently to take part
	blobs[0].LastUpdate = 0.1 - 1e-5

	st := f.sim.Update(0.1, blobs)
	assert.Equal(t, 1, st.Skipped)
	assert.Equal(t, len(blobs)-st.Skipped, st.FirstPass())
	assert.Equal(t, 3, st.Beam)
	assert.Equal(t, 2, st.Air)
	assert.Equal(t, 3, st.Streak)

	// Group order follows input order
	assert.Equal(t, []*blob.Blob{blobs[1], blobs[4], blobs[7]}, f.sim.beam)
	assert.Equal(t, []*blob.Blob{blobs[3], blobs[6]}, f.sim.air)

	for _, b := range blobs {
		assert.True(t, b.Mode.Valid(), "blob %d mode %v", b.ID, b.Mode)
	}
	assert.InDelta(t, 0.1-1e-5, blobs[0].LastUpdate, 1e-12, "skipped blob not stamped")
}

func TestUpdate_StationaryBlobNeverResolved(t *testing.T) {
	f := newFixture(func(t *config.Tunables) { t.GravityScale = 0 })
	f.scene.AddStatic(vmath.BoxAround(vmath.Vec3F{}, 10))
	// Resting against the box: any resolve would register a start-solid hit
	b := f.spawn(1, vmath.V3F(0, 0, 5), vmath.Vec3F{})

	st := f.sim.Update(0.1, []*blob.Blob{b})
	assert.Equal(t, 1, st.Routed)
	assert.Zero(t, st.Resolved)
	assert.False(t, b.Deleted)
	assert.Equal(t, 0.1, b.LastUpdate)
}

func TestUpdate_LimitedLifetime(t *testing.T) {
	f := newFixture(func(t *config.Tunables) {
		t.LimitedLifetime = true
		t.MaxLifetime = 0.25
	})
	b := f.spawn(1, vmath.V3F(0, 0, 1000), vmath.Vec3F{})

	st := f.sim.Update(0.1, []*blob.Blob{b})
	assert.Zero(t, st.Expired)
	st = f.sim.Update(0.3, []*blob.Blob{b})
	assert.Equal(t, 1, st.Expired)
	assert.Equal(t, 1, st.Deleted)
	assert.True(t, b.Deleted)
	assert.Equal(t, 0.1, b.LastUpdate, "expired blobs leave the first pass")

	st = f.sim.Update(0.4, []*blob.Blob{b})
	assert.Zero(t, st.FirstPass())
}

func TestUpdate_BeamInteriorCommitted(t *testing.T) {
	f := newFixture(nil)
	beam := f.scene.AddBeam(vmath.V3F(0, 0, 0), vmath.V3F(0, 0, 1000), 40, 200)
	b := f.spawn(1, vmath.V3F(5, 0, 500), vmath.V3F(0, 0, 50))
	capture(b, beam)

	st := f.sim.Update(0.016, []*blob.Blob{b})
	assert.Equal(t, 1, st.Committed)
	assert.Zero(t, st.Routed)
	assert.Equal(t, blob.ModeTractorBeam, b.Mode)
	assert.True(t, b.InBeamThisTick)
	assert.Greater(t, b.Pos.Z, 500.0)
}

func TestUpdate_BadSectionRoutes(t *testing.T) {
	f := newFixture(nil)
	beam := f.scene.AddBeam(vmath.V3F(0, 0, 0), vmath.V3F(0, 0, 1000), 40, 200)
	f.scene.AddSolid(vmath.Box{Min: vmath.V3F(20, -5, 490), Max: vmath.V3F(30, 5, 510)})
	b := f.spawn(1, vmath.V3F(5, 0, 500), vmath.V3F(0, 0, 50))
	capture(b, beam)

	st := f.sim.Update(0.016, []*blob.Blob{b})
	assert.Zero(t, st.Committed)
	assert.Equal(t, 1, st.Routed)
	assert.Equal(t, 1, st.Resolved)
	assert.False(t, b.Deleted)
	assert.Equal(t, blob.ModeTractorBeam, b.Mode, "still inside the beam")
	assert.Equal(t, beam.Handle(), b.Beam)
}

func TestUpdate_BeamExit(t *testing.T) {
	f := newFixture(nil)
	beam := f.scene.AddBeam(vmath.V3F(0, 0, 0), vmath.V3F(0, 0, 1000), 40, 200)
	b := f.spawn(1, vmath.V3F(5, 0, 1100), vmath.V3F(0, 0, 100))
	capture(b, beam)

	st := f.sim.Update(0.016, []*blob.Blob{b})
	assert.Equal(t, 1, st.Routed)
	assert.Equal(t, blob.ModeAir, b.Mode)
	assert.True(t, b.Beam.IsZero())
	assert.Empty(t, beam.Members())
}

func TestUpdate_StaleBeamFallsBackToAir(t *testing.T) {
	f := newFixture(nil)
	beam := f.scene.AddBeam(vmath.V3F(0, 0, 0), vmath.V3F(0, 0, 1000), 40, 200)
	b := f.spawn(1, vmath.V3F(5, 0, 500), vmath.Vec3F{})
	capture(b, beam)
	require.True(t, f.scene.Remove(beam.Handle()))

	st := f.sim.Update(0.016, []*blob.Blob{b})
	assert.Equal(t, 1, st.Air)
	assert.Zero(t, st.Beam)
	assert.True(t, b.Beam.IsZero())
}

func TestUpdate_FloorImpactStreaks(t *testing.T) {
	f := newFixture(func(t *config.Tunables) {
		t.GravityScale = 0
		t.AirDrag = 0
	})
	f.scene.AddStatic(vmath.Box{Min: vmath.V3F(-1000, -1000, -10), Max: vmath.V3F(1000, 1000, 0)})
	// Power-of-two step keeps the impact point exactly on the floor
	b := f.spawn(1, vmath.V3F(0, 0, 2), vmath.V3F(320, 0, -64))

	f.sim.Update(0.0625, []*blob.Blob{b})
	require.False(t, b.Deleted)
	assert.Equal(t, blob.ModeStreak, b.Mode)
	assert.Equal(t, vmath.V3F(0, 0, -1), b.StreakDir)
	assert.Zero(t, b.Vel.Z)
	assert.Equal(t, f.tun.StreakRadius, b.Pos.Z)
	assert.NotEmpty(t, f.scene.Splats())
	assert.Equal(t, 1, countSounds(f.rec, event.SoundImpact))

	st := f.sim.Update(0.125, []*blob.Blob{b})
	assert.Equal(t, 1, st.Streak)
	assert.False(t, b.Deleted)
	assert.Equal(t, f.tun.StreakRadius, b.Pos.Z)
	assert.Greater(t, b.Pos.X, 20.0)
}

func TestUpdate_TwoPortalCrossings(t *testing.T) {
	f := newFixture(func(t *config.Tunables) {
		t.GravityScale = 0
		t.AirDrag = 0
	})
	a := f.scene.AddPortal(vmath.V3F(0, 0, 50), vmath.V3F(1, 0, 0), vmath.V3FUp, 20, 20)
	b := f.scene.AddPortal(vmath.V3F(200, 0, 50), vmath.V3F(0, 1, 0), vmath.V3FUp, 20, 20)
	c := f.scene.AddPortal(vmath.V3F(200, 30, 50), vmath.V3F(0, -1, 0), vmath.V3FUp, 20, 20)
	d := f.scene.AddPortal(vmath.V3F(400, 0, 50), vmath.V3F(1, 0, 0), vmath.V3FUp, 20, 20)
	scene.Link(a, b)
	scene.Link(c, d)

	bl := f.spawn(1, vmath.V3F(10, 0, 50), vmath.V3F(-600, 0, 0))
	st := f.sim.Update(0.1, []*blob.Blob{bl})

	require.False(t, bl.Deleted)
	assert.Equal(t, 1, st.Teleported)
	assert.Equal(t, 2, bl.TeleportCount)
	require.Len(t, bl.TeleportHistory(), 2)
	assert.Less(t, bl.Teleports[0].Time, bl.Teleports[1].Time)
	assert.True(t, vmath.V3FNearlyEqual(vmath.V3F(600, 0, 0), bl.Vel, 1e-6), "got %+v", bl.Vel)
	assert.Greater(t, bl.Pos.X, 400.0)
	assert.Equal(t, int64(2), f.sim.Metrics().Counter(status.KeyTeleports).Load())
	assert.Equal(t, 2, countSounds(f.rec, event.SoundTeleport))
}

func TestUpdate_FloorStreaksSurviveRandomImpacts(t *testing.T) {
	f := newFixture(nil)
	f.scene.AddStatic(vmath.Box{Min: vmath.V3F(-1e5, -1e5, -10), Max: vmath.V3F(1e5, 1e5, 0)})

	rng := vmath.NewFastRand(99)
	blobs := make([]*blob.Blob, 200)
	for i := range blobs {
		heading := rng.Range(0, 2*math.Pi)
		speed := rng.Range(300, 600)
		pos := vmath.V3F(rng.Range(-1000, 1000), rng.Range(-1000, 1000), rng.Range(0.5, 3))
		vel := vmath.V3F(speed*math.Cos(heading), speed*math.Sin(heading), -rng.Range(60, 150))
		blobs[i] = f.spawn(blob.ID(i+1), pos, vel)
	}

	const dt = 1.0 / 60
	for i := 1; i <= 45; i++ {
		f.sim.Update(float64(i)*dt, blobs)
	}

	for _, b := range blobs {
		require.False(t, b.Deleted, "blob %d deleted with %.3fs of streak left", b.ID, b.StreakTime)
		assert.Equal(t, blob.ModeStreak, b.Mode)
		assert.Equal(t, vmath.V3F(0, 0, -1), b.StreakDir)
		assert.InDelta(t, f.tun.StreakRadius, b.Pos.Z, 1e-9)
		assert.Positive(t, b.StreakTime)
	}
}

func TestUpdate_SkippedBlobDropsTickSignals(t *testing.T) {
	f := newFixture(func(t *config.Tunables) {
		t.GravityScale = 0
		t.AirDrag = 0
	})
	a := f.scene.AddPortal(vmath.V3F(0, 0, 50), vmath.V3F(1, 0, 0), vmath.V3FUp, 20, 20)
	c := f.scene.AddPortal(vmath.V3F(200, 0, 50), vmath.V3F(0, 1, 0), vmath.V3FUp, 20, 20)
	scene.Link(a, c)

	b := f.spawn(1, vmath.V3F(10, 0, 50), vmath.V3F(-300, 0, 0))
	f.sim.Update(0.1, []*blob.Blob{b})
	require.True(t, b.Teleported)
	require.Len(t, b.TeleportHistory(), 1)

	st := f.sim.Update(0.1+f.tun.MinUpdateInterval/10, []*blob.Blob{b})
	require.Equal(t, 1, st.Skipped)
	assert.Zero(t, st.Teleported)
	assert.False(t, b.Teleported)
	assert.Empty(t, b.TeleportHistory())
	assert.False(t, b.InBeamThisTick)
	assert.Equal(t, 1, b.TeleportCount, "lifetime count is kept")
}

// runScene plays a mixed floor, beam and portal scene and returns the final blobs
func runScene(t *testing.T) ([]*blob.Blob, *fixture) {
	t.Helper()
	f := newFixture(nil)
	f.scene.AddStatic(vmath.Box{Min: vmath.V3F(-2000, -2000, -10), Max: vmath.V3F(2000, 2000, 0)})
	f.scene.AddBeam(vmath.V3F(300, 0, 0), vmath.V3F(300, 0, 400), 40, 200)
	a := f.scene.AddPortal(vmath.V3F(-300, 0, 100), vmath.V3F(1, 0, 0), vmath.V3FUp, 40, 40)
	c := f.scene.AddPortal(vmath.V3F(600, 0, 300), vmath.V3F(-1, 0, 0), vmath.V3FUp, 40, 40)
	scene.Link(a, c)

	rng := vmath.NewFastRand(7)
	blobs := make([]*blob.Blob, 50)
	for i := range blobs {
		pos := vmath.V3F(rng.Range(-200, 500), rng.Range(-50, 50), rng.Range(20, 300))
		vel := vmath.V3F(rng.Range(-300, 300), rng.Range(-100, 100), rng.Range(-200, 200))
		blobs[i] = f.spawn(blob.ID(i+1), pos, vel)
	}

	const dt = 1.0 / 60
	for i := 1; i <= 60; i++ {
		f.sim.Update(float64(i)*dt, blobs)
	}
	return blobs, f
}

func TestUpdate_Deterministic(t *testing.T) {
	first, fa := runScene(t)
	second, fb := runScene(t)

	assert.Equal(t, first, second)
	assert.Equal(t, fa.scene.Splats(), fb.scene.Splats())
	assert.Equal(t, fa.rec.Signals, fb.rec.Signals)
	assert.Equal(t, fa.sim.Metrics().Snapshot(), fb.sim.Metrics().Snapshot())
}

func countSounds(r *event.Recorder, kind event.SoundKind) int {
	n := 0
	for _, s := range r.Signals {
		if s.Type == event.SignalSound && s.Sound == kind {
			n++
		}
	}
	return n
}

func TestUpdate_OverflowLoggedAndCounted(t *testing.T) {
	f := newFixture(func(t *config.Tunables) { t.GravityScale = 0 })
	for i := 0; i < world.MaxRayEntities+4; i++ {
		f.scene.AddTrigger(vmath.BoxAround(vmath.V3F(float64(i), 0, 0), 0.25))
	}
	b := f.spawn(1, vmath.V3F(-1, 0, 0), vmath.V3F(1000, 0, 0))

	st := f.sim.Update(0.1, []*blob.Blob{b})
	assert.Equal(t, 1, st.Overflow.Entities)
	assert.Contains(t, f.log.String(), "capacity overflow")
	assert.Equal(t, int64(1), f.sim.Metrics().Counter(status.KeyEntityOverflow).Load())
	assert.False(t, b.Deleted, "overflow is never fatal")
}

func TestAddSection_Degenerate(t *testing.T) {
	f := newFixture(nil)
	var st Stats

	f.sim.addSection(world.Trace{Hit: true, Fraction: 0.2}, world.Trace{Hit: true, Fraction: 0.3}, &st)
	require.Len(t, f.sim.sections, 1)
	assert.InDelta(t, 0.7, f.sim.sections[0].hi, 1e-12)

	f.sim.addSection(world.Trace{Hit: true, Fraction: 0.6}, world.Trace{Hit: true, Fraction: 0.6}, &st)
	f.sim.addSection(world.Trace{Hit: true, Fraction: 0.1}, world.Trace{Fraction: 1}, &st)
	assert.Len(t, f.sim.sections, 1)
	assert.Equal(t, 2, st.DegenerateSections)
	assert.Equal(t, int64(2), f.sim.Metrics().Counter(status.KeyDegenerateSections).Load())
}

func TestPruneVisitHistory(t *testing.T) {
	f := newFixture(nil)
	beam := f.scene.AddBeam(vmath.V3F(0, 0, 0), vmath.V3F(0, 0, 1000), 40, 200)
	f.sim.VisitHistory().Visit(1, beam.Handle())
	f.sim.VisitHistory().Visit(2, beam.Handle())

	n := f.sim.PruneVisitHistory(func(id blob.ID) bool { return id == 2 })
	assert.Equal(t, 1, n)
	_, ok := f.sim.VisitHistory().MostRecent(1)
	assert.False(t, ok)
	_, ok = f.sim.VisitHistory().MostRecent(2)
	assert.True(t, ok)
}

func TestClock_Pause(t *testing.T) {
	src := NewManualTime(time.Unix(1000, 0))
	c := NewClock(src)

	src.Advance(2 * time.Second)
	assert.InDelta(t, 2.0, c.Seconds(), 1e-9)

	c.Pause()
	src.Advance(5 * time.Second)
	assert.True(t, c.IsPaused())
	assert.InDelta(t, 2.0, c.Seconds(), 1e-9)
	assert.Equal(t, 5*time.Second, c.TotalPaused())

	c.Resume()
	src.Advance(time.Second)
	assert.InDelta(t, 3.0, c.Seconds(), 1e-9)
	assert.False(t, c.IsPaused())
}
