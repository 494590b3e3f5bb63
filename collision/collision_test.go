package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/status"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
	"github.com/lixenwraith/paintblob/world/scene"
)

func unitBox(x, y, z float64) vmath.Box {
	return vmath.Box{Min: vmath.V3F(x-1, y-1, z-1), Max: vmath.V3F(x+1, y+1, z+1)}
}

func TestClassify(t *testing.T) {
	s := scene.New()
	tun := config.Default()
	world0, _ := s.Entity(s.World())
	player := s.AddPlayer(vmath.Box{Min: vmath.V3F(-1, -1, 0), Max: vmath.V3F(1, 1, 2)}, vmath.V3F(10, 0, 0))
	solid := s.AddSolid(unitBox(50, 0, 0))
	on := s.AddCleanser(unitBox(60, 0, 0), true)
	off := s.AddCleanser(unitBox(70, 0, 0), false)
	trigger := s.AddTrigger(unitBox(80, 0, 0))
	beam := s.AddBeam(vmath.Vec3F{}, vmath.V3F(0, 0, 100), 10, 100)
	portal := s.AddPortal(vmath.V3F(0, 100, 0), vmath.V3F(0, -1, 0), vmath.V3FUp, 10, 10)

	tests := []struct {
		name string
		e    world.Entity
		pos  vmath.Vec3F
		want Kind
	}{
		{"world", world0, vmath.Vec3F{}, World},
		{"player far", player, vmath.V3F(5, 0, 1), Player},
		{"player swept over spawn", player, vmath.V3F(1.5, 0, 1), None},
		{"solid", solid, vmath.Vec3F{}, Other},
		{"cleanser enabled", on, vmath.Vec3F{}, PaintCleanser},
		{"cleanser disabled", off, vmath.Vec3F{}, None},
		{"trigger", trigger, vmath.Vec3F{}, None},
		{"beam", beam, vmath.Vec3F{}, TractorBeamTrigger},
		{"portal", portal, vmath.Vec3F{}, PropPortal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.e, tt.pos, 0.1, tun))
		})
	}

	tun.PlayerPaintEnabled = false
	assert.Equal(t, None, Classify(player, vmath.V3F(5, 0, 1), 0.1, tun))
}

func newResolver(s *scene.Scene) (*Resolver, *status.Registry) {
	reg := status.NewRegistry()
	r := NewResolver(s, reg)
	r.SetTunables(config.Default())
	return r, reg
}

func blobAt(pos vmath.Vec3F) *blob.Blob {
	b := blob.New(7)
	b.Pos = pos
	return b
}

func floor(s *scene.Scene) {
	s.AddStatic(vmath.Box{Min: vmath.V3F(-1000, -1000, -10), Max: vmath.V3F(1000, 1000, 0)})
}

func TestResolve_FastPathFloor(t *testing.T) {
	s := scene.New()
	floor(s)
	r, _ := newResolver(s)

	from := vmath.V3F(0, 0, 10)
	b := blobAt(from)
	recs := r.Resolve(b, from, vmath.V3F(0, 0, -10), 1, 0.1)

	require.Len(t, recs, 1)
	assert.Equal(t, World, recs[0].Kind)
	assert.InDelta(t, 0.5, recs[0].Fraction, 1e-9)
	assert.Equal(t, vmath.V3F(0, 0, 1), recs[0].Normal)
	assert.True(t, vmath.V3FNearlyEqual(recs[0].Target, vmath.Vec3F{}, 1e-9))
	assert.True(t, b.Box.Valid)
	assert.True(t, b.Box.HasWorld)
}

func TestResolve_BoxCacheSkipsEmptyWorld(t *testing.T) {
	s := scene.New()
	floor(s)
	r, _ := newResolver(s)

	from := vmath.V3F(0, 0, 500)
	b := blobAt(from)
	recs := r.Resolve(b, from, vmath.V3F(5, 0, 500), 1, 0.1)
	assert.Empty(t, recs)
	assert.True(t, b.Box.Valid)
	assert.False(t, b.Box.HasWorld)
	assert.True(t, b.Box.Covers(from, vmath.V3F(5, 0, 500)))
}

func TestResolve_MarkersFirstNearestBlockerLast(t *testing.T) {
	s := scene.New()
	beam := s.AddBeam(vmath.V3F(20, -50, 0), vmath.V3F(20, 50, 0), 5, 100)
	near := s.AddSolid(unitBox(40, 0, 0))
	s.AddSolid(unitBox(60, 0, 0))
	r, _ := newResolver(s)

	from := vmath.V3F(0, 0, 0)
	to := vmath.V3F(100, 0, 0)
	recs := r.Resolve(blobAt(from), from, to, 1, 0.1)

	require.Len(t, recs, 2)
	assert.Equal(t, TractorBeamTrigger, recs[0].Kind)
	assert.Equal(t, beam.Handle(), recs[0].Entity)
	assert.Equal(t, to, recs[0].Target)

	assert.Equal(t, Other, recs[1].Kind)
	assert.Equal(t, near.Handle(), recs[1].Entity)
	assert.InDelta(t, 0.39, recs[1].Fraction, 1e-9)
	assert.Equal(t, vmath.V3F(-1, 0, 0), recs[1].Normal)
}

func TestResolve_CleanserNearerThanWall(t *testing.T) {
	s := scene.New()
	cl := s.AddCleanser(unitBox(20, 0, 0), true)
	s.AddSolid(unitBox(40, 0, 0))
	r, _ := newResolver(s)

	recs := r.Resolve(blobAt(vmath.Vec3F{}), vmath.Vec3F{}, vmath.V3F(100, 0, 0), 1, 0.1)
	require.Len(t, recs, 1)
	assert.Equal(t, PaintCleanser, recs[0].Kind)
	assert.Equal(t, cl.Handle(), recs[0].Entity)
}

func TestResolve_EntityOverflowCounted(t *testing.T) {
	s := scene.New()
	for i := 0; i < world.MaxRayEntities+4; i++ {
		s.AddTrigger(unitBox(float64(i*5), 0, 0))
	}
	r, reg := newResolver(s)

	b := blobAt(vmath.V3F(-10, 0, 0))
	recs := r.Resolve(b, b.Pos, vmath.V3F(1000, 0, 0), 1, 0.1)
	assert.Empty(t, recs, "triggers never interact")

	o := r.TakeOverflow()
	assert.Equal(t, 1, o.Entities)
	assert.Equal(t, b.ID, o.Blob)
	assert.Equal(t, int64(1), reg.Counter(status.KeyEntityOverflow).Load())
	assert.False(t, r.TakeOverflow().Any(), "tally cleared")
}

// portalPair places A facing +x at the origin and B facing +y at x=200
func portalPair(s *scene.Scene) (*scene.Portal, *scene.Portal) {
	a := s.AddPortal(vmath.V3F(0, 0, 50), vmath.V3F(1, 0, 0), vmath.V3FUp, 20, 20)
	b := s.AddPortal(vmath.V3F(200, 0, 50), vmath.V3F(0, 1, 0), vmath.V3FUp, 20, 20)
	scene.Link(a, b)
	return a, b
}

func countKind(recs []Record, k Kind) int {
	n := 0
	for _, r := range recs {
		if r.Kind == k {
			n++
		}
	}
	return n
}

func TestResolve_OneCrossing(t *testing.T) {
	s := scene.New()
	a, exit := portalPair(s)
	r, _ := newResolver(s)

	from := vmath.V3F(10, 0, 50)
	b := blobAt(from)
	recs := r.Resolve(b, from, vmath.V3F(-10, 0, 50), 2, 0.1)

	require.NotEmpty(t, recs)
	assert.Equal(t, PortalCrossing, recs[0].Kind)
	assert.Equal(t, a.Handle(), recs[0].Entity)
	assert.InDelta(t, 0.5, recs[0].Fraction, 1e-6)
	assert.InDelta(t, 200.0, recs[0].Target.X, 1e-9)
	assert.InDelta(t, 10.01, recs[0].Target.Y, 1e-9)

	assert.Equal(t, 1, countKind(recs, PortalCrossing))
	assert.Equal(t, 1, countKind(recs, PropPortal), "exit portal on the final segment")
	for _, rec := range recs {
		if rec.Kind == PropPortal {
			assert.Equal(t, exit.Handle(), rec.Entity)
		}
	}

	assert.True(t, b.Teleported)
	require.Equal(t, 1, b.NumTeleports)
	tr := b.Teleports[0]
	assert.Equal(t, a.Handle(), tr.Entry)
	assert.Equal(t, exit.Handle(), tr.Exit)
	assert.InDelta(t, 1.9+0.5*0.1, tr.Time, 1e-6)
}

func TestResolve_ClientModeSkipsHistory(t *testing.T) {
	s := scene.New()
	portalPair(s)
	r, _ := newResolver(s)
	tun := config.Default()
	tun.ServerMode = false
	r.SetTunables(tun)

	from := vmath.V3F(10, 0, 50)
	b := blobAt(from)
	r.Resolve(b, from, vmath.V3F(-10, 0, 50), 2, 0.1)
	assert.True(t, b.Teleported)
	assert.Zero(t, b.NumTeleports)
}

func TestResolve_TwoCrossings(t *testing.T) {
	s := scene.New()
	a, _ := portalPair(s)
	c := s.AddPortal(vmath.V3F(200, 30, 50), vmath.V3F(0, -1, 0), vmath.V3FUp, 20, 20)
	d := s.AddPortal(vmath.V3F(400, 0, 50), vmath.V3F(1, 0, 0), vmath.V3FUp, 20, 20)
	scene.Link(c, d)
	r, _ := newResolver(s)

	from := vmath.V3F(10, 0, 50)
	b := blobAt(from)
	recs := r.Resolve(b, from, vmath.V3F(-50, 0, 50), 2, 0.1)

	require.GreaterOrEqual(t, len(recs), 2)
	assert.Equal(t, PortalCrossing, recs[0].Kind)
	assert.Equal(t, a.Handle(), recs[0].Entity)
	assert.Equal(t, PortalCrossing, recs[1].Kind)
	assert.Equal(t, c.Handle(), recs[1].Entity)
	assert.Less(t, recs[0].Fraction, recs[1].Fraction)
	assert.InDelta(t, 420.02, recs[1].Target.X, 1e-6)

	require.Equal(t, 2, b.NumTeleports)
	assert.Less(t, b.Teleports[0].Time, b.Teleports[1].Time)
	assert.Equal(t, d.Handle(), b.Teleports[1].Exit)
}

// dormantPortal reports a portal inactive while the scene still decomposes rays through it
type dormantPortal struct{ world.Portal }

func (dormantPortal) Active() bool { return false }

type dormantGateway struct {
	*scene.Scene
	dormant world.Handle
}

func (g dormantGateway) Portal(h world.Handle) (world.Portal, bool) {
	p, ok := g.Scene.Portal(h)
	if ok && h == g.dormant {
		return dormantPortal{p}, true
	}
	return p, ok
}

func TestResolve_InactivePortalIsNoCrossing(t *testing.T) {
	s := scene.New()
	a, _ := portalPair(s)
	r := NewResolver(dormantGateway{Scene: s, dormant: a.Handle()}, status.NewRegistry())
	r.SetTunables(config.Default())

	from := vmath.V3F(10, 0, 50)
	b := blobAt(from)
	recs := r.Resolve(b, from, vmath.V3F(-10, 0, 50), 2, 0.1)

	assert.Zero(t, countKind(recs, PortalCrossing))
	assert.False(t, b.Teleported)
	assert.Zero(t, b.NumTeleports, "history agrees with the crossings emitted")
}

func TestResolve_StartInsideIsNotABlocker(t *testing.T) {
	s := scene.New()
	floor(s)
	s.AddSolid(unitBox(100, 0, 50))
	r, _ := newResolver(s)

	// A few ulps under the floor top, sliding along it
	from := vmath.V3F(0, 0, -2.220446049250313e-16)
	b := blobAt(from)
	assert.Empty(t, r.Resolve(b, from, vmath.V3F(5, 0, from.Z), 2, 0.1))

	from = vmath.V3F(100, 0, 50)
	b = blobAt(from)
	assert.Empty(t, r.Resolve(b, from, vmath.V3F(105, 0, 50), 2, 0.1))
}

func TestResolve_PatchesStaticTerminator(t *testing.T) {
	s := scene.New()
	portalPair(s)
	s.AddStatic(vmath.Box{Min: vmath.V3F(100, 5, 0), Max: vmath.V3F(300, 10, 100)})
	r, _ := newResolver(s)

	from := vmath.V3F(10, 0, 50)
	recs := r.Resolve(blobAt(from), from, vmath.V3F(-10, 0, 50), 2, 0.1)

	require.NotEmpty(t, recs)
	last := recs[len(recs)-1]
	assert.Equal(t, World, last.Kind)
	assert.Equal(t, s.World(), last.Entity)
	assert.Equal(t, vmath.V3F(0, -1, 0), last.Normal)
	assert.InDelta(t, 5.0, last.Target.Y, 1e-9)
	assert.InDelta(t, 0.7495, last.Fraction, 1e-6)
}
