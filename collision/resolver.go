package collision

import (
	"sync/atomic"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/status"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

// Overflow tallies capacity drops since the last TakeOverflow
type Overflow struct {
	Entities int
	Segments int
	Records  int
	// Blob is the last blob that overflowed
	Blob blob.ID
}

func (o Overflow) Any() bool {
	return o.Entities+o.Segments+o.Records > 0
}

// Resolver resolves blob displacements against a gateway
// All buffers are owned and reused; the returned slice is valid until the next Resolve
type Resolver struct {
	gw  world.Gateway
	tun *config.Tunables

	records [MaxRecords]Record
	n       int

	entities [world.MaxRayEntities]world.Entity
	trace    world.PortalTrace

	// per-segment shares of total travel
	share [world.MaxRaySegments]float64
	cum   [world.MaxRaySegments]float64

	crossed  [world.MaxRaySegments]crossing
	nCrossed int

	overflow Overflow

	entityOverflow  *atomic.Int64
	segmentOverflow *atomic.Int64
	recordOverflow  *atomic.Int64
}

// NewResolver creates a resolver reporting overflow into metrics
func NewResolver(gw world.Gateway, metrics *status.Registry) *Resolver {
	return &Resolver{
		gw:              gw,
		tun:             config.Default(),
		entityOverflow:  metrics.Counter(status.KeyEntityOverflow),
		segmentOverflow: metrics.Counter(status.KeySegmentOverflow),
		recordOverflow:  metrics.Counter(status.KeyRecordOverflow),
	}
}

// SetTunables selects the parameter set for subsequent calls, read once per tick
func (r *Resolver) SetTunables(tun *config.Tunables) {
	r.tun = tun
}

// TakeOverflow returns and clears the accumulated overflow tally
func (r *Resolver) TakeOverflow() Overflow {
	o := r.overflow
	r.overflow = Overflow{}
	return o
}

func (r *Resolver) push(b *blob.Blob, rec Record) bool {
	if r.n == MaxRecords {
		r.overflow.Records++
		r.overflow.Blob = b.ID
		r.recordOverflow.Add(1)
		return false
	}
	r.records[r.n] = rec
	r.n++
	return true
}

// nearest keeps the single closest blocker
type nearest struct {
	rec Record
	ok  bool
}

func (n *nearest) offer(rec Record) {
	if !n.ok || rec.Fraction < n.rec.Fraction {
		n.rec, n.ok = rec, true
	}
}

// Resolve returns the ordered interactions of b moving from->to within the frame dt ending at now
// Non-blocking markers come first, the nearest blocker last
func (r *Resolver) Resolve(b *blob.Blob, from, to vmath.Vec3F, now, dt float64) []Record {
	r.n = 0
	ray := world.Ray{Start: from, End: to}

	if _, ok := r.gw.FirstPortalAlongRay(ray); ok {
		r.resolveSegmented(b, ray, now, dt)
	} else {
		r.resolveDirect(b, ray, dt)
	}
	return r.records[:r.n]
}

// resolveDirect handles a straight ray that crosses no portal
func (r *Resolver) resolveDirect(b *blob.Blob, ray world.Ray, dt float64) {
	n, overflow := r.gw.EnumerateAlongRay(ray, world.Filter{}, r.entities[:])
	if overflow {
		r.overflow.Entities++
		r.overflow.Blob = b.ID
		r.entityOverflow.Add(1)
	}

	var best nearest
	for i := 0; i < n; i++ {
		e := r.entities[i]
		kind := Classify(e, b.Pos, dt, r.tun)
		switch {
		case kind == TractorBeamTrigger || kind == PropPortal:
			r.push(b, Record{Kind: kind, Entity: e.Handle(), Fraction: 1, Target: ray.End})
		case kind.Blocking():
			tr := r.gw.ClipRayToEntity(ray, e)
			if blocks(tr) {
				best.offer(Record{Kind: kind, Entity: tr.Entity, Normal: tr.Normal, Fraction: tr.Fraction, Target: tr.EndPos})
			}
		}
	}

	if tr, ok := r.staticWorld(b, ray); ok {
		best.offer(Record{Kind: World, Entity: tr.Entity, Normal: tr.Normal, Fraction: tr.Fraction, Target: tr.EndPos})
	}
	if best.ok {
		r.push(b, best.rec)
	}
}

// staticWorld traces static geometry unless the blob's cached box proves it empty
func (r *Resolver) staticWorld(b *blob.Blob, ray world.Ray) (world.Trace, bool) {
	c := &b.Box
	if !c.Covers(ray.Start, ray.End) {
		half := r.tun.CollisionBoxHalfSize
		if l := ray.Length(); l > half {
			half = l
		}
		c.Center = vmath.V3FLerp(ray.Start, ray.End, 0.5)
		c.HalfSize = half
		c.HasWorld = r.gw.BoxContainsWorld(vmath.BoxAround(c.Center, half))
		c.Valid = true
	}
	if !c.HasWorld {
		return world.Trace{}, false
	}
	tr := r.gw.TraceStaticWorld(ray)
	return tr, blocks(tr)
}

// blocks reports a trace that stopped on a surface; starting inside a volume gives no surface to land on
func blocks(tr world.Trace) bool {
	return tr.Hit && !tr.StartSolid
}

// resolveSegmented handles a ray split at one or more portal crossings
func (r *Resolver) resolveSegmented(b *blob.Blob, ray world.Ray, now, dt float64) {
	pt := &r.trace
	r.gw.TraceThroughPortals(ray, world.Filter{}, pt)
	if pt.SegmentOverflow {
		r.overflow.Segments++
		r.overflow.Blob = b.ID
		r.segmentOverflow.Add(1)
	}
	if pt.HitOverflow {
		r.overflow.Entities++
		r.overflow.Blob = b.ID
		r.entityOverflow.Add(1)
	}
	if pt.NumSegments == 0 {
		return
	}

	// Shares of total travel, then scaled into original-ray units
	total := 0.0
	for i := 0; i < pt.NumSegments; i++ {
		r.share[i] = vmath.V3FDist(pt.Segments[i].Start, pt.Segments[i].End)
		total += r.share[i]
	}
	invTotal := vmath.SafeInv(total)
	toOriginal := total * vmath.SafeInv(ray.Length())
	cum := 0.0
	for i := 0; i < pt.NumSegments; i++ {
		r.share[i] *= invTotal
		r.cum[i] = cum
		cum += r.share[i]
	}

	last := pt.NumSegments - 1
	target := pt.Segments[last].End

	r.collectCrossings()
	for _, c := range r.crossed[:r.nCrossed] {
		r.push(b, Record{
			Kind:     PortalCrossing,
			Entity:   c.portal.Handle(),
			Normal:   c.portal.Forward(),
			Fraction: (r.cum[c.segment] + r.share[c.segment]) * toOriginal,
			Target:   target,
		})
	}

	if r.nCrossed > 0 {
		b.Teleported = true
		if r.tun.ServerMode {
			r.recordTeleports(b, now-dt, dt)
		}
	}

	var best nearest
	terminator := pt.Segments[last].Trace.Entity
	patched := terminator.IsZero()
	for i := 0; i < pt.NumHits; i++ {
		h := &pt.Hits[i]
		if h.Segment == last && h.Entity.Handle() == terminator {
			patched = true
		}
		r.classifySegmentHit(b, h.Entity, h.Segment, last, target, toOriginal, dt, &best)
	}
	// Broad phase can miss the entity the trace actually stopped on
	if !patched {
		if e, ok := r.gw.Entity(terminator); ok {
			r.classifySegmentHit(b, e, last, last, target, toOriginal, dt, &best)
		}
	}

	if best.ok {
		r.push(b, best.rec)
	}
}

func (r *Resolver) classifySegmentHit(b *blob.Blob, e world.Entity, segment, last int, target vmath.Vec3F, toOriginal, dt float64, best *nearest) {
	kind := Classify(e, b.Pos, dt, r.tun)
	switch {
	case kind == TractorBeamTrigger || kind == PropPortal:
		// Markers on earlier segments were passed through
		if segment == last {
			r.push(b, Record{Kind: kind, Entity: e.Handle(), Fraction: toOriginal, Target: target})
		}
	case kind.Blocking():
		seg := &r.trace.Segments[segment]
		cum, share := r.cum[segment], r.share[segment]
		var tr world.Trace
		var frac float64
		if seg.Trace.Hit && seg.Trace.Entity == e.Handle() {
			if seg.Trace.StartSolid {
				return
			}
			// Terminator fraction is relative to the original ray remaining at the segment start
			tr = seg.Trace
			cumOriginal := cum * toOriginal
			frac = cumOriginal + tr.Fraction*(1-cumOriginal)
		} else {
			tr = r.gw.ClipRayToEntity(world.Ray{Start: seg.Start, End: seg.End}, e)
			if !blocks(tr) {
				return
			}
			frac = (cum + tr.Fraction*share) * toOriginal
		}
		best.offer(Record{Kind: kind, Entity: e.Handle(), Normal: tr.Normal, Fraction: frac, Target: tr.EndPos})
	}
}

// crossing is a segment that ends in a portal the blob actually passes through
type crossing struct {
	segment int
	portal  world.Portal
}

// collectCrossings keeps segments ending in an active linked portal, a repeat of the previous portal counts once
func (r *Resolver) collectCrossings() {
	pt := &r.trace
	r.nCrossed = 0
	var prev world.Handle
	for i := 0; i < pt.NumSegments-1; i++ {
		seg := &pt.Segments[i]
		if seg.Portal.IsZero() || seg.Portal == prev {
			continue
		}
		p, ok := r.gw.Portal(seg.Portal)
		if !ok || !world.ActiveAndLinked(p) {
			continue
		}
		prev = seg.Portal
		r.crossed[r.nCrossed] = crossing{segment: i, portal: p}
		r.nCrossed++
	}
}

// recordTeleports appends one history record per crossing, timed by cumulative travel
func (r *Resolver) recordTeleports(b *blob.Blob, prevUpdate, dt float64) {
	pt := &r.trace
	for _, c := range r.crossed[:r.nCrossed] {
		i := c.segment
		b.AddTeleport(blob.TeleportRecord{
			Entry:      c.portal.Handle(),
			Exit:       c.portal.Linked(),
			Transform:  c.portal.Transform(),
			Reverse:    c.portal.ReverseTransform(),
			EntryPoint: pt.Segments[i].End,
			ExitPoint:  pt.Segments[i+1].Start,
			Time:       prevUpdate + (r.cum[i]+r.share[i])*dt,
		})
	}
}
