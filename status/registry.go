package status

import (
	"math"
	"sync/atomic"
)

// Metric keys written by the blob simulation
const (
	KeyEntityOverflow     = "blob.entity_overflow"
	KeySegmentOverflow    = "blob.segment_overflow"
	KeyRecordOverflow     = "blob.record_overflow"
	KeyDeleted            = "blob.deleted"
	KeyTeleports          = "blob.teleports"
	KeyDegenerateSections = "beam.degenerate_sections"
	KeyBeamCommitted      = "beam.committed"
	KeyTicks              = "engine.ticks"
	KeyLastTickBlobs      = "engine.last_tick_blobs"
	KeyLastTickRouted     = "engine.last_tick_routed"
	KeySignalsDropped     = "event.signals_dropped"
)

// Gauge is an atomic float64 using bit conversion
// Zero value is ready to use (represents 0.0)
type Gauge struct {
	bits atomic.Uint64
}

func (g *Gauge) Set(val float64) {
	g.bits.Store(math.Float64bits(val))
}

func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Registry is the central metrics facade
// The simulation caches pointers at construction; the tick writes directly to atomics
type Registry struct {
	Counters *MetricMap[atomic.Int64]
	Gauges   *MetricMap[Gauge]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Int64](),
		Gauges:   NewMetricMap[Gauge](),
	}
}

// Counter returns the counter for key, creating it on first use
func (r *Registry) Counter(key string) *atomic.Int64 {
	return r.Counters.Get(key)
}

// Gauge returns the gauge for key, creating it on first use
func (r *Registry) Gauge(key string) *Gauge {
	return r.Gauges.Get(key)
}

// Snapshot copies every metric into a plain map, counters as float64
func (r *Registry) Snapshot() map[string]float64 {
	return r.SnapshotOf("")
}

// SnapshotOf copies the metrics of one subsystem, keyed by their full names
func (r *Registry) SnapshotOf(prefix string) map[string]float64 {
	out := make(map[string]float64)
	r.Counters.Range(prefix, func(key string, c *atomic.Int64) {
		out[key] = float64(c.Load())
	})
	r.Gauges.Range(prefix, func(key string, g *Gauge) {
		out[key] = g.Get()
	})
	return out
}
