// Package engine drives one blob simulation tick: partition, integrate, resolve, apply, stamp
package engine

import (
	"log/slog"
	"sync/atomic"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/collision"
	"github.com/lixenwraith/paintblob/config"
	"github.com/lixenwraith/paintblob/event"
	"github.com/lixenwraith/paintblob/motion"
	"github.com/lixenwraith/paintblob/status"
	"github.com/lixenwraith/paintblob/world"
)

// Options wires a Simulation to its collaborators
type Options struct {
	Gateway world.Gateway
	Painter world.Painter
	// Sink receives contact and sound requests, nil discards them
	Sink event.Sink
	// Store publishes tunables, nil uses defaults
	Store *config.Store
	// Logger defaults to slog.Default()
	Logger *slog.Logger
	// Metrics defaults to a private registry
	Metrics *status.Registry
	// HistoryCapacity bounds the beam visit history, 0 uses the default
	HistoryCapacity int
}

// Stats summarises one Update
type Stats struct {
	Skipped int // updated too recently
	Expired int // lifetime cap reached

	Beam   int
	Air    int
	Streak int

	Committed  int // beam-interior blobs committed without raycasting
	Routed     int
	Resolved   int
	Deleted    int
	Teleported int

	DegenerateSections int
	Overflow           collision.Overflow
}

// FirstPass is the number of blobs that took part in the tick
func (s Stats) FirstPass() int {
	return s.Beam + s.Air + s.Streak
}

// Simulation owns every per-tick buffer; one instance serves one world
// Not safe for concurrent use
type Simulation struct {
	gw       world.Gateway
	store    *config.Store
	log      *slog.Logger
	metrics  *status.Registry
	resolver *collision.Resolver
	machine  *motion.Machine
	history  *motion.VisitHistory

	first  []*blob.Blob
	beam   []*blob.Blob
	air    []*blob.Blob
	streak []*blob.Blob
	routed []*blob.Blob

	beams    []world.Handle
	members  []*blob.Blob
	sections []section
	entities [world.MaxRayEntities]world.Entity

	ticks      *atomic.Int64
	committed  *atomic.Int64
	degenerate *atomic.Int64
	lastBlobs  *status.Gauge
	lastRouted *status.Gauge
}

// New creates a simulation over opts.Gateway
func New(opts Options) *Simulation {
	if opts.Store == nil {
		opts.Store = config.NewStore(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = status.NewRegistry()
	}
	history := motion.NewVisitHistory(opts.HistoryCapacity)

	return &Simulation{
		gw:         opts.Gateway,
		store:      opts.Store,
		log:        opts.Logger.With("component", "blob_simulation"),
		metrics:    opts.Metrics,
		resolver:   collision.NewResolver(opts.Gateway, opts.Metrics),
		machine:    motion.NewMachine(opts.Gateway, opts.Painter, opts.Sink, history, opts.Metrics),
		history:    history,
		ticks:      opts.Metrics.Counter(status.KeyTicks),
		committed:  opts.Metrics.Counter(status.KeyBeamCommitted),
		degenerate: opts.Metrics.Counter(status.KeyDegenerateSections),
		lastBlobs:  opts.Metrics.Gauge(status.KeyLastTickBlobs),
		lastRouted: opts.Metrics.Gauge(status.KeyLastTickRouted),
	}
}

// Metrics returns the registry the simulation reports into
func (s *Simulation) Metrics() *status.Registry {
	return s.metrics
}

// Machine exposes the state machine, for spawners that need to delete or release blobs
func (s *Simulation) Machine() *motion.Machine {
	return s.machine
}

// VisitHistory returns the beam visit history shared by all blobs
func (s *Simulation) VisitHistory() *motion.VisitHistory {
	return s.history
}

// PruneVisitHistory forgets the beam visits of every blob alive reports false for
// Driven by the owner on its own schedule, never by Update
func (s *Simulation) PruneVisitHistory(alive func(id blob.ID) bool) int {
	n := s.history.Prune(alive)
	if n > 0 {
		s.log.Debug("visit history pruned", "dropped", n, "remaining", s.history.Len())
	}
	return n
}
