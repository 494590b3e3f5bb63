package event

import (
	"sync/atomic"

	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

const (
	// QueueSize is the fixed capacity of the signal ring
	QueueSize = 1024
	queueMask = QueueSize - 1
)

// Queue carries signals from the simulation tick to presentation (audio, effects)
// Producers claim a slot by CAS on tail and mark it ready once written; the single
// consumer stops at the first slot not yet ready. A full ring overwrites its oldest
// signal and counts it in Dropped
type Queue struct {
	slots   [QueueSize]slot
	head    atomic.Uint64
	tail    atomic.Uint64
	dropped atomic.Uint64
}

type slot struct {
	sig   Signal
	ready atomic.Bool
}

var _ Sink = (*Queue)(nil)

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(s Signal) {
	pos := q.claim()
	sl := &q.slots[pos&queueMask]
	sl.sig = s
	sl.ready.Store(true)
	q.evict(pos + 1)
}

func (q *Queue) claim() uint64 {
	for {
		t := q.tail.Load()
		if q.tail.CompareAndSwap(t, t+1) {
			return t
		}
	}
}

// evict moves head past the signals a write ending at end has lapped
func (q *Queue) evict(end uint64) {
	h := q.head.Load()
	if h >= end || end-h <= QueueSize {
		return
	}
	floor := end - QueueSize
	if q.head.CompareAndSwap(h, floor) {
		q.dropped.Add(floor - h)
	}
}

// Consume appends ready signals to dst in FIFO order and releases their slots
func (q *Queue) Consume(dst []Signal) []Signal {
	from, to := q.head.Load(), q.tail.Load()
	if to-from > QueueSize {
		from = to - QueueSize
	}

	next := from
	for ; next < to; next++ {
		sl := &q.slots[next&queueMask]
		if !sl.ready.Load() {
			break
		}
		dst = append(dst, sl.sig)
		sl.ready.Store(false)
	}

	// A producer may have evicted past us meanwhile; head never moves back
	for {
		h := q.head.Load()
		if h >= next || q.head.CompareAndSwap(h, next) {
			return dst
		}
	}
}

// Len returns the approximate pending count
func (q *Queue) Len() int {
	h, t := q.head.Load(), q.tail.Load()
	switch {
	case t <= h:
		return 0
	case t-h > QueueSize:
		return QueueSize
	}
	return int(t - h)
}

// Dropped returns how many signals were overwritten before being consumed
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

func (q *Queue) ContactEffect(id world.BlobID, pos, normal vmath.Vec3F, power world.PaintPower) {
	q.Push(Signal{Type: SignalContact, Blob: id, Pos: pos, Normal: normal, Power: power})
}

func (q *Queue) PlaySound(id world.BlobID, kind SoundKind, pos vmath.Vec3F) {
	q.Push(Signal{Type: SignalSound, Blob: id, Pos: pos, Sound: kind})
}
