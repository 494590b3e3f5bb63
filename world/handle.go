package world

import "fmt"

// Handle is a generation-checked weak reference into a Registry
// The zero Handle is never valid
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero (absent) handle
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// Index returns the slot index, stable for the lifetime of the referenced value
func (h Handle) Index() uint32 {
	return h.index
}

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d#%d)", h.index, h.gen)
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// Registry stores values addressed by Handle
// Removing a value bumps its slot generation so stale handles fail lookup
type Registry[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// NewRegistry creates a registry with room for capacity values before growing
func NewRegistry[T any](capacity int) *Registry[T] {
	return &Registry[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Insert stores v and returns its handle
func (r *Registry[T]) Insert(v T) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot[T]{})
	}
	s := &r.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	s.value = v
	r.count++
	return Handle{index: idx, gen: s.gen}
}

// Remove invalidates h, returns false if h was already stale
func (r *Registry[T]) Remove(h Handle) bool {
	s := r.lookup(h)
	if s == nil {
		return false
	}
	var zero T
	s.value = zero
	s.live = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	r.free = append(r.free, h.index)
	r.count--
	return true
}

// Get returns the value for h if it is still live
func (r *Registry[T]) Get(h Handle) (T, bool) {
	if s := r.lookup(h); s != nil {
		return s.value, true
	}
	var zero T
	return zero, false
}

// Valid reports whether h still refers to a live value
func (r *Registry[T]) Valid(h Handle) bool {
	return r.lookup(h) != nil
}

// Len returns the number of live values
func (r *Registry[T]) Len() int {
	return r.count
}

// Range visits live values in slot order, stops when fn returns false
func (r *Registry[T]) Range(fn func(h Handle, v T) bool) {
	for i := range r.slots {
		s := &r.slots[i]
		if !s.live {
			continue
		}
		if !fn(Handle{index: uint32(i), gen: s.gen}, s.value) {
			return
		}
	}
}

func (r *Registry[T]) lookup(h Handle) *slot[T] {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil
	}
	return s
}
