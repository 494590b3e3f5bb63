package motion

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/parameter"
	"github.com/lixenwraith/paintblob/world"
)

// BeamHistory remembers which beams a blob visited recently
type BeamHistory interface {
	// MostRecent returns the last beam the blob entered
	MostRecent(id blob.ID) (world.Handle, bool)
	// Visit records id entering beam
	Visit(id blob.ID, beam world.Handle)
}

// visits is a most-recent-first list of beam handles
type visits struct {
	beams [parameter.BeamHistorySize]world.Handle
	n     int
}

func (v *visits) push(h world.Handle) {
	i := 0
	for ; i < v.n; i++ {
		if v.beams[i] == h {
			break
		}
	}
	if i == v.n {
		if v.n < len(v.beams) {
			v.n++
		}
		i = v.n - 1
	}
	copy(v.beams[1:i+1], v.beams[:i])
	v.beams[0] = h
}

// VisitHistory is a bounded LRU of per-blob beam visits keyed by blob id
// Entries for despawned blobs linger until Prune or LRU eviction
type VisitHistory struct {
	cache *lru.Cache[blob.ID, *visits]
}

// NewVisitHistory tracks up to capacity blobs, non-positive capacity uses the default
func NewVisitHistory(capacity int) *VisitHistory {
	if capacity <= 0 {
		capacity = parameter.VisitHistoryCapacity
	}
	cache, err := lru.New[blob.ID, *visits](capacity)
	if err != nil {
		// Only a non-positive size fails
		panic(err)
	}
	return &VisitHistory{cache: cache}
}

func (h *VisitHistory) MostRecent(id blob.ID) (world.Handle, bool) {
	v, ok := h.cache.Get(id)
	if !ok || v.n == 0 {
		return world.Handle{}, false
	}
	return v.beams[0], true
}

func (h *VisitHistory) Visit(id blob.ID, beam world.Handle) {
	v, ok := h.cache.Get(id)
	if !ok {
		v = &visits{}
		h.cache.Add(id, v)
	}
	v.push(beam)
}

// Recent returns a copy of the blob's visits, most recent first
func (h *VisitHistory) Recent(id blob.ID) []world.Handle {
	v, ok := h.cache.Peek(id)
	if !ok {
		return nil
	}
	out := make([]world.Handle, v.n)
	copy(out, v.beams[:v.n])
	return out
}

// Prune drops the history of every blob alive reports false for, returns the number dropped
func (h *VisitHistory) Prune(alive func(id blob.ID) bool) int {
	dropped := 0
	for _, id := range h.cache.Keys() {
		if !alive(id) {
			h.cache.Remove(id)
			dropped++
		}
	}
	return dropped
}

func (h *VisitHistory) Len() int {
	return h.cache.Len()
}
