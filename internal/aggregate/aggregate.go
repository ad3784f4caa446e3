package aggregate

import (
	"sort"

	"github.com/admpjgj/yxip/internal/model"
)

// Set deduplicates endpoints by (address, port) identity. The scheduler
// merges per-source results into it single-threaded after the parallel
// phase joins, so no internal locking is needed.
type Set struct {
	seen map[model.Key]model.Endpoint
}

func New() *Set {
	return &Set{seen: make(map[model.Key]model.Endpoint)}
}

// Add inserts one endpoint, reporting whether it was new. The first
// source to contribute an endpoint keeps the attribution.
func (s *Set) Add(e model.Endpoint) bool {
	k := e.Key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = e
	return true
}

func (s *Set) AddAll(eps []model.Endpoint) {
	for _, e := range eps {
		s.Add(e)
	}
}

func (s *Set) Len() int {
	return len(s.seen)
}

// Endpoints returns the deduplicated set in canonical order: ascending
// numeric octets, port-absent before port-bearing records per address.
// The order is reproducible regardless of insertion order.
func (s *Set) Endpoints() []model.Endpoint {
	out := make([]model.Endpoint, 0, len(s.seen))
	for _, e := range s.seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
