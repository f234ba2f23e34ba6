package services

import (
	"sort"
	"sync"
)

// InFlight is a set of record ids with a pending mutation. It only prevents
// a second mutation of the same kind on the same record; other records are
// never blocked.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{ids: map[string]struct{}{}}
}

// Begin marks id as in flight. It returns false when id already is.
func (f *InFlight) Begin(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ids[id]; ok {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

func (f *InFlight) Done(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}

func (f *InFlight) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[id]
	return ok
}

// IDs returns the in-flight ids in sorted order.
func (f *InFlight) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
