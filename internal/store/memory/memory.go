package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"servicos/internal/core"
	"servicos/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items []core.ServiceRecord
	now   func() time.Time
}

type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Seed loads records as they are, keeping their IDs and timestamps.
func (s *Store) Seed(records ...core.ServiceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, records...)
}

// List returns the matching records, newest first.
func (s *Store) List(_ context.Context, f store.Filter) ([]core.ServiceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ServiceRecord, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		if f.Matches(s.items[i]) {
			out = append(out, s.items[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Insert assigns the id and created_at and stores the record.
func (s *Store) Insert(_ context.Context, r core.ServiceRecord) (core.ServiceRecord, error) {
	if err := r.Validate(); err != nil {
		return core.ServiceRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.NewString()
	r.Title = core.NormalizeTitle(r.Title)
	r.CreatedAt = s.now()
	s.items = append(s.items, r)
	return r, nil
}

func (s *Store) Update(_ context.Context, id string, p store.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = p.Apply(s.items[i])
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
