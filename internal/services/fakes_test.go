package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"servicos/internal/core"
	"servicos/internal/store"
	"servicos/internal/store/memory"
)

var errBoom = errors.New("connection reset by peer")

// countingStore wraps the memory store, counting calls and injecting failures.
type countingStore struct {
	*memory.Store

	mu        sync.Mutex
	lists     int
	inserts   int
	updates   int
	deletes   int
	failList  bool
	failWrite bool
	listDelay func(title string) time.Duration
}

func newCountingStore(now func() time.Time) *countingStore {
	return &countingStore{Store: memory.New(memory.WithClock(now))}
}

func (s *countingStore) calls() (lists, inserts, updates, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists, s.inserts, s.updates, s.deletes
}

func (s *countingStore) List(ctx context.Context, f store.Filter) ([]core.ServiceRecord, error) {
	s.mu.Lock()
	s.lists++
	fail, delay := s.failList, s.listDelay
	s.mu.Unlock()
	if delay != nil {
		time.Sleep(delay(f.Title))
	}
	if fail {
		return nil, errBoom
	}
	return s.Store.List(ctx, f)
}

func (s *countingStore) Insert(ctx context.Context, r core.ServiceRecord) (core.ServiceRecord, error) {
	s.mu.Lock()
	s.inserts++
	fail := s.failWrite
	s.mu.Unlock()
	if fail {
		return core.ServiceRecord{}, errBoom
	}
	return s.Store.Insert(ctx, r)
}

func (s *countingStore) Update(ctx context.Context, id string, p store.Patch) error {
	s.mu.Lock()
	s.updates++
	fail := s.failWrite
	s.mu.Unlock()
	if fail {
		return errBoom
	}
	return s.Store.Update(ctx, id, p)
}

func (s *countingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deletes++
	fail := s.failWrite
	s.mu.Unlock()
	if fail {
		return errBoom
	}
	return s.Store.Delete(ctx, id)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.RecordEvent
	err    error
}

func (p *recordingPublisher) PublishRecordEvent(_ context.Context, e core.RecordEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []core.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func member(id, name string) core.Identity {
	return core.SignedIn(core.User{ID: id, Username: name})
}

func admin(id, name string) core.Identity {
	return core.SignedIn(core.User{ID: id, Username: name, Role: core.RoleAdmin})
}
