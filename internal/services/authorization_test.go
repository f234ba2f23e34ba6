package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/store"
)

var storeAll = store.Filter{}

func seeded(t *testing.T, now time.Time, records ...core.ServiceRecord) (*countingStore, *Authorizer, *recordingPublisher) {
	t.Helper()
	s := newCountingStore(func() time.Time { return now })
	s.Seed(records...)
	events := &recordingPublisher{}
	a := NewAuthorizer(s, events, log.Discard()).WithClock(func() time.Time { return now })
	return s, a, events
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StatePending, StateOf(core.ServiceRecord{}))
	assert.Equal(t, StatePending, StateOf(core.ServiceRecord{AdminOverride: true}))
	assert.Equal(t, StateAuthorizedPlain, StateOf(core.ServiceRecord{IncludeInTotal: true}))
	assert.Equal(t, StateAuthorizedOverride, StateOf(core.ServiceRecord{IncludeInTotal: true, AdminOverride: true}))
}

func TestAuthorizeThenRevokeFromEveryState(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	starts := []core.ServiceRecord{
		{ID: "p", Title: "1", UserID: "u", CreatedAt: now},
		{ID: "o", Title: "2", UserID: "u", CreatedAt: now, IncludeInTotal: true, AdminOverride: true},
		{ID: "a", Title: "3", UserID: "u", CreatedAt: now, IncludeInTotal: true},
	}
	for _, start := range starts {
		t.Run(StateOf(start).String(), func(t *testing.T) {
			s, a, events := seeded(t, now, start)
			ctx := context.Background()
			boss := admin("boss", "chefe")

			authorized, err := a.Authorize(ctx, boss, start)
			require.NoError(t, err)
			assert.Equal(t, StateAuthorizedOverride, StateOf(authorized))

			again, err := a.Authorize(ctx, boss, authorized)
			require.NoError(t, err)
			assert.Equal(t, authorized, again)

			revoked, err := a.Revoke(ctx, boss, again)
			require.NoError(t, err)
			assert.False(t, revoked.IncludeInTotal)
			assert.False(t, revoked.AdminOverride)

			stored, err := s.List(ctx, storeAll)
			require.NoError(t, err)
			require.Len(t, stored, 1)
			assert.Equal(t, revoked, stored[0])

			assert.Equal(t, []core.EventType{core.EventRecordAuthorized, core.EventRecordAuthorized, core.EventRecordRevoked}, events.types())
			assert.Equal(t, "boss", events.events[0].ActorID)
		})
	}
}

func TestNonAdminTransitionsNeverReachStore(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	r := core.ServiceRecord{ID: "r1", Title: "1", UserID: "u", CreatedAt: now}
	s, a, _ := seeded(t, now, r)
	ctx := context.Background()

	for _, id := range []core.Identity{member("u", "ana"), core.SignedOut(), {Status: core.AuthLoading}} {
		_, err := a.Authorize(ctx, id, r)
		assert.ErrorIs(t, err, ErrNotAdmin)
		_, err = a.Revoke(ctx, id, r)
		assert.ErrorIs(t, err, ErrNotAdmin)
		assert.ErrorIs(t, a.Delete(ctx, id, r), ErrNotAdmin)
	}
	_, _, updates, deletes := s.calls()
	assert.Zero(t, updates)
	assert.Zero(t, deletes)
}

func TestDeleteIsMonthGated(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	old := core.ServiceRecord{ID: "old", Title: "1", UserID: "u", CreatedAt: time.Date(2026, 9, 30, 23, 0, 0, 0, time.Local)}
	unparsed := core.ServiceRecord{ID: "zero", Title: "2", UserID: "u"}
	fresh := core.ServiceRecord{ID: "new", Title: "3", UserID: "u", CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.Local)}
	s, a, events := seeded(t, now, old, unparsed, fresh)
	ctx := context.Background()
	boss := admin("boss", "chefe")

	assert.ErrorIs(t, a.Delete(ctx, boss, old), ErrNotCurrentMonth)
	assert.ErrorIs(t, a.Delete(ctx, boss, unparsed), ErrNotCurrentMonth)
	_, _, _, deletes := s.calls()
	assert.Zero(t, deletes)

	require.NoError(t, a.Delete(ctx, boss, fresh))
	remaining, err := s.List(ctx, storeAll)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
	assert.Equal(t, []core.EventType{core.EventRecordDeleted}, events.types())
}

func TestTransitionStoreFailureLeavesRecord(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	r := core.ServiceRecord{ID: "r1", Title: "1", UserID: "u", CreatedAt: now}
	s, a, events := seeded(t, now, r)
	s.failWrite = true
	ctx := context.Background()

	got, err := a.Authorize(ctx, admin("boss", "chefe"), r)
	require.Error(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, "Erro ao autorizar serviço", UserMessage(err))

	err = a.Delete(ctx, admin("boss", "chefe"), r)
	assert.Equal(t, "Erro ao excluir serviço", UserMessage(err))
	assert.Empty(t, events.types())
	assert.Empty(t, a.Mutating().IDs())
	assert.Empty(t, a.Deleting().IDs())
}

func TestUnknownRecord(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	_, a, _ := seeded(t, now)
	_, err := a.Authorize(context.Background(), admin("boss", "chefe"), core.ServiceRecord{ID: "ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, "Serviço não encontrado", UserMessage(err))
}

// blockingStore holds Update until released so the in-flight guard can be observed.
type blockingStore struct {
	*countingStore
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Update(ctx context.Context, id string, p store.Patch) error {
	b.entered <- struct{}{}
	<-b.release
	return b.countingStore.Update(ctx, id, p)
}

func TestInFlightIsPerRecord(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	r1 := core.ServiceRecord{ID: "r1", Title: "1", UserID: "u", CreatedAt: now}
	r2 := core.ServiceRecord{ID: "r2", Title: "2", UserID: "u", CreatedAt: now}
	cs := newCountingStore(func() time.Time { return now })
	cs.Seed(r1, r2)
	bs := &blockingStore{countingStore: cs, entered: make(chan struct{}, 2), release: make(chan struct{})}
	a := NewAuthorizer(bs, nil, log.Discard()).WithClock(func() time.Time { return now })
	ctx := context.Background()
	boss := admin("boss", "chefe")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := a.Authorize(ctx, boss, r1)
		assert.NoError(t, err)
	}()
	<-bs.entered

	assert.True(t, a.Mutating().Has("r1"))
	_, err := a.Revoke(ctx, boss, r1)
	assert.ErrorIs(t, err, ErrInFlight)

	// A different record and the delete set are not blocked.
	require.NoError(t, a.Delete(ctx, boss, r2))

	close(bs.release)
	wg.Wait()
	assert.False(t, a.Mutating().Has("r1"))
}
