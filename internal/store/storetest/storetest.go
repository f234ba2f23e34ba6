// Package storetest holds behaviour checks shared by every store adapter.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicos/internal/core"
	"servicos/internal/store"
)

func record(title string, typ core.ServiceType, cents int64, user string) core.ServiceRecord {
	return core.ServiceRecord{
		Title:          title,
		ServiceType:    typ,
		Price:          core.Money{Cents: cents},
		UserID:         "id-" + user,
		Username:       user,
		IncludeInTotal: true,
	}
}

// Run exercises insert, filtered list, patch and delete against s.
// newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("InsertAssignsIDAndTimestamp", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		before := time.Now().Add(-time.Minute)

		got, err := s.Insert(ctx, record("  100 ", "MONTAGEM", 500, "ana"))
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "100", got.Title)
		assert.True(t, got.CreatedAt.After(before), "created_at %v", got.CreatedAt)

		list, err := s.List(ctx, store.Filter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, got.ID, list[0].ID)
		assert.Equal(t, core.Money{Cents: 500}, list[0].Price)
		assert.Equal(t, core.ServiceType("MONTAGEM"), list[0].ServiceType)
		assert.Equal(t, "ana", list[0].Username)
		assert.True(t, list[0].IncludeInTotal)
		assert.False(t, list[0].AdminOverride)
	})

	t.Run("InsertRejectsInvalid", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Insert(context.Background(), record("   ", "MONTAGEM", 500, "ana"))
		assert.ErrorIs(t, err, core.ErrEmptyTitle)
	})

	t.Run("ListFilters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.Insert(ctx, record("100", "MONTAGEM", 500, "ana"))
		require.NoError(t, err)
		pending := record("100", "PREPARO", 200, "bia")
		pending.IncludeInTotal = false
		_, err = s.Insert(ctx, pending)
		require.NoError(t, err)
		_, err = s.Insert(ctx, record("200", "MONTAGEM", 500, "ana"))
		require.NoError(t, err)

		own, err := s.List(ctx, store.Filter{UserID: "id-ana"})
		require.NoError(t, err)
		assert.Len(t, own, 2)

		waiting, err := s.List(ctx, store.Filter{IncludeInTotal: store.Bool(false)})
		require.NoError(t, err)
		require.Len(t, waiting, 1)
		assert.Equal(t, "bia", waiting[0].Username)

		dups, err := s.List(ctx, store.Filter{Title: "100"})
		require.NoError(t, err)
		assert.Len(t, dups, 2)

		none, err := s.List(ctx, store.Filter{Title: "10"})
		require.NoError(t, err)
		assert.Empty(t, none)

		all, err := s.List(ctx, store.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "not newest first at %d", i)
		}
	})

	t.Run("UpdatePatchesFlags", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		r := record("100", "BARRA", 600, "ana")
		r.IncludeInTotal = false
		created, err := s.Insert(ctx, r)
		require.NoError(t, err)

		require.NoError(t, s.Update(ctx, created.ID, store.Patch{
			IncludeInTotal: store.Bool(true),
			AdminOverride:  store.Bool(true),
		}))
		list, err := s.List(ctx, store.Filter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, list[0].IncludeInTotal)
		assert.True(t, list[0].AdminOverride)
		assert.Equal(t, core.Money{Cents: 600}, list[0].Price)

		require.NoError(t, s.Update(ctx, created.ID, store.Patch{AdminOverride: store.Bool(false)}))
		list, err = s.List(ctx, store.Filter{})
		require.NoError(t, err)
		assert.True(t, list[0].IncludeInTotal)
		assert.False(t, list[0].AdminOverride)
	})

	t.Run("UnknownID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		err := s.Update(ctx, "00000000-0000-0000-0000-000000000000", store.Patch{IncludeInTotal: store.Bool(true)})
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "00000000-0000-0000-0000-000000000000"), store.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		a, err := s.Insert(ctx, record("100", "MONTAGEM", 500, "ana"))
		require.NoError(t, err)
		b, err := s.Insert(ctx, record("200", "MONTAGEM", 500, "ana"))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, a.ID))
		list, err := s.List(ctx, store.Filter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, b.ID, list[0].ID)
	})
}
