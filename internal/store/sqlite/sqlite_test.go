package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"servicos/internal/store"
	"servicos/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "servicos.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreBehaviour(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servicos.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}

func TestMalformedCreatedAtFallsBackToZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `INSERT INTO services
		(id, title, service_type, price_cents, user_id, username, created_at)
		VALUES ('bad', 't', 'BARRA', 600, 'u', 'ana', 'not-a-date')`)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}
	list, err := s.List(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].CreatedAt.IsZero() {
		t.Fatalf("expected zero created_at, got %+v", list)
	}
	if !list[0].IncludeInTotal || list[0].AdminOverride {
		t.Fatalf("expected column defaults, got %+v", list[0])
	}
}

func TestUpdateWithEmptyPatch(t *testing.T) {
	s := newTestStore(t)
	if err := s.Update(context.Background(), "missing", store.Patch{}); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
