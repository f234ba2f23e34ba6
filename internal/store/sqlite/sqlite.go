// Package sqlite stores service records in a local SQLite database using the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"servicos/internal/core"
	"servicos/internal/store"

	_ "modernc.org/sqlite"
)

// Fixed width keeps lexical order equal to chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) List(ctx context.Context, f store.Filter) ([]core.ServiceRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.IncludeInTotal != nil {
		where = append(where, "include_in_total = ?")
		args = append(args, boolToInt(*f.IncludeInTotal))
	}
	if f.Title != "" {
		where = append(where, "title = ?")
		args = append(args, f.Title)
	}

	q := `SELECT id, title, service_type, price_cents, user_id, username,
		created_at, include_in_total, admin_override FROM services`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []core.ServiceRecord
	for rows.Next() {
		var (
			r                  core.ServiceRecord
			typ, createdAt     string
			include, overrides int64
		)
		if err := rows.Scan(&r.ID, &r.Title, &typ, &r.Price.Cents, &r.UserID, &r.Username,
			&createdAt, &include, &overrides); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		r.ServiceType = core.ServiceType(typ)
		r.IncludeInTotal = include != 0
		r.AdminOverride = overrides != 0
		r.CreatedAt = parseTime(ctx, r.ID, createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, r core.ServiceRecord) (core.ServiceRecord, error) {
	if err := r.Validate(); err != nil {
		return core.ServiceRecord{}, err
	}
	r.ID = uuid.NewString()
	r.Title = core.NormalizeTitle(r.Title)
	r.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx, `INSERT INTO services
		(id, title, service_type, price_cents, user_id, username, created_at, include_in_total, admin_override)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, string(r.ServiceType), r.Price.Cents, r.UserID, r.Username,
		r.CreatedAt.Format(timeLayout), boolToInt(r.IncludeInTotal), boolToInt(r.AdminOverride))
	if err != nil {
		return core.ServiceRecord{}, fmt.Errorf("insert service: %w", err)
	}

	slog.InfoContext(ctx, "Service saved to SQLite",
		"id", r.ID,
		"title", r.Title,
		"price_cents", r.Price.Cents,
		"include_in_total", r.IncludeInTotal)
	return r, nil
}

func (s *Store) Update(ctx context.Context, id string, p store.Patch) error {
	var (
		sets []string
		args []any
	)
	if p.IncludeInTotal != nil {
		sets = append(sets, "include_in_total = ?")
		args = append(args, boolToInt(*p.IncludeInTotal))
	}
	if p.AdminOverride != nil {
		sets = append(sets, "admin_override = ?")
		args = append(args, boolToInt(*p.AdminOverride))
	}
	if len(sets) == 0 {
		return s.exists(ctx, id)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE services SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update service %s: %w", id, err)
	}
	return affected(res, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete service %s: %w", id, err)
	}
	if err := affected(res, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Service deleted from SQLite", "id", id)
	return nil
}

func (s *Store) exists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM services WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup service %s: %w", id, err)
	}
	return nil
}

func affected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// parseTime falls back to the zero time, which aggregation buckets under the
// epoch, so a malformed row never aborts a listing.
func parseTime(ctx context.Context, id, v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t
	}
	slog.WarnContext(ctx, "Unparseable created_at", "id", id, "value", v)
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
