// Package postgres stores service records in a PostgreSQL services table,
// the layout used by hosted relational backends.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"servicos/internal/core"
	"servicos/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects, pings and migrates. The returned store owns the pool.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := RunMigrations(pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewStore(pool), nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const selectColumns = `SELECT id::text, title, COALESCE(service_type, ''), price::text, user_id,
	COALESCE(username, ''), created_at, include_in_total, admin_override FROM services`

func (s *Store) List(ctx context.Context, f store.Filter) ([]core.ServiceRecord, error) {
	q, args := listQuery(f)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []core.ServiceRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return out, nil
}

func listQuery(f store.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.IncludeInTotal != nil {
		add("include_in_total = $%d", *f.IncludeInTotal)
	}
	if f.Title != "" {
		add("title = $%d", f.Title)
	}
	q := selectColumns
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + " ORDER BY created_at DESC", args
}

func (s *Store) Insert(ctx context.Context, r core.ServiceRecord) (core.ServiceRecord, error) {
	if err := r.Validate(); err != nil {
		return core.ServiceRecord{}, err
	}
	r.Title = core.NormalizeTitle(r.Title)
	row := s.pool.QueryRow(ctx, `
		INSERT INTO services (title, service_type, price, user_id, username, include_in_total, admin_override)
		VALUES ($1, NULLIF($2, ''), $3::numeric, $4, $5, $6, $7)
		RETURNING id::text, created_at
	`, r.Title, string(r.ServiceType), r.Price.Decimal().StringFixed(2), r.UserID, r.Username,
		r.IncludeInTotal, r.AdminOverride)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		return core.ServiceRecord{}, fmt.Errorf("insert service: %w", err)
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, id string, p store.Patch) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE services
		SET include_in_total = COALESCE($2, include_in_total),
		    admin_override = COALESCE($3, admin_override)
		WHERE id::text = $1
	`, id, p.IncludeInTotal, p.AdminOverride)
	if err != nil {
		return fmt.Errorf("update service %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM services WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (core.ServiceRecord, error) {
	var (
		r          core.ServiceRecord
		typ, price string
	)
	if err := row.Scan(&r.ID, &r.Title, &typ, &price, &r.UserID, &r.Username,
		&r.CreatedAt, &r.IncludeInTotal, &r.AdminOverride); err != nil {
		return r, fmt.Errorf("scan service: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return r, fmt.Errorf("parse price %q: %w", price, err)
	}
	r.ServiceType = core.ServiceType(typ)
	r.Price = core.MoneyFromDecimal(d)
	return r, nil
}
