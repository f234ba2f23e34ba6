// Package store defines the record store port consumed by the services and
// dashboard packages. Adapters live in the memory, sqlite and postgres
// subpackages.
package store

import (
	"context"

	"servicos/internal/core"
)

// Filter narrows a List call. Zero fields do not filter.
type Filter struct {
	UserID         string
	IncludeInTotal *bool
	Title          string
}

// Patch carries the only mutable fields of a record. Nil fields are left as they are.
type Patch struct {
	IncludeInTotal *bool
	AdminOverride  *bool
}

// Store is the record store client. List results are ordered by created_at
// descending. Update and Delete return ErrNotFound for an unknown id.
type Store interface {
	List(ctx context.Context, f Filter) ([]core.ServiceRecord, error)
	Insert(ctx context.Context, r core.ServiceRecord) (core.ServiceRecord, error)
	Update(ctx context.Context, id string, p Patch) error
	Delete(ctx context.Context, id string) error
}

func Bool(b bool) *bool { return &b }

// Matches reports whether r satisfies f. Adapters without a query language use it.
func (f Filter) Matches(r core.ServiceRecord) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.IncludeInTotal != nil && r.IncludeInTotal != *f.IncludeInTotal {
		return false
	}
	if f.Title != "" && r.Title != f.Title {
		return false
	}
	return true
}

// Apply returns r with the patch fields set.
func (p Patch) Apply(r core.ServiceRecord) core.ServiceRecord {
	if p.IncludeInTotal != nil {
		r.IncludeInTotal = *p.IncludeInTotal
	}
	if p.AdminOverride != nil {
		r.AdminOverride = *p.AdminOverride
	}
	return r
}
