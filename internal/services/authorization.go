package services

import (
	"context"
	"fmt"
	"time"

	"servicos/internal/aggregate"
	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/store"
)

// State is the authorization state of a record.
type State int

const (
	StatePending State = iota
	StateAuthorizedOverride
	StateAuthorizedPlain
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthorizedOverride:
		return "authorized-override"
	case StateAuthorizedPlain:
		return "authorized"
	default:
		return "unknown"
	}
}

func StateOf(r core.ServiceRecord) State {
	switch {
	case !r.IncludeInTotal:
		return StatePending
	case r.AdminOverride:
		return StateAuthorizedOverride
	default:
		return StateAuthorizedPlain
	}
}

// Authorizer applies the admin-only transitions. Authorize and revoke share
// one in-flight set, deletions use another.
type Authorizer struct {
	store    store.Store
	events   EventPublisher
	logger   *log.Logger
	sl       *log.StructuredLogger
	now      func() time.Time
	mutating *InFlight
	deleting *InFlight
}

func NewAuthorizer(s store.Store, events EventPublisher, logger *log.Logger) *Authorizer {
	l := orDiscard(logger).WithComponent(log.ComponentAuthorization)
	return &Authorizer{
		store:    s,
		events:   events,
		logger:   l,
		sl:       log.NewStructuredLogger(l),
		now:      time.Now,
		mutating: NewInFlight(),
		deleting: NewInFlight(),
	}
}

// WithClock replaces the clock used for the current-month guard and event timestamps.
func (a *Authorizer) WithClock(now func() time.Time) *Authorizer {
	a.now = now
	return a
}

func (a *Authorizer) Mutating() *InFlight { return a.mutating }
func (a *Authorizer) Deleting() *InFlight { return a.deleting }

// Authorize makes r count toward totals with the override marker set.
// Returns the record as patched.
func (a *Authorizer) Authorize(ctx context.Context, id core.Identity, r core.ServiceRecord) (core.ServiceRecord, error) {
	return a.transition(ctx, id, r, true, log.OpAuthorize, core.EventRecordAuthorized)
}

// Revoke returns r to pending and clears the override marker.
func (a *Authorizer) Revoke(ctx context.Context, id core.Identity, r core.ServiceRecord) (core.ServiceRecord, error) {
	return a.transition(ctx, id, r, false, log.OpRevoke, core.EventRecordRevoked)
}

func (a *Authorizer) transition(ctx context.Context, id core.Identity, r core.ServiceRecord,
	include bool, op string, evt core.EventType) (core.ServiceRecord, error) {
	if !id.IsAdmin() {
		return r, ErrNotAdmin
	}
	if !a.mutating.Begin(r.ID) {
		return r, ErrInFlight
	}
	defer a.mutating.Done(r.ID)

	patch := store.Patch{IncludeInTotal: store.Bool(include), AdminOverride: store.Bool(include)}
	if err := a.store.Update(ctx, r.ID, patch); err != nil {
		a.sl.LogError(ctx, "Transition failed", err, log.ComponentAuthorization, op,
			log.NewFields().WithRecord(r.ID, r.Title, string(r.ServiceType), r.Price.Cents))
		return r, &OperationError{Op: op, Err: fmt.Errorf("%s service %s: %w", op, r.ID, err)}
	}

	updated := patch.Apply(r)
	a.sl.LogRecordMutation(ctx, op, r.ID, r.Title, string(r.ServiceType), r.Price.Cents, log.ComponentAuthorization)
	publish(ctx, a.events, a.logger, a.now, evt, updated, id.User.ID)
	return updated, nil
}

// CanDelete reports whether r may be deleted now.
func (a *Authorizer) CanDelete(r core.ServiceRecord) bool {
	return aggregate.IsCurrentMonth(r.CreatedAt, a.now())
}

// Delete permanently removes r. Records outside the current calendar month
// are rejected before the store is called.
func (a *Authorizer) Delete(ctx context.Context, id core.Identity, r core.ServiceRecord) error {
	if !id.IsAdmin() {
		return ErrNotAdmin
	}
	if !a.CanDelete(r) {
		return ErrNotCurrentMonth
	}
	if !a.deleting.Begin(r.ID) {
		return ErrInFlight
	}
	defer a.deleting.Done(r.ID)

	if err := a.store.Delete(ctx, r.ID); err != nil {
		a.sl.LogError(ctx, "Delete failed", err, log.ComponentAuthorization, log.OpDelete,
			log.NewFields().WithRecord(r.ID, r.Title, string(r.ServiceType), r.Price.Cents))
		return &OperationError{Op: log.OpDelete, Err: fmt.Errorf("delete service %s: %w", r.ID, err)}
	}

	a.sl.LogRecordMutation(ctx, log.OpDelete, r.ID, r.Title, string(r.ServiceType), r.Price.Cents, log.ComponentAuthorization)
	publish(ctx, a.events, a.logger, a.now, core.EventRecordDeleted, r, id.User.ID)
	return nil
}
