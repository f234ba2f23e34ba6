// Package dashboard holds the per-tab view controllers. A controller owns the
// record collection it fetched, its loading and error state, and patches the
// collection in place after each successful mutation instead of re-fetching.
//
// Controllers are safe for concurrent use. Results that arrive after Close
// are discarded.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/services"
	"servicos/internal/store"
)

// Deps are the collaborators shared by every controller.
type Deps struct {
	Store      store.Store
	Creator    *services.Creator
	Authorizer *services.Authorizer
	Catalog    core.Catalog
	Debounce   time.Duration
	Now        func() time.Time
	Logger     *log.Logger
}

// NewDeps wires the services around one clock reading the wall time in loc,
// so the current-month delete gate and the month buckets agree.
func NewDeps(st store.Store, events services.EventPublisher, catalog core.Catalog, debounce time.Duration, loc *time.Location, logger *log.Logger) Deps {
	if loc == nil {
		loc = time.Local
	}
	now := func() time.Time { return time.Now().In(loc) }
	return Deps{
		Store:      st,
		Creator:    services.NewCreator(st, events, logger).WithClock(now),
		Authorizer: services.NewAuthorizer(st, events, logger).WithClock(now),
		Catalog:    catalog,
		Debounce:   debounce,
		Now:        now,
		Logger:     logger,
	}
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// State is the render-facing status of a controller.
type State struct {
	Loading bool
	Error   string
	Loaded  bool
}

// base carries the fields every controller shares.
type base struct {
	deps     Deps
	identity core.Identity
	logger   *log.Logger

	mu      sync.Mutex
	records []core.ServiceRecord
	state   State
	closed  bool
}

func (b *base) init(deps Deps, id core.Identity) {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	b.deps = deps
	b.identity = id
	b.logger = logger.WithComponent(log.ComponentDashboard)
}

// load fetches with f and replaces the collection. A failed fetch keeps the
// previous collection and records a readable error.
func (b *base) load(ctx context.Context, f store.Filter, op string) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.state.Loading = true
	b.mu.Unlock()

	records, err := b.deps.Store.List(ctx, f)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.state.Loading = false
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to load records",
			log.FieldOperation, op,
			log.FieldUserID, f.UserID,
			log.FieldError, err)
		opErr := &services.OperationError{Op: op, Err: err}
		b.state.Error = services.UserMessage(opErr)
		return opErr
	}
	b.records = records
	b.state.Error = ""
	b.state.Loaded = true
	return nil
}

// apply mirrors a successful mutation into the collection.
func (b *base) apply(m services.Mutation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.records = services.Apply(b.records, m)
	b.state.Error = ""
}

// fail records the readable form of err. Authorization denials are refused
// silently and leave the state untouched.
func (b *base) fail(err error) {
	if errors.Is(err, services.ErrNotAdmin) || errors.Is(err, services.ErrUnauthenticated) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.state.Error = services.UserMessage(err)
}

func (b *base) find(id string) (core.ServiceRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.records {
		if r.ID == id {
			return r, true
		}
	}
	return core.ServiceRecord{}, false
}

// Records returns a copy of the current collection.
func (b *base) Records() []core.ServiceRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.ServiceRecord(nil), b.records...)
}

func (b *base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *base) Identity() core.Identity { return b.identity }

// Close detaches the controller. Later loads, mutations results and
// duplicate checks are ignored.
func (b *base) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
