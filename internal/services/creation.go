package services

import (
	"context"
	"fmt"
	"time"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/store"
)

// NewService is the creation form input. Price has already been resolved
// from the catalog by the caller.
type NewService struct {
	ServiceType   core.ServiceType
	Title         string
	Price         core.Money
	AdminOverride bool
}

// Creator runs the creation workflow: authoritative duplicate re-check,
// inclusion decision, insert, event.
type Creator struct {
	store  store.Store
	events EventPublisher
	logger *log.Logger
	sl     *log.StructuredLogger
	now    func() time.Time
}

func NewCreator(s store.Store, events EventPublisher, logger *log.Logger) *Creator {
	l := orDiscard(logger).WithComponent(log.ComponentCreation)
	return &Creator{store: s, events: events, logger: l, sl: log.NewStructuredLogger(l), now: time.Now}
}

// WithClock replaces the clock used for event timestamps.
func (c *Creator) WithClock(now func() time.Time) *Creator {
	c.now = now
	return c
}

// Create inserts a new record for the signed-in identity. Validation runs
// before any store call. AdminOverride is ignored unless the caller is an
// admin, and only marks the record when its title is actually a duplicate.
func (c *Creator) Create(ctx context.Context, id core.Identity, in NewService) (core.ServiceRecord, error) {
	if !id.IsSignedIn() {
		return core.ServiceRecord{}, ErrUnauthenticated
	}
	title := core.NormalizeTitle(in.Title)
	if err := core.ValidateTitle(title); err != nil {
		return core.ServiceRecord{}, err
	}
	if in.Price.IsNegative() {
		return core.ServiceRecord{}, core.ErrNegativePrice
	}

	existing, err := c.store.List(ctx, store.Filter{Title: title})
	if err != nil {
		c.sl.LogError(ctx, "Duplicate re-check failed", err, log.ComponentCreation, log.OpCreate,
			log.NewFields().WithRecord("", title, string(in.ServiceType), in.Price.Cents))
		return core.ServiceRecord{}, &OperationError{Op: log.OpCreate, Err: fmt.Errorf("check duplicates: %w", err)}
	}

	decision := Decide(len(existing) > 0, in.AdminOverride && id.IsAdmin())
	rec := core.ServiceRecord{
		Title:          title,
		ServiceType:    in.ServiceType,
		Price:          in.Price,
		UserID:         id.User.ID,
		Username:       id.User.DisplayName(),
		IncludeInTotal: decision.IncludeInTotal,
		AdminOverride:  decision.AdminOverride,
	}

	created, err := c.store.Insert(ctx, rec)
	if err != nil {
		c.sl.LogError(ctx, "Insert failed", err, log.ComponentCreation, log.OpCreate,
			log.NewFields().WithRecord("", title, string(in.ServiceType), in.Price.Cents))
		return core.ServiceRecord{}, &OperationError{Op: log.OpCreate, Err: fmt.Errorf("insert service: %w", err)}
	}

	c.sl.LogRecordMutation(ctx, log.OpCreate, created.ID, created.Title, string(created.ServiceType),
		created.Price.Cents, log.ComponentCreation)
	publish(ctx, c.events, c.logger, c.now, core.EventRecordCreated, created, id.User.ID)
	return created, nil
}

// Inclusion is the flag pair a new record is created with.
type Inclusion struct {
	IncludeInTotal bool
	AdminOverride  bool
}

// Decide computes the creation flags. override must already be admin-gated.
func Decide(isDuplicate, override bool) Inclusion {
	return Inclusion{
		IncludeInTotal: !isDuplicate || override,
		AdminOverride:  isDuplicate && override,
	}
}
