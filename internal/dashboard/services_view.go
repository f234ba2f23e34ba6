package dashboard

import (
	"context"
	"sync"

	"servicos/internal/aggregate"
	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/services"
	"servicos/internal/store"
)

// Duplicates is the last delivered duplicate check of the creation form.
type Duplicates struct {
	Title    string
	Records  []core.ServiceRecord
	Checking bool
	Error    string
}

// Found reports whether the checked title already exists.
func (d Duplicates) Found() bool { return len(d.Records) > 0 }

// CreateInput is the creation form. The price is resolved from the catalog.
type CreateInput struct {
	ServiceType   core.ServiceType
	Title         string
	AdminOverride bool
}

// ServicesView is the "my services" tab: the signed-in user's own records
// grouped by month, plus the creation form and its duplicate warning.
type ServicesView struct {
	base

	dupMu      sync.Mutex
	dups       Duplicates
	detector   *services.DuplicateDetector
	dupsClosed bool
}

func NewServicesView(deps Deps, id core.Identity) *ServicesView {
	v := &ServicesView{}
	v.init(deps, id)
	return v
}

// Load fetches the caller's own records.
func (v *ServicesView) Load(ctx context.Context) error {
	if !v.identity.IsSignedIn() {
		return services.ErrUnauthenticated
	}
	return v.load(ctx, store.Filter{UserID: v.identity.User.ID}, log.OpList)
}

// Months rolls the collection up by creation month in the clock's location.
func (v *ServicesView) Months() []aggregate.MonthBucket {
	return aggregate.ByMonth(v.Records(), v.deps.now().Location())
}

// Catalog is the list offered by the form.
func (v *ServicesView) Catalog() []core.CatalogEntry {
	return v.deps.Catalog.Entries()
}

// TitleChanged schedules a debounced duplicate check. Blank titles clear the
// warning immediately.
func (v *ServicesView) TitleChanged(title string) {
	t := core.NormalizeTitle(title)
	v.dupMu.Lock()
	if v.dupsClosed {
		v.dupMu.Unlock()
		return
	}
	if t == "" {
		v.dups = Duplicates{}
	} else {
		v.dups.Checking = true
	}
	// Created on the first edit of the title field.
	if v.detector == nil {
		v.detector = services.NewDuplicateDetector(v.deps.Store, v.deps.Debounce, v.logger)
	}
	d := v.detector
	v.dupMu.Unlock()
	d.Check(t, v.deliverDuplicates)
}

func (v *ServicesView) deliverDuplicates(res services.DuplicateResult) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return
	}
	v.dupMu.Lock()
	defer v.dupMu.Unlock()
	v.dups = Duplicates{Title: res.Title, Records: res.Records}
	if res.Err != nil {
		v.dups.Error = services.UserMessage(res.Err)
	}
}

func (v *ServicesView) Duplicates() Duplicates {
	v.dupMu.Lock()
	defer v.dupMu.Unlock()
	return v.dups
}

// Create resolves the price of the selected type and runs the creation
// workflow. The new record is appended to the collection on success.
func (v *ServicesView) Create(ctx context.Context, in CreateInput) (core.ServiceRecord, error) {
	price, err := v.deps.Catalog.Price(in.ServiceType)
	if err != nil {
		v.fail(err)
		return core.ServiceRecord{}, err
	}
	rec, err := v.deps.Creator.Create(ctx, v.identity, services.NewService{
		ServiceType:   in.ServiceType,
		Title:         in.Title,
		Price:         price,
		AdminOverride: in.AdminOverride,
	})
	if err != nil {
		v.fail(err)
		return core.ServiceRecord{}, err
	}
	v.apply(services.Mutation{Kind: services.MutationInsert, Record: rec})
	v.dupMu.Lock()
	v.dups = Duplicates{}
	v.dupMu.Unlock()
	return rec, nil
}

// Close stops pending duplicate checks and detaches the view.
func (v *ServicesView) Close() {
	v.dupMu.Lock()
	d := v.detector
	v.dupsClosed = true
	v.dupMu.Unlock()
	if d != nil {
		d.Close()
	}
	v.base.Close()
}
