package dashboard

import (
	"context"
	"fmt"

	"servicos/internal/aggregate"
	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/services"
	"servicos/internal/store"
)

// Mode selects which records the history tab shows.
type Mode string

const (
	ModeDefault      Mode = "default"
	ModeAdminAll     Mode = "admin-all"
	ModeAdminPending Mode = "admin-pending"
)

// ResolveMode maps a requested mode to the one the caller may see. Admin
// modes requested by a non-admin fall back to the default mode.
func ResolveMode(requested string, id core.Identity) Mode {
	switch Mode(requested) {
	case ModeAdminAll, ModeAdminPending:
		if id.IsAdmin() {
			return Mode(requested)
		}
	}
	return ModeDefault
}

// Filter is the store filter of a mode.
func (m Mode) Filter(id core.Identity) store.Filter {
	switch m {
	case ModeAdminAll:
		return store.Filter{}
	case ModeAdminPending:
		return store.Filter{IncludeInTotal: store.Bool(false)}
	default:
		return store.Filter{UserID: id.User.ID}
	}
}

// Title is the heading of the mode.
func (m Mode) Title() string {
	switch m {
	case ModeAdminAll:
		return "Todos os Serviços"
	case ModeAdminPending:
		return "Serviços Pendentes"
	default:
		return "Meu Histórico"
	}
}

// Admin reports whether the mode shows the admin actions.
func (m Mode) Admin() bool { return m != ModeDefault }

// HistoryMonth is one history row: the month's records, newest first, with
// the authorized total and the pending total.
type HistoryMonth struct {
	Key          string
	Records      []core.ServiceRecord
	Total        core.Money
	PendingTotal core.Money
	Count        int
}

// HistoryView is the history tab in one of its three modes.
type HistoryView struct {
	base
	mode Mode
}

func NewHistoryView(deps Deps, id core.Identity, requested string) *HistoryView {
	v := &HistoryView{mode: ResolveMode(requested, id)}
	v.init(deps, id)
	return v
}

func (v *HistoryView) Mode() Mode { return v.mode }

func (v *HistoryView) Load(ctx context.Context) error {
	if !v.identity.IsSignedIn() {
		return services.ErrUnauthenticated
	}
	v.logger.DebugContext(ctx, "Loading history", log.FieldViewMode, string(v.mode))
	return v.load(ctx, v.mode.Filter(v.identity), log.OpList)
}

// Months groups the collection by creation month, most recent first.
func (v *HistoryView) Months() []HistoryMonth {
	buckets := aggregate.ByMonth(v.Records(), v.deps.now().Location())
	out := make([]HistoryMonth, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, HistoryMonth{
			Key:          b.Key,
			Records:      b.Records,
			Total:        b.AuthorizedAmount,
			PendingTotal: b.PendingAmount,
			Count:        b.ServiceCount,
		})
	}
	return out
}

// PendingCount is the number of loaded records awaiting authorization.
func (v *HistoryView) PendingCount() int {
	n := 0
	for _, r := range v.Records() {
		if r.Pending() {
			n++
		}
	}
	return n
}

// Subtitle describes the loaded collection for the heading.
func (v *HistoryView) Subtitle() string {
	if v.mode == ModeAdminPending {
		return fmt.Sprintf("%d aguardando autorização", v.PendingCount())
	}
	return fmt.Sprintf("%d serviços", len(v.Records()))
}

// CanDelete reports whether the delete action is offered for r.
func (v *HistoryView) CanDelete(r core.ServiceRecord) bool {
	return v.identity.IsAdmin() && v.deps.Authorizer.CanDelete(r)
}

// Busy reports whether r has an authorize/revoke or a delete in flight.
func (v *HistoryView) Busy(id string) bool {
	return v.deps.Authorizer.Mutating().Has(id) || v.deps.Authorizer.Deleting().Has(id)
}

// Authorize flips the record to authorized and patches the collection.
func (v *HistoryView) Authorize(ctx context.Context, id string) (core.ServiceRecord, error) {
	return v.transition(ctx, id, v.deps.Authorizer.Authorize)
}

// Revoke returns the record to pending and patches the collection.
func (v *HistoryView) Revoke(ctx context.Context, id string) (core.ServiceRecord, error) {
	return v.transition(ctx, id, v.deps.Authorizer.Revoke)
}

type transitionFunc func(context.Context, core.Identity, core.ServiceRecord) (core.ServiceRecord, error)

func (v *HistoryView) transition(ctx context.Context, id string, fn transitionFunc) (core.ServiceRecord, error) {
	if !v.identity.IsAdmin() {
		return core.ServiceRecord{}, services.ErrNotAdmin
	}
	r, ok := v.find(id)
	if !ok {
		v.fail(store.ErrNotFound)
		return core.ServiceRecord{}, store.ErrNotFound
	}
	updated, err := fn(ctx, v.identity, r)
	if err != nil {
		v.fail(err)
		return r, err
	}
	v.apply(services.Mutation{Kind: services.MutationUpdate, Record: updated})
	return updated, nil
}

// Delete removes the record after an explicit confirmation. The month guard
// and the admin check run before the store is called.
func (v *HistoryView) Delete(ctx context.Context, id string, confirmed bool) error {
	if !v.identity.IsAdmin() {
		return services.ErrNotAdmin
	}
	r, ok := v.find(id)
	if !ok {
		v.fail(store.ErrNotFound)
		return store.ErrNotFound
	}
	if !confirmed {
		v.fail(services.ErrNotConfirmed)
		return services.ErrNotConfirmed
	}
	if err := v.deps.Authorizer.Delete(ctx, v.identity, r); err != nil {
		v.fail(err)
		return err
	}
	v.apply(services.Mutation{Kind: services.MutationDelete, Record: r})
	return nil
}
