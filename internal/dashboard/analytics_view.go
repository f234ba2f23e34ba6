package dashboard

import (
	"context"
	"time"

	"servicos/internal/aggregate"
	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/services"
	"servicos/internal/store"
)

// AnalyticsView is the analytics tab. Admins analyze every user's records,
// everyone else only their own.
type AnalyticsView struct {
	base
	period aggregate.Period
}

// NewAnalyticsView parses the requested period; an invalid period falls back
// to the default one.
func NewAnalyticsView(deps Deps, id core.Identity, period string) *AnalyticsView {
	p, err := aggregate.ParsePeriod(period)
	if err != nil {
		p = aggregate.DefaultPeriod
	}
	v := &AnalyticsView{period: p}
	v.init(deps, id)
	return v
}

func (v *AnalyticsView) Period() aggregate.Period { return v.period }

// AllUsers reports whether the analysis spans every user.
func (v *AnalyticsView) AllUsers() bool { return v.identity.IsAdmin() }

func (v *AnalyticsView) Load(ctx context.Context) error {
	if !v.identity.IsSignedIn() {
		return services.ErrUnauthenticated
	}
	f := store.Filter{UserID: v.identity.User.ID}
	if v.AllUsers() {
		f = store.Filter{}
	}
	v.logger.DebugContext(ctx, "Loading analytics", log.FieldPeriod, string(v.period))
	return v.load(ctx, f, log.OpAnalytics)
}

// Analytics applies the period window to the loaded collection and rolls it
// up. Per-user stats are only computed for admins.
func (v *AnalyticsView) Analytics() aggregate.Analytics {
	return aggregate.Analyze(v.Records(), v.period, v.deps.now(), v.AllUsers())
}

// GeneratedAt is the reference time of the analysis.
func (v *AnalyticsView) GeneratedAt() time.Time { return v.deps.now() }
