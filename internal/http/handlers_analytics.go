package http

import (
	"bytes"
	"fmt"
	"net/http"

	"servicos/internal/aggregate"
	"servicos/internal/dashboard"
	"servicos/internal/log"
	"servicos/internal/report"
	"servicos/internal/services"
)

type analyticsData struct {
	View    *dashboard.AnalyticsView
	Periods []aggregate.Period
}

// handleAnalytics renders the analytics tab for the requested period.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id := identityFrom(r.Context())
	if !id.IsSignedIn() {
		ErrorFor(services.ErrUnauthenticated).Write(w)
		return
	}

	view := dashboard.NewAnalyticsView(s.deps, id, r.URL.Query().Get("period"))
	defer view.Close()

	ctx, cancel := withStoreTimeout(r)
	defer cancel()
	_ = view.Load(ctx)

	s.writePartial(w, r, NewHTMXResponse(), "analytics", analyticsData{View: view, Periods: aggregate.Periods()})
}

// handleReport serves the printable analytics report. It is rebuilt on
// every request from a fresh load.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id := identityFrom(r.Context())
	if !id.IsSignedIn() {
		ErrorFor(services.ErrUnauthenticated).Write(w)
		return
	}

	q := r.URL.Query()
	view := dashboard.NewAnalyticsView(s.deps, id, q.Get("period"))
	defer view.Close()

	ctx, cancel := withStoreTimeout(r)
	defer cancel()
	if err := view.Load(ctx); err != nil {
		ErrorFor(err).Write(w)
		return
	}

	data := report.Data{
		Header: report.Header{
			UserName:    id.User.DisplayName(),
			AllUsers:    view.AllUsers(),
			GeneratedAt: view.GeneratedAt(),
			AutoPrint:   ParseBool(q.Get("print")),
		},
		Analytics: view.Analytics(),
	}

	var buf bytes.Buffer
	if err := s.reports.Render(&buf, data); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Report rendering failed",
			log.FieldOperation, log.OpRender,
			log.FieldPeriod, string(view.Period()),
			log.FieldError, err)
		ErrorFor(&services.OperationError{Op: log.OpRender, Err: err}).Write(w)
		return
	}
	s.appMetrics.reports.Add(1)

	NewHTMXResponse().
		Header("Content-Disposition", fmt.Sprintf(`inline; filename="relatorio-servicos-%s.html"`, view.Period())).
		BodyHTML(buf.String()).
		Write(w)
}
