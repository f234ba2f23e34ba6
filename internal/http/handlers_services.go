package http

import (
	"net/http"

	"servicos/internal/core"
	"servicos/internal/dashboard"
	"servicos/internal/log"
	"servicos/internal/services"
)

type servicesPanelData struct {
	View        *dashboard.ServicesView
	Catalog     []core.CatalogEntry
	DefaultType core.ServiceType
	DebounceMs  int64
}

type duplicatesData struct {
	dashboard.Duplicates
	Admin bool
}

func (s *Server) debounceMs() int64 {
	d := s.deps.Debounce
	if d <= 0 {
		d = services.DefaultDebounce
	}
	return d.Milliseconds()
}

// handleServices renders the creation form and the caller's own records
// grouped by month.
func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id := identityFrom(r.Context())
	if !id.IsSignedIn() {
		ErrorFor(services.ErrUnauthenticated).Write(w)
		return
	}

	view := dashboard.NewServicesView(s.deps, id)
	defer view.Close()

	ctx, cancel := withStoreTimeout(r)
	defer cancel()
	// A failed load is reported inside the panel.
	_ = view.Load(ctx)

	data := servicesPanelData{
		View:       view,
		Catalog:    view.Catalog(),
		DebounceMs: s.debounceMs(),
	}
	if def, ok := s.deps.Catalog.Default(); ok {
		data.DefaultType = def.Type
	}
	s.writePartial(w, r, NewHTMXResponse(), "services_panel", data)
}

// handleCreateService runs the creation workflow and answers with the
// month list patched locally with the new record.
func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	id := identityFrom(r.Context())
	if !id.IsSignedIn() {
		ErrorFor(services.ErrUnauthenticated).Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	in := dashboard.CreateInput{
		ServiceType:   core.ServiceType(p.Get("service_type")),
		Title:         p.Get("title"),
		AdminOverride: p.GetBool("admin_override"),
	}

	view := dashboard.NewServicesView(s.deps, id)
	defer view.Close()

	ctx, cancel := withStoreTimeout(r)
	defer cancel()
	loadErr := view.Load(ctx)

	rec, err := view.Create(ctx, in)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Service creation rejected",
			log.FieldOperation, log.OpCreate,
			log.FieldTitle, in.Title,
			log.FieldServiceType, string(in.ServiceType),
			log.FieldError, err)
		ErrorFor(err).Write(w)
		return
	}
	s.appMetrics.created.Add(1)

	resp := NewHTMXResponse().
		TriggerServiceCreated(rec).
		TriggerFormReset()
	if rec.IncludeInTotal {
		resp.TriggerSuccessNotification("Serviço registrado: " + rec.Title + " (" + rec.Price.BRL() + ")")
	} else {
		resp.TriggerWarningNotification("Serviço registrado como duplicado e aguardando autorização: " + rec.Title)
	}

	if loadErr != nil {
		// Without the loaded list the local patch would show only the new
		// record, so the list is left as it is.
		resp.Header("HX-Reswap", "none").Write(w)
		return
	}
	s.writePartial(w, r, resp, "services_list", view)
}

// handleDuplicates renders the duplicate warning for the title being typed.
// Debouncing happens client side; concurrent lookups of the same title
// share one store call.
func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id := identityFrom(r.Context())
	if !id.IsSignedIn() {
		ErrorFor(services.ErrUnauthenticated).Write(w)
		return
	}

	title := sanitizeInput(r.URL.Query().Get("title"))

	ctx, cancel := withStoreTimeout(r)
	defer cancel()
	records, err := s.detector.Find(ctx, title)
	s.appMetrics.duplicateChecks.Add(1)

	data := duplicatesData{
		Duplicates: dashboard.Duplicates{Title: core.NormalizeTitle(title), Records: records},
		Admin:      id.IsAdmin(),
	}
	if err != nil {
		data.Error = services.UserMessage(err)
	}
	s.writePartial(w, r, NewHTMXResponse(), "duplicates", data)
}
