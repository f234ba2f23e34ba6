package http

import (
	"net/http"

	"servicos/internal/core"
	"servicos/internal/dashboard"
	"servicos/internal/log"
	"servicos/internal/services"
)

type historyData struct {
	View  *dashboard.HistoryView
	Admin bool
}

// handleHistory renders the history tab in the requested mode. Admin modes
// silently fall back to the caller's own history for non-admins.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id := identityFrom(r.Context())
	if !id.IsSignedIn() {
		ErrorFor(services.ErrUnauthenticated).Write(w)
		return
	}

	view := dashboard.NewHistoryView(s.deps, id, r.URL.Query().Get("mode"))
	defer view.Close()

	ctx, cancel := withStoreTimeout(r)
	defer cancel()
	_ = view.Load(ctx)

	s.writePartial(w, r, NewHTMXResponse(), "history", historyData{View: view, Admin: id.IsAdmin()})
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, log.OpAuthorize)
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, log.OpRevoke)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, log.OpDelete)
}

// handleTransition runs one admin action on a record and answers with the
// history partial patched locally. Non-admins are refused before any store
// call.
func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, op string) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	id := identityFrom(r.Context())
	if !id.IsSignedIn() {
		ErrorFor(services.ErrUnauthenticated).Write(w)
		return
	}
	if !id.IsAdmin() {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Admin action refused",
			log.FieldOperation, op,
			log.FieldUserID, id.User.ID)
		ErrorFor(services.ErrNotAdmin).Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	recordID := sanitizeInput(r.PathValue("id"))
	view := dashboard.NewHistoryView(s.deps, id, r.Form.Get("mode"))
	defer view.Close()

	ctx, cancel := withStoreTimeout(r)
	defer cancel()
	if err := view.Load(ctx); err != nil {
		ErrorFor(err).Write(w)
		return
	}

	resp := NewHTMXResponse()
	var (
		rec core.ServiceRecord
		err error
	)
	switch op {
	case log.OpAuthorize:
		rec, err = view.Authorize(ctx, recordID)
		if err == nil {
			s.appMetrics.authorized.Add(1)
			resp.TriggerServiceUpdated(rec).TriggerSuccessNotification("Serviço autorizado: " + rec.Title)
		}
	case log.OpRevoke:
		rec, err = view.Revoke(ctx, recordID)
		if err == nil {
			s.appMetrics.revoked.Add(1)
			resp.TriggerServiceUpdated(rec).TriggerSuccessNotification("Autorização revogada: " + rec.Title)
		}
	case log.OpDelete:
		err = view.Delete(ctx, recordID, ParseBool(r.Form.Get("confirm")))
		if err == nil {
			s.appMetrics.deleted.Add(1)
			resp.TriggerServiceDeleted(recordID).TriggerSuccessNotification("Serviço excluído")
		}
	}
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Admin action failed",
			log.FieldOperation, op,
			log.FieldRecordID, recordID,
			log.FieldError, err)
		ErrorFor(err).Write(w)
		return
	}

	s.writePartial(w, r, resp, "history", historyData{View: view, Admin: true})
}
