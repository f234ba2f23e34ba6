package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"servicos/internal/core"
	"servicos/internal/services"
	"servicos/internal/store"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	rec := core.ServiceRecord{ID: "rec-1", IncludeInTotal: false}
	NewHTMXResponse().
		TriggerServiceCreated(rec).
		TriggerFormReset().
		TriggerSuccessNotification("Serviço registrado").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	expectedParts := []string{
		`"service:created"`,
		`"id":"rec-1"`,
		`"includeInTotal":false`,
		`"form:reset"`,
		`"show-notification"`,
		`"type":"success"`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestHTMXResponseBuilder_UpdateAndDelete(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerServiceUpdated(core.ServiceRecord{ID: "a", IncludeInTotal: true}).
		TriggerServiceDeleted("b").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, part := range []string{`"service:updated"`, `"includeInTotal":true`, `"service:deleted"`, `"id":"b"`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestHTMXResponseBuilder_NoTriggers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().BodyHTML("<div>ok</div>").Write(w)

	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should not be set when no triggers were added")
	}
	if got := w.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestHTMXResponseBuilder_CookieAndJSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Cookie(&http.Cookie{Name: "theme", Value: "dark"}).
		BodyJSON(map[string]string{"status": "ok"}).
		Write(w)

	if !strings.Contains(w.Header().Get("Set-Cookie"), "theme=dark") {
		t.Errorf("Set-Cookie = %q", w.Header().Get("Set-Cookie"))
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, `<script>alert("x")</script>`).Write(w)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %s", w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	storeErr := &services.OperationError{Op: "list", Err: errors.New("connection refused")}

	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.ErrUnauthenticated, http.StatusUnauthorized},
		{services.ErrNotAdmin, http.StatusForbidden},
		{services.ErrInFlight, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", store.ErrNotFound), http.StatusNotFound},
		{services.ErrNotConfirmed, http.StatusBadRequest},
		{services.ErrNotCurrentMonth, http.StatusUnprocessableEntity},
		{core.ErrEmptyTitle, http.StatusUnprocessableEntity},
		{core.ErrUnknownServiceType, http.StatusUnprocessableEntity},
		{storeErr, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorForHidesStoreText(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorFor(&services.OperationError{Op: "create", Err: errors.New("pq: relation does not exist")}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "relation") {
		t.Errorf("store error leaked: %s", body)
	}
	if !strings.Contains(body, "Erro ao criar serviço") {
		t.Errorf("missing generic message: %s", body)
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d", w.Code)
	}
	if w.Header().Get("Allow") != "POST" {
		t.Errorf("Allow = %q", w.Header().Get("Allow"))
	}
}
