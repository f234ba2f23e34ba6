package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/store"
)

// readinessTitle never matches a real record, keeping the readiness probe to
// an empty indexed lookup.
const readinessTitle = "__readiness_probe__"

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if _, err := s.deps.Store.List(ctx, store.Filter{Title: readinessTitle}); err != nil {
		s.logger.WarnContext(ctx, "Readiness store check failed", log.FieldError, err)
		checks["store"] = "failed"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	m := s.appMetrics

	w.WriteHeader(http.StatusOK)

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_requests_failed_total", "HTTP requests answered with a 5xx status", traceMetrics.FailedRequests)

	fmt.Fprintf(w, "# HELP service_mutations_total Successful service record mutations\n")
	fmt.Fprintf(w, "# TYPE service_mutations_total counter\n")
	fmt.Fprintf(w, "service_mutations_total{operation=%q} %d\n", log.OpCreate, m.created.Load())
	fmt.Fprintf(w, "service_mutations_total{operation=%q} %d\n", log.OpAuthorize, m.authorized.Load())
	fmt.Fprintf(w, "service_mutations_total{operation=%q} %d\n", log.OpRevoke, m.revoked.Load())
	fmt.Fprintf(w, "service_mutations_total{operation=%q} %d\n\n", log.OpDelete, m.deleted.Load())

	counter("duplicate_checks_total", "Duplicate title lookups served", m.duplicateChecks.Load())
	counter("reports_generated_total", "Printable analytics reports rendered", m.reports.Load())
	counter("rate_limit_hits_total", "Total rate limit hits", rateLimitMetrics.TotalHits)
	counter("suspicious_requests_total", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	counter("untrusted_identity_headers_total", "Identity headers ignored from untrusted peers", securityMetrics.UntrustedIdentity)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(m.uptime).Seconds())
}

type indexData struct {
	Identity core.Identity
	Theme    string
}

// handleIndex renders the dashboard shell. Tabs are chosen by role.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	data := indexData{Identity: identityFrom(r.Context()), Theme: themeFrom(r)}
	s.writePartial(w, r, NewHTMXResponse(), "index", data)
}

type authStatusUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Admin       bool   `json:"admin"`
}

type authStatusResponse struct {
	Status string          `json:"status"`
	User   *authStatusUser `json:"user,omitempty"`
}

// handleAuthStatus reports the identity tri-state seen by the server.
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id := identityFrom(r.Context())
	out := authStatusResponse{Status: id.Status.String()}
	if id.IsSignedIn() {
		out.User = &authStatusUser{ID: id.User.ID, DisplayName: id.User.DisplayName(), Admin: id.IsAdmin()}
	}
	NewHTMXResponse().BodyJSON(out).Write(w)
}

type catalogEntry struct {
	Type       string `json:"type"`
	Price      string `json:"price"`
	PriceCents int64  `json:"priceCents"`
	Label      string `json:"label"`
	Default    bool   `json:"default"`
}

// handleCatalog lists the service types and their prices.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	entries := s.deps.Catalog.Entries()
	out := make([]catalogEntry, 0, len(entries))
	for i, e := range entries {
		out = append(out, catalogEntry{
			Type:       string(e.Type),
			Price:      e.Price.String(),
			PriceCents: e.Price.Cents,
			Label:      e.Price.BRL(),
			Default:    i == 0,
		})
	}
	NewHTMXResponse().BodyJSON(out).Write(w)
}

// handleTheme stores the theme preference in a cookie.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	theme, ok := parseTheme(r.Form.Get("theme"))
	if !ok {
		BadRequestError("Tema inválido").Write(w)
		return
	}

	NewHTMXResponse().
		Cookie(&http.Cookie{
			Name:     themeCookie,
			Value:    theme,
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		}).
		TriggerThemeChanged(theme).
		Status(http.StatusNoContent).
		Write(w)
}
