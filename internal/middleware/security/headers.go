package security

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Policy lists the response headers the dashboard sets on every response.
type Policy struct {
	// CSP allows htmx from unpkg and the inline width styles of the charts.
	CSP string
	// HSTS is sent only over TLS; zero disables it.
	HSTS time.Duration
	// NoStore are path prefixes serving record data, which changes after
	// every mutation and must never be served from a cache.
	NoStore []string
}

// DashboardPolicy is the policy used by the HTTP server.
func DashboardPolicy() Policy {
	return Policy{
		CSP: strings.Join([]string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data:",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		}, "; "),
		HSTS:    365 * 24 * time.Hour,
		NoStore: []string{"/ui/", "/services", "/reports/", "/api/"},
	}
}

// Headers applies p before the request reaches next.
func Headers(p Policy) func(http.Handler) http.Handler {
	hsts := "max-age=" + strconv.Itoa(int(p.HSTS.Seconds())) + "; includeSubDomains"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", p.CSP)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			if r.TLS != nil && p.HSTS > 0 {
				h.Set("Strict-Transport-Security", hsts)
			}
			if p.noStore(r.URL.Path) {
				h.Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (p Policy) noStore(path string) bool {
	for _, prefix := range p.NoStore {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// CacheStatic lets browsers keep embedded assets for maxAge.
func CacheStatic(maxAge time.Duration) func(http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(int(maxAge.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
