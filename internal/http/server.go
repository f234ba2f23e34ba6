package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"servicos/internal/dashboard"
	"servicos/internal/log"
	"servicos/internal/middleware/ratelimit"
	"servicos/internal/middleware/security"
	"servicos/internal/middleware/trace"
	"servicos/internal/report"
	"servicos/internal/services"
	appweb "servicos/web"
)

// Options configures NewServer.
type Options struct {
	Addr              string
	Deps              dashboard.Deps
	RequestsPerMinute int
	// TrustedProxies are extra CIDRs allowed to forward client and
	// identity headers, on top of loopback and the private ranges.
	TrustedProxies []string
	ServiceName    string
	Logger         *log.Logger
}

// appMetrics are the counters exposed on /metrics.
type appMetrics struct {
	uptime          time.Time
	created         atomic.Int64
	authorized      atomic.Int64
	revoked         atomic.Int64
	deleted         atomic.Int64
	duplicateChecks atomic.Int64
	reports         atomic.Int64
}

type Server struct {
	http.Server
	templates *template.Template
	reports   *report.Renderer
	deps      dashboard.Deps
	detector  *services.DuplicateDetector
	logger    *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Deps.Store == nil || opts.Deps.Creator == nil || opts.Deps.Authorizer == nil {
		return nil, errors.New("http server requires a store, a creator and an authorizer")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if opts.Deps.Logger == nil {
		opts.Deps.Logger = logger
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "servicos"
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		deps:             opts.Deps,
		logger:           logger.WithComponent(log.ComponentHTTP),
		detector:         services.NewDuplicateDetector(opts.Deps.Store, opts.Deps.Debounce, logger),
		securityDetector: detector,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
			Methods:           []string{http.MethodPost},
		}),
		appMetrics: &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, detector.ExtractClientIP)

	t, err := template.New("dashboard").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.rateLimiter.Stop()
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	s.reports, err = report.New()
	if err != nil {
		s.rateLimiter.Stop()
		return nil, err
	}

	mux := http.NewServeMux()

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		s.rateLimiter.Stop()
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("/static/", security.CacheStatic(time.Hour)(
		http.StripPrefix("/static/", http.FileServer(http.FS(sub)))))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/auth/status", s.handleAuthStatus)
	mux.HandleFunc("/api/catalog", s.handleCatalog)
	mux.HandleFunc("/preferences/theme", s.handleTheme)

	mux.HandleFunc("/ui/services", s.handleServices)
	mux.HandleFunc("/ui/duplicates", s.handleDuplicates)
	mux.HandleFunc("/services", s.handleCreateService)

	mux.HandleFunc("/ui/history", s.handleHistory)
	mux.HandleFunc("/services/{id}/authorize", s.handleAuthorize)
	mux.HandleFunc("/services/{id}/revoke", s.handleRevoke)
	mux.HandleFunc("/services/{id}/delete", s.handleDelete)

	mux.HandleFunc("/ui/analytics", s.handleAnalytics)
	mux.HandleFunc("/reports/analytics", s.handleReport)

	var handler http.Handler = mux
	handler = identityMiddleware(detector, logger)(handler)
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = detector.Middleware(logger)(handler)
	handler = security.Headers(security.DashboardPolicy())(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = log.Middleware(s.logger)(handler)
	handler = otelhttp.NewHandler(handler, opts.ServiceName)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

func (s *Server) templateFuncs() template.FuncMap {
	funcs := report.Funcs()
	loc := s.location()
	funcs["date"] = func(t time.Time) string { return t.In(loc).Format("02/01/2006") }
	funcs["datetime"] = func(t time.Time) string { return t.In(loc).Format("02/01/2006 15:04") }
	return funcs
}

// location is the zone month buckets and dates are rendered in.
func (s *Server) location() *time.Location {
	if s.deps.Now != nil {
		return s.deps.Now().Location()
	}
	return time.Local
}

// render executes a named template into a string so a failed render never
// leaves a half-written response.
func (s *Server) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// writePartial renders name and writes it with resp, or a generic error when
// the template fails.
func (s *Server) writePartial(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, name string, data any) {
	html, err := s.render(name, data)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldComponent, log.ComponentTemplate,
			"template", name,
			log.FieldError, err)
		InternalServerError(services.UserMessage(&services.OperationError{Op: log.OpRender, Err: err})).Write(w)
		return
	}
	resp.BodyHTML(html).Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		s.detector.Close()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
