// Package web serves the portal's table pages, HTMX view actions, exports
// and a stateless JSON API.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/ibportal/internal/config"
	"github.com/JonMunkholm/ibportal/internal/core"
	"github.com/JonMunkholm/ibportal/internal/export"
	"github.com/JonMunkholm/ibportal/internal/metrics"
	"github.com/JonMunkholm/ibportal/internal/source"
	"github.com/JonMunkholm/ibportal/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the portal's HTTP server.
type Server struct {
	cfg      *config.Config
	source   source.Source
	exporter *export.Exporter
	sessions *sessionStore
	locale   language.Tag

	router *chi.Mux
	server *http.Server
	stop   context.CancelFunc
}

// NewServer wires routes and starts the session and rate limiter janitors.
// Shutdown stops them.
func NewServer(cfg *config.Config, src source.Source, exp *export.Exporter) *Server {
	locale, err := language.Parse(cfg.Table.Locale)
	if err != nil {
		locale = core.DefaultLocale
	}

	ctx, stop := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		source:   src,
		exporter: exp,
		sessions: newSessionStore(cfg.Table.SessionTTL),
		locale:   locale,
		router:   chi.NewRouter(),
		stop:     stop,
	}
	go s.sessions.janitor(ctx, max(cfg.Table.SessionTTL/4, time.Second))

	s.setupMiddleware(ctx)
	s.setupRoutes(ctx)
	return s
}

func (s *Server) setupMiddleware(ctx context.Context) {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newIPLimiter(s.cfg.Rate.RequestsPerMinute)
		go limiter.janitor(ctx, 5*time.Minute)
		s.router.Use(s.rateLimit(limiter))
	}
}

func (s *Server) setupRoutes(ctx context.Context) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/table/{tableKey}", s.handleTablePage)

	// HTMX view actions
	s.router.Route("/view/{sessionID}", func(r chi.Router) {
		r.Get("/", s.handleViewResults)
		r.Post("/search", s.viewAction("search", false, applySearch))
		r.Post("/select", s.viewAction("select", false, applySelect))
		r.Post("/dates", s.viewAction("dates", false, applyDates))
		r.Post("/dates/clear", s.viewAction("clear_dates", true, applyClearDates))
		r.Post("/sort/{columnKey}", s.viewAction("sort", false, applySort))
		r.Post("/page", s.viewAction("page", false, applyPage))
		r.Post("/size", s.viewAction("page_size", false, s.applyPageSize))
		r.Post("/reset", s.viewAction("reset", true, applyReset))
	})

	exportLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		limiter := newIPLimiter(s.cfg.Rate.ExportLimit)
		go limiter.janitor(ctx, 5*time.Minute)
		exportLimit = s.rateLimit(limiter)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{tableKey}/rows", s.handleTableRows)
		r.With(exportLimit).Get("/tables/{tableKey}/export/{format}", s.handleTableExport)
		r.With(exportLimit).Get("/view/{sessionID}/export/{format}", s.handleViewExport)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight exports and
// stops background janitors.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.stop()
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.exporter.Drain(ctx)
}

// securityHeaders adds hardening headers to every response.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				// htmx is served from unpkg; inline styles come from htmx indicators.
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}
