// Package web provides the HTTP explode service.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/explode/internal/config"
	"github.com/JonMunkholm/explode/internal/core"
	"github.com/JonMunkholm/explode/internal/value"
	webmw "github.com/JonMunkholm/explode/internal/web/middleware"
)

// Server is the HTTP server for the explode service.
type Server struct {
	cfg     *config.Config
	opts    *value.Options // default value policy
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
	runs    *core.RunLimiter
}

// NewServer creates a new Server instance. ctx bounds background work
// such as rate limiter cleanup.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	opts, err := cfg.Value.Options()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:    cfg,
		opts:   opts,
		router: chi.NewRouter(),
		runs:   core.NewRunLimiter(cfg.Server.MaxConcurrent, cfg.Server.MaxWait),
	}
	if cfg.Server.RequestsPerMinute > 0 {
		s.limiter = newRateLimiter(ctx, cfg.Server.RequestsPerMinute, rateWindow)
	}
	s.setupMiddleware()
	s.setupRoutes()

	sc := cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout, // 0 while responses stream
		IdleTimeout:  sc.IdleTimeout,
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "text/tab-separated-values", "application/json", "text/html"))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders)

	if s.limiter != nil {
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/fields", s.handleFields)
		r.Post("/explode", s.handleExplode)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, letting active runs finish first.
func (s *Server) Shutdown(ctx context.Context) error {
	if active := s.runs.ActiveCount(); active > 0 {
		slog.Info("waiting for explode runs to complete", "active", active)
		if err := s.runs.WaitForDrain(ctx); err != nil {
			slog.Warn("explode runs did not complete in time", "error", err)
		}
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// The index page is static HTML with inline styles only
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
