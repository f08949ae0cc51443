// Package web provides the HTTP server and handlers for submissions and uploads.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/submitbox/internal/config"
	"github.com/JonMunkholm/submitbox/internal/core"
	"github.com/JonMunkholm/submitbox/internal/web/middleware"
)

// Server is the HTTP front end for the submission registry.
type Server struct {
	registry  *core.Registry
	validator *core.Validator
	limiter   *core.UploadLimiter
	cfg       *config.Config

	router        *chi.Mux
	server        *http.Server
	generalLimit  *rateLimiter
	uploadLimiter *rateLimiter
}

// NewServer wires routes and middleware around the given core components.
func NewServer(registry *core.Registry, validator *core.Validator, limiter *core.UploadLimiter, cfg *config.Config) *Server {
	s := &Server{
		registry:  registry,
		validator: validator,
		limiter:   limiter,
		cfg:       cfg,
		router:    chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.generalLimit = newRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.uploadLimiter = newRateLimiter(cfg.Rate.UploadLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.Metrics)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           s.cfg.Security.CORSMaxAge,
	}))

	s.router.Use(securityHeaders)

	if s.generalLimit != nil {
		s.router.Use(s.generalLimit.middleware(s))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
		r.Get("/data", s.handleListData)
		r.Post("/submit", s.handleSubmit)
	})

	// Upload streams get their own deadline (cfg.Upload.Timeout) inside the handler.
	s.router.Group(func(r chi.Router) {
		if s.uploadLimiter != nil {
			r.Use(s.uploadLimiter.middleware(s))
		}
		r.Post("/upload/{id}", s.handleUpload)
	})
}

// Start listens on the configured address. It blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.generalLimit != nil {
		s.generalLimit.stop()
	}
	if s.uploadLimiter != nil {
		s.uploadLimiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds baseline hardening headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// retryAfter formats a window as a Retry-After header value.
func retryAfter(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds()))
}
