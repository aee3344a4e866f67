// Package web provides the HTTP API and dashboard for the resale backend.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/resale/internal/config"
	"github.com/JonMunkholm/resale/internal/core"
	"github.com/JonMunkholm/resale/internal/web/middleware"
)

// Server is the HTTP server for the resale backend.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
	now     func() time.Time
}

// NewServer creates a Server with middleware and routes installed.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(requestMeta)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.CORS(s.cfg.CORS.AllowedOrigins))
	s.router.Use(securityHeaders)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, rateWindow)
		s.router.Use(s.limiter.middleware)
	}

	s.router.Use(middleware.APIKeyAuth(s.cfg.Security, "/health"))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/inventory", func(r chi.Router) {
		r.Get("/", s.handleListInventory)
		r.Post("/", s.handleCreateInventory)
		r.Put("/{itemName}", s.handleUpdateInventory)
		r.Delete("/{itemName}", s.handleDeleteInventory)
	})

	s.router.Route("/orders", func(r chi.Router) {
		r.Get("/", s.handleListOrders)
		r.Post("/", s.handleCreateOrder)
		r.Put("/{orderID}", s.handleEditOrder)
		r.Delete("/{orderID}", s.handleDeleteOrder)
	})

	s.router.Route("/deleted-orders", func(r chi.Router) {
		r.Get("/", s.handleListArchive)
		r.Delete("/", s.handlePurgeArchive)
		r.Post("/{orderID}", s.handleRecoverOrder)
		r.Delete("/{orderID}", s.handlePermanentlyDeleteOrder)
	})

	s.router.Route("/financial", func(r chi.Router) {
		r.Get("/", s.handleListLedger)
		r.Post("/", s.handleCreateLedger)
		r.Put("/{transactionID}", s.handleUpdateLedger)
		r.Delete("/{transactionID}", s.handleDeleteLedger)
	})

	s.router.Post("/remove-background", s.handleRemoveBackground)
	s.router.Get("/static/images/{folder}/{filename}", s.handleServeImage)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/collections", s.handleListCollections)
		r.Get("/export/{collection}", s.handleExportData)
		r.Get("/summary", s.handleSummary)
		r.Get("/audit-log", s.handleAuditLog)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
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

// requestMeta records the client address and user agent for the audit log.
// RemoteAddr has already been rewritten by TrustedRealIP.
func requestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithRequestMeta(r.Context(), core.RequestMeta{
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
