package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/config"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/refresh"
)

// Server is the webhook HTTP server.
type Server struct {
	cfg         *config.Config
	refresher   Refresher
	logger      *slog.Logger
	version     string
	fingerprint string
	server      *http.Server
}

// New creates a webhook server over the given configuration and refresher.
func New(cfg *config.Config, refresher Refresher, logger *slog.Logger, version, fingerprint string) *Server {
	return &Server{
		cfg:         cfg,
		refresher:   refresher,
		logger:      logger,
		version:     version,
		fingerprint: fingerprint,
	}
}

// newHTTPServer builds the underlying http.Server. The refresh handler
// blocks for up to the command timeout per target, so responses must not
// carry a fixed write deadline; a WriteTimeout would sever the connection
// mid-run and the caller would never see the results JSON. Slow clients
// are bounded at the header-read stage instead.
func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Service.Listen,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails. Shutdown is graceful with a 5 second drain window.
func (s *Server) Start(ctx context.Context) error {
	s.server = s.newHTTPServer()

	s.logger.Info("webhook server starting",
		"listen", s.cfg.Service.Listen,
		"repositories", len(s.cfg.Repositories),
		"services", len(s.cfg.Services),
		"signature_verification", s.cfg.HasSecret(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// Routes configures the HTTP router.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post("/hook/refresh", s.handleRefresh)
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleInfo)

	return r
}

// loggingMiddleware logs HTTP requests. Payload bytes are never logged.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleRefresh handles the push webhook: verify, pull, restart, report.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	limited := io.LimitReader(r.Body, s.cfg.Webhook.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.cfg.Webhook.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	signature := r.Header.Get(s.cfg.Webhook.SignatureHeader)

	// A client disconnect must not abort a refresh mid-pull, so the run
	// is detached from the request's cancellation.
	result, err := s.refresher.Handle(context.WithoutCancel(r.Context()), body, signature)
	if err != nil {
		if errors.Is(err, refresh.ErrSignature) {
			s.logger.Warn("webhook signature verification failed",
				"header", s.cfg.Webhook.SignatureHeader,
				"remote_addr", r.RemoteAddr,
			)
			s.respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		s.logger.Error("refresh run failed unexpectedly", "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !result.Success {
		s.respondJSON(w, http.StatusInternalServerError, RefreshResponse{
			Message: "refresh completed with failures",
			Results: result,
		})
		return
	}

	s.respondJSON(w, http.StatusOK, RefreshResponse{
		Message: "refresh completed",
		Results: result,
	})
}

// handleHealth reports liveness and a configuration summary.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Config: HealthConfig{
			Repositories:   len(s.cfg.Repositories),
			DockerServices: len(s.cfg.Services),
			HasSecret:      s.cfg.HasSecret(),
		},
	})
}

// handleInfo serves static service information.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, InfoResponse{
		Service:           s.cfg.Service.Name,
		Version:           s.version,
		Endpoints:         []string{"POST /hook/refresh", "GET /health", "GET /"},
		ConfigFingerprint: s.fingerprint,
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
