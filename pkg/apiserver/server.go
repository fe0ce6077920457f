// Package apiserver exposes the decision pipeline over HTTP: verdict checks,
// audit record reads, and an operational health surface.
package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/credgate/credgate/pkg/cache"
	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/pipeline"
	"github.com/credgate/credgate/pkg/store"
	"github.com/credgate/credgate/pkg/verdict"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	idleTimeout         = 60 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Decider produces one verdict per request. Implemented by pipeline.Engine.
type Decider interface {
	Decide(ctx context.Context, req pipeline.Request) (*verdict.Verdict, error)
}

// Options collects the server's dependencies.
type Options struct {
	// Decider runs the decision pipeline. Required.
	Decider Decider

	// Store backs the audit read endpoints. A nil or disabled store turns
	// them into STORE_DISABLED responses.
	Store store.VerdictStore

	// Config supplies the listen address, timeouts, rate limits and CORS
	// origins. May be nil; defaults apply.
	Config *config.Config

	// CacheStats reports lookup-cache counters on the health surface.
	CacheStats func() []cache.Stats
}

// Server is the HTTP front end for the decision pipeline.
type Server struct {
	decider    Decider
	store      store.VerdictStore
	cfg        *config.Config
	cacheStats func() []cache.Stats
	limiter    *rateLimiter
}

// New builds a Server from its dependencies. The rate limiter is constructed
// only when enabled in config.
func New(opts Options) *Server {
	s := &Server{
		decider:    opts.Decider,
		store:      opts.Store,
		cfg:        opts.Config,
		cacheStats: opts.CacheStats,
	}
	if opts.Config != nil && opts.Config.Server.RateLimit.Enabled {
		s.limiter = newRateLimiter(opts.Config.GetRequestsPerMinute(), opts.Config.GetRateLimitBurst())
	}
	return s
}

// Run serves until the listener fails or ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.GetServerAddress()
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout(),
		WriteTimeout: s.writeTimeout(),
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logging.Infof("API server listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Infof("API server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.setupRoutes()
	handler = s.tracingMiddleware(handler)
	handler = s.rateLimitMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", s.handleHealth)

	// API discovery endpoint
	mux.HandleFunc("GET /api/v1", s.handleAPIOverview)

	// OpenAPI and documentation endpoints
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPISpec)
	mux.HandleFunc("GET /docs", s.handleSwaggerUI)

	// Verdict endpoints
	mux.HandleFunc("POST /api/v1/verdicts", s.handleCheckVerdict)
	mux.HandleFunc("GET /api/v1/verdicts", s.handleListVerdicts)
	mux.HandleFunc("GET /api/v1/verdicts/{id}", s.handleGetVerdict)

	return mux
}

func (s *Server) readTimeout() time.Duration {
	if s.cfg != nil && s.cfg.Server.ReadTimeoutSeconds > 0 {
		return time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second
	}
	return defaultReadTimeout
}

func (s *Server) writeTimeout() time.Duration {
	if s.cfg != nil && s.cfg.Server.WriteTimeoutSeconds > 0 {
		return time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second
	}
	return defaultWriteTimeout
}

// Helper methods for JSON handling
func (s *Server) parseJSONRequest(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResponse := map[string]interface{}{
		"error": map[string]interface{}{
			"code":      errorCode,
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	s.writeJSONResponse(w, statusCode, errorResponse)
}
