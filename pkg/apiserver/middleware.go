package apiserver

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/observability/tracing"
)

const (
	// limiterIdleTTL is how long an idle client keeps its limiter.
	limiterIdleTTL = 3 * time.Minute

	// limiterSweepInterval bounds how often idle limiters are evicted.
	limiterSweepInterval = time.Minute
)

// clientLimiter pairs a token bucket with its last use, for idle eviction.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter hands out one token bucket per client IP. Idle buckets are
// swept inline so no background goroutine is needed.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func newRateLimiter(requestsPerMinute, burst int) *rateLimiter {
	return &rateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (rl *rateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > limiterSweepInterval {
		rl.sweep(now)
	}

	c, ok := rl.clients[client]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.Allow()
}

// sweep removes limiters idle past the TTL. Caller holds rl.mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for client, c := range rl.clients {
		if now.Sub(c.lastSeen) > limiterIdleTTL {
			delete(rl.clients, client)
		}
	}
	rl.lastSweep = now
}

// rateLimitMiddleware rejects clients over their per-IP budget with 429.
// Health probes are exempt.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if !s.limiter.allow(clientIP(r)) {
			metrics.RecordRateLimited()
			s.writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests. Please slow down and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware applies the configured origin allowlist and answers OPTIONS
// preflights. Allowed origins are echoed back with Vary: Origin.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]bool)
	wildcard := false
	for _, origin := range s.cfg.GetCORSAllowedOrigins() {
		if origin == "*" {
			wildcard = true
			continue
		}
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (wildcard || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by the inner handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// tracingMiddleware joins the caller's distributed trace when W3C trace
// headers are present; without them it is a pass-through.
func (s *Server) tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.ExtractHTTPTraceContext(r.Context(), r.Header)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware emits one access log line and HTTP metrics per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := routeLabel(r.URL.Path)
		metrics.RecordHTTPRequest(r.Method, route, rec.status)
		metrics.RecordHTTPDuration(route, elapsed.Seconds())
		logging.Infof("%s %s %d %s %s", r.Method, r.URL.Path, rec.status, elapsed, clientIP(r))
	})
}

// recoveryMiddleware converts handler panics into 500 responses.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Errorf("Panic handling %s %s: %v", r.Method, r.URL.Path, rec)
				s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the caller address, honoring X-Forwarded-For from a
// fronting proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// routeLabel maps a request path to a bounded metric label.
func routeLabel(path string) string {
	const verdictPrefix = "/api/v1/verdicts/"
	if strings.HasPrefix(path, verdictPrefix) && len(path) > len(verdictPrefix) {
		return "/api/v1/verdicts/{id}"
	}
	switch path {
	case "/health", "/api/v1", "/api/v1/verdicts", "/openapi.json", "/docs":
		return path
	}
	return "other"
}
