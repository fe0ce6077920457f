package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/credgate/credgate/pkg/cache"
	"github.com/credgate/credgate/pkg/observability/metrics"
)

// healthCheckTimeout bounds the store connectivity probe.
const healthCheckTimeout = 2 * time.Second

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status     string                  `json:"status"`
	Service    string                  `json:"service"`
	Classifier string                  `json:"classifier"`
	Store      StoreHealth             `json:"store"`
	Caches     []cache.Stats           `json:"caches,omitempty"`
	Decisions  metrics.RollingSnapshot `json:"decisions"`
}

// StoreHealth summarizes the audit store's state.
type StoreHealth struct {
	Backend string `json:"backend"`
	Enabled bool   `json:"enabled"`
	Healthy bool   `json:"healthy"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     "healthy",
		Service:    "credgate",
		Classifier: s.cfg.GetClassifierBackend(),
		Store:      s.storeHealth(r.Context()),
		Decisions:  metrics.SnapshotDecisions(5*time.Minute, "5m"),
	}
	if s.cacheStats != nil {
		resp.Caches = s.cacheStats()
	}

	s.writeJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) storeHealth(ctx context.Context) StoreHealth {
	health := StoreHealth{Backend: s.cfg.GetStoreBackend()}
	if s.store == nil || !s.store.IsEnabled() {
		return health
	}
	health.Enabled = true

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	health.Healthy = s.store.CheckConnection(checkCtx) == nil
	return health
}
