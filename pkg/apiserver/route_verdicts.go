package apiserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/credgate/credgate/pkg/classification"
	"github.com/credgate/credgate/pkg/pipeline"
	"github.com/credgate/credgate/pkg/store"
	"github.com/credgate/credgate/pkg/verdict"
)

// VerdictListResponse wraps a page of audit records.
type VerdictListResponse struct {
	Verdicts []*verdict.Verdict `json:"verdicts"`
	Count    int64              `json:"count"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// handleCheckVerdict handles POST /api/v1/verdicts
func (s *Server) handleCheckVerdict(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.URL) == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", "either text or url is required")
		return
	}

	v, err := s.decider.Decide(r.Context(), req)
	if err != nil {
		if errors.Is(err, classification.ErrUnavailable) {
			s.writeErrorResponse(w, http.StatusServiceUnavailable, "CLASSIFIER_UNAVAILABLE",
				"The classification backend is unavailable. Please try again later.")
			return
		}
		s.writeErrorResponse(w, http.StatusInternalServerError, "DECISION_ERROR", err.Error())
		return
	}

	s.writeJSONResponse(w, http.StatusOK, v)
}

// handleListVerdicts handles GET /api/v1/verdicts
func (s *Server) handleListVerdicts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || !s.store.IsEnabled() {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "STORE_DISABLED", "verdict persistence is not enabled")
		return
	}

	opts := store.ListOptions{Limit: store.DefaultListLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", "limit must be an integer")
			return
		}
		opts.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", "offset must be an integer")
			return
		}
		opts.Offset = offset
	}

	verdicts, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if verdicts == nil {
		verdicts = []*verdict.Verdict{}
	}

	s.writeJSONResponse(w, http.StatusOK, VerdictListResponse{
		Verdicts: verdicts,
		Count:    count,
		Limit:    clampedLimit(opts.Limit),
		Offset:   clampedOffset(opts.Offset),
	})
}

// handleGetVerdict handles GET /api/v1/verdicts/{id}
func (s *Server) handleGetVerdict(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || !s.store.IsEnabled() {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "STORE_DISABLED", "verdict persistence is not enabled")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", "verdict id is required")
		return
	}

	v, err := s.store.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "no verdict with id "+id)
		case errors.Is(err, store.ErrInvalidInput):
			s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		default:
			s.writeErrorResponse(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		}
		return
	}

	s.writeJSONResponse(w, http.StatusOK, v)
}

// clampedLimit mirrors the store's limit clamping so the response echoes the
// effective page size.
func clampedLimit(limit int) int {
	if limit <= 0 {
		return store.DefaultListLimit
	}
	if limit > store.MaxListLimit {
		return store.MaxListLimit
	}
	return limit
}

func clampedOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
