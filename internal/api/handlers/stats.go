package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bidwatch-kr/backend/internal/stats"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

// StatsService computes batch company statistics.
type StatsService interface {
	BatchStats(ctx context.Context, q stats.Query) ([]stats.CompanyStats, error)
}

// StatsHandler handles the company analysis endpoint
// ⭐ SSOT: 수주/매출 분석 API는 이 핸들러에서만
type StatsHandler struct {
	service StatsService
	logger  *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service StatsService, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  log,
	}
}

// CompanyStatsResponse wraps the per-company results in request order.
type CompanyStatsResponse struct {
	Companies []stats.CompanyStats `json:"companies"`
}

// CompanyStats computes order/revenue statistics for the requested companies
// POST /api/company-stats
func (h *StatsHandler) CompanyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var query stats.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results, err := h.service.BatchStats(ctx, query)
	if err != nil {
		// The engine folds per-company store failures into the result
		// entries, so an error here means the request was rejected before
		// any per-company work began.
		h.logger.WithError(err).Warn("Company stats request rejected")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, CompanyStatsResponse{Companies: results})
}

// Helper functions shared by the handlers in this package

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
