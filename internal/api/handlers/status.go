package handlers

import (
	"net/http"

	"github.com/bidwatch-kr/backend/internal/contract"
	"github.com/bidwatch-kr/backend/pkg/database"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

// StatusHandler reports database health and store freshness
type StatusHandler struct {
	db     *database.DB
	store  contract.Store
	logger *logger.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *database.DB, store contract.Store, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		store:  store,
		logger: log,
	}
}

// StatusResponse combines pool health with store freshness.
type StatusResponse struct {
	Database  *database.HealthStatus    `json:"database"`
	Freshness *contract.FreshnessReport `json:"freshness,omitempty"`
}

// Status returns database health and store freshness
// GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health, err := h.db.HealthCheck(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		respondJSON(w, http.StatusServiceUnavailable, StatusResponse{Database: health})
		return
	}

	resp := StatusResponse{Database: health}

	// Freshness is informational; a failure degrades the response, not
	// the status code.
	if report, err := h.store.Freshness(ctx); err != nil {
		h.logger.WithError(err).Warn("Store freshness probe failed")
	} else {
		resp.Freshness = report
	}

	respondJSON(w, http.StatusOK, resp)
}
