package handlers

import (
	"net/http"
	"strconv"

	"github.com/bidwatch-kr/backend/internal/contract"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

// ContractsHandler serves the local contract store browsing endpoint
type ContractsHandler struct {
	store  contract.Store
	logger *logger.Logger
}

// NewContractsHandler creates a new contracts handler
func NewContractsHandler(store contract.Store, log *logger.Logger) *ContractsHandler {
	return &ContractsHandler{
		store:  store,
		logger: log,
	}
}

// List returns a page of deduplicated contracts
// GET /api/contracts?company=&keyword=&page=&size=
func (h *ContractsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := contract.ListQuery{
		Company: r.URL.Query().Get("company"),
		Keyword: r.URL.Query().Get("keyword"),
		Page:    queryInt(r, "page", 1),
		Size:    queryInt(r, "size", 20),
	}

	page, err := h.store.ListContracts(ctx, q)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list contracts")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve contracts")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// queryInt reads an integer query parameter with a default
func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return defaultValue
	}
	return v
}
