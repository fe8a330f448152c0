package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/bidwatch-kr/backend/internal/g2b"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

// Searcher queries the external procurement API.
type Searcher interface {
	SearchAnnouncements(ctx context.Context, q g2b.SearchQuery) (*g2b.SearchResult, error)
}

// SearchHandler proxies 나라장터 공고 검색
type SearchHandler struct {
	client Searcher
	logger *logger.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(client Searcher, log *logger.Logger) *SearchHandler {
	return &SearchHandler{
		client: client,
		logger: log,
	}
}

// Search proxies an announcement search to the procurement API
// GET /api/search?keyword=&page=&size=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := g2b.SearchQuery{
		Keyword: r.URL.Query().Get("keyword"),
		Page:    queryInt(r, "page", 1),
		Size:    queryInt(r, "size", 20),
	}

	result, err := h.client.SearchAnnouncements(ctx, q)
	if err != nil {
		if errors.Is(err, g2b.ErrQuotaExceeded) {
			respondError(w, http.StatusTooManyRequests, "Daily search quota exceeded")
			return
		}
		h.logger.WithError(err).Error("Procurement API search failed")
		respondError(w, http.StatusBadGateway, "Procurement search unavailable")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
