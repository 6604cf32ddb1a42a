package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wonny/eventreport/internal/contracts"
	"github.com/wonny/eventreport/internal/s0_data/quality"
	"github.com/wonny/eventreport/pkg/logger"
)

// DefaultRankingLimit is the number of items returned without ?limit=
const DefaultRankingLimit = 20

// Ranker loads and scores the instrument table (brain.Orchestrator)
type Ranker interface {
	Rank(ctx context.Context) (*contracts.RankedSelection, *quality.Snapshot, error)
}

// RankingHandler handles ranking-related API endpoints
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	ranker Ranker
	logger *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(ranker Ranker, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		ranker: ranker,
		logger: log,
	}
}

// RankingItem represents a single ranking item
type RankingItem struct {
	Rank       int                 `json:"rank"`
	Symbol     string              `json:"symbol"`
	TotalScore contracts.NullFloat `json:"total_score"` // 비유한 점수는 null
}

// RankingResponse is the GET /api/ranking body
type RankingResponse struct {
	Total        int               `json:"total"`         // 입력 종목 수
	UniverseSize int               `json:"universe_size"` // 상위 N
	Items        []RankingItem     `json:"items"`
	Quality      *quality.Snapshot `json:"quality,omitempty"`
}

// GetRanking returns the head of the ranked universe
// GET /api/ranking?limit=20
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRankingLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	selection, snapshot, err := h.ranker.Rank(r.Context())
	if err != nil {
		status := statusFor(err)
		h.logger.WithError(err).Error("Failed to rank instruments")
		respondError(w, status, err.Error())
		return
	}

	top := selection.Top(limit)
	items := make([]RankingItem, len(top))
	for i, ri := range top {
		items[i] = RankingItem{Rank: ri.Rank, Symbol: ri.Symbol, TotalScore: contracts.Float(ri.TotalScore)}
	}

	respondJSON(w, http.StatusOK, RankingResponse{
		Total:        len(selection.All),
		UniverseSize: len(selection.Universe),
		Items:        items,
		Quality:      snapshot,
	})
}
