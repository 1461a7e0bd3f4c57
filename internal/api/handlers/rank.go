package handlers

import (
	"net/http"
	"strings"

	"stock-backtest/internal/analysis"
	"stock-backtest/internal/api/models"
	"stock-backtest/internal/data"

	"github.com/gin-gonic/gin"
)

// RankHandler handles ranking-related requests
type RankHandler struct{}

// NewRankHandler creates a new rank handler
func NewRankHandler() *RankHandler {
	return &RankHandler{}
}

// RankSymbols handles GET /api/v1/rank
func (h *RankHandler) RankSymbols(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	dir := req.Dir
	if dir == "" {
		dir = DefaultDataDir()
	}

	var symbols []string
	if req.Symbols != "" {
		for _, s := range strings.Split(req.Symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	bySymbol, err := data.LoadDir(dir, symbols)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "DATA_LOAD_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	ranked := analysis.RankByOracleProfit(bySymbol)

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	ranked = ranked[:limit]

	rankings := make([]models.Ranking, len(ranked))
	for i, r := range ranked {
		rankings[i] = models.Ranking{
			Rank:          r.Rank,
			Symbol:        r.Symbol,
			Count:         r.Count,
			MinClose:      r.MinClose,
			MaxClose:      r.MaxClose,
			SpreadP95P05:  r.SpreadP95P05,
			BuyHoldReturn: r.BuyHoldReturn,
			OracleProfit:  r.OracleProfit,
		}
	}

	c.JSON(http.StatusOK, models.RankResponse{Rankings: rankings})
}
