package handlers

import (
	"net/http"

	"stock-backtest/internal/api/models"
	"stock-backtest/internal/strategy"

	"github.com/gin-gonic/gin"
)

// StrategyHandler handles strategy-related requests
type StrategyHandler struct{}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	available := strategy.List()
	strategies := make([]models.StrategyInfo, len(available))
	for i, info := range available {
		params := make([]models.ParameterInfo, len(info.Parameters))
		for j, p := range info.Parameters {
			params[j] = models.ParameterInfo{
				Name:        p.Name,
				Description: p.Description,
				Default:     p.Default,
			}
		}
		strategies[i] = models.StrategyInfo{
			Name:        info.Name,
			Description: info.Description,
			Parameters:  params,
		}
	}

	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
