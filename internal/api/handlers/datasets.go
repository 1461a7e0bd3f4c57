package handlers

import (
	"net/http"

	"stock-backtest/internal/api/models"
	"stock-backtest/internal/data"

	"github.com/gin-gonic/gin"
)

// ListDatasets handles GET /api/v1/datasets
func ListDatasets(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		dir = DefaultDataDir()
	}

	infos, err := data.ListDatasets(dir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "DATASETS_LIST_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	datasets := make([]models.DatasetInfo, len(infos))
	for i, info := range infos {
		datasets[i] = models.DatasetInfo{
			Symbol:    info.Symbol,
			Rows:      info.Rows,
			FirstDate: info.FirstDate,
			LastDate:  info.LastDate,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}
