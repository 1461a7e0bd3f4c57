package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"stock-backtest/internal/api/models"
	"stock-backtest/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// PortfolioHandler handles portfolio-preset requests
type PortfolioHandler struct {
	portfolioDir string
	log          zerolog.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(log zerolog.Logger) *PortfolioHandler {
	dir := PortfolioDir()
	if absDir, err := filepath.Abs(dir); err == nil {
		dir = absDir
	}
	log.Debug().Str("dir", dir).Msg("portfolio preset directory")
	return &PortfolioHandler{portfolioDir: dir, log: log}
}

// ListPortfolios handles GET /api/v1/portfolios
func (h *PortfolioHandler) ListPortfolios(c *gin.Context) {
	portfolios := []models.PortfolioInfo{}

	entries, err := os.ReadDir(h.portfolioDir)
	if err != nil {
		// A missing preset directory is not an error, just an empty list.
		h.log.Debug().Str("dir", h.portfolioDir).Err(err).Msg("portfolio dir unreadable")
		c.JSON(http.StatusOK, gin.H{"portfolios": portfolios})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(h.portfolioDir, entry.Name())
		info, err := h.loadPortfolioInfo(path, entry.Name())
		if err != nil {
			h.log.Warn().Str("path", path).Err(err).Msg("skipping invalid portfolio preset")
			continue
		}
		portfolios = append(portfolios, *info)
	}

	c.JSON(http.StatusOK, gin.H{"portfolios": portfolios})
}

func (h *PortfolioHandler) loadPortfolioInfo(path, filename string) (*models.PortfolioInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Portfolio config.PortfolioConfig `yaml:"portfolio"`
	}
	if err := yaml.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}

	// Preset ID is the filename without extension (e.g. "conservative.yaml" -> "conservative").
	id := strings.TrimSuffix(filename, ".yaml")
	name := wrapper.Portfolio.Name
	if name == "" {
		name = id
	}

	return &models.PortfolioInfo{
		ID:   id,
		Name: name,
		File: path,
		Specs: models.PortfolioSpecs{
			InitialCapital: wrapper.Portfolio.InitialCapital,
			SizingMethod:   wrapper.Portfolio.SizingMethod,
			MaxPositions:   wrapper.Portfolio.MaxPositions,
		},
	}, nil
}
