package main

import (
	"fmt"
	"os"

	"stock-backtest/internal/api/handlers"
	"stock-backtest/internal/api/middleware"
	"stock-backtest/internal/metrics"
	"stock-backtest/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	log := util.NewLogger(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	dataDir := handlers.DefaultDataDir()
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		log.Warn().Str("dir", dataDir).Msg("data directory not found; backtests will fail until datasets exist")
	}

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	backtestHandler := handlers.NewBacktestHandler(log)
	portfolioHandler := handlers.NewPortfolioHandler(log)
	strategyHandler := handlers.NewStrategyHandler()
	rankHandler := handlers.NewRankHandler()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/backtest", backtestHandler.RunBacktest)
		api.GET("/backtest/:id/trades", backtestHandler.GetTrades)
		api.GET("/backtest/:id/equity", backtestHandler.GetEquity)
		api.POST("/backtest/compare", backtestHandler.CompareBacktests)

		api.GET("/portfolios", portfolioHandler.ListPortfolios)
		api.GET("/strategies", strategyHandler.ListStrategies)

		api.GET("/rank", rankHandler.RankSymbols)

		api.GET("/datasets", handlers.ListDatasets)
	}

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("addr", addr).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
