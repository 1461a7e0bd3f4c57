package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	BacktestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtests_total", Help: "Count of backtests executed"},
		[]string{"strategy"},
	)
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests served"},
		[]string{"method", "path", "status"},
	)
	TradesSimulated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "trades_simulated_total", Help: "Closed trades produced by backtests"},
	)
)

func init() {
	prometheus.MustRegister(BacktestsTotal, RequestsTotal, TradesSimulated)
}

// Handler exposes the Prometheus registry as a gin handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
