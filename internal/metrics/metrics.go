// Package metrics exposes Prometheus instrumentation for the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RecipesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_recipes_created_total",
			Help: "Total number of recipes created",
		},
	)

	ShoppingListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
	)

	ShortLinkRedirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_redirects_total",
			Help: "Short link redirects by outcome",
		},
		[]string{"result"}, // "found", "not_found"
	)
)

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
