package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/things/:id", "204")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/7", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodgram_http_requests_total")
}
