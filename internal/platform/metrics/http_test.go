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

func newRouter(m *HTTP) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), m.Middleware())
	router.GET("/api/orders/:id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFrom(c))
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))
	return router
}

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	m := NewHTTP("shop")
	router := newRouter(m)

	for _, path := range []string{"/api/orders/1", "/api/orders/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/orders/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	m := NewHTTP("shop")
	router := newRouter(m)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/1", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shop_http_requests_total")
	assert.Contains(t, rec.Body.String(), "shop_http_request_duration_seconds")
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	router := newRouter(NewHTTP("shop"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/1", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}
