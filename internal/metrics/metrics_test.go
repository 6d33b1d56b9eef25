package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/orders/:id", "404")))
}

func TestBusinessCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.OrderRecorded("completed", 21)
	m.OrderStatusChanged("voided")
	m.RefundRecorded(5)
	m.RefundRecorded(2.5)
	m.CartOperation("add")
	m.CacheLookup("products", true)
	m.ListingPublished(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Orders.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Orders.WithLabelValues("voided")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Refunds))
	assert.Equal(t, 7.5, testutil.ToFloat64(m.RefundAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartOps.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("products", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingResult.WithLabelValues("failure")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderRecorded("completed", 1)
		m.RefundRecorded(1)
		m.CartOperation("add")
		m.ZReportRecorded()
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ZReportRecorded()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "pos_z_reports_total 1"))
}
