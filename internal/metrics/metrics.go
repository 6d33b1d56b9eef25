package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos"

// Metrics holds the service collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	Orders        *prometheus.CounterVec
	OrderAmount   prometheus.Histogram
	Refunds       prometheus.Counter
	RefundAmount  prometheus.Counter
	CartOps       *prometheus.CounterVec
	ZReports      prometheus.Counter
	CacheLookups  *prometheus.CounterVec
	ListingResult *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Orders by resulting status.",
		}, []string{"status"}),
		OrderAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_amount",
			Help:      "Order totals in store currency.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
		Refunds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Refunds issued.",
		}),
		RefundAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refund_amount_total",
			Help:      "Sum of refunded amounts.",
		}),
		CartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Cart operations by kind.",
		}, []string{"op"}),
		ZReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "z_reports_total",
			Help:      "Z-reports generated.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Catalog cache lookups by key and result.",
		}, []string{"key", "result"}),
		ListingResult: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_publish_total",
			Help:      "Listing publish attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.Requests, m.LatencyMS,
		m.Orders, m.OrderAmount, m.Refunds, m.RefundAmount,
		m.CartOps, m.ZReports, m.CacheLookups, m.ListingResult,
	)
	return m
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}

func (m *Metrics) OrderRecorded(status string, amount float64) {
	if m == nil {
		return
	}
	m.Orders.WithLabelValues(status).Inc()
	m.OrderAmount.Observe(amount)
}

func (m *Metrics) OrderStatusChanged(status string) {
	if m == nil {
		return
	}
	m.Orders.WithLabelValues(status).Inc()
}

func (m *Metrics) RefundRecorded(amount float64) {
	if m == nil {
		return
	}
	m.Refunds.Inc()
	m.RefundAmount.Add(amount)
}

func (m *Metrics) CartOperation(op string) {
	if m == nil {
		return
	}
	m.CartOps.WithLabelValues(op).Inc()
}

func (m *Metrics) ZReportRecorded() {
	if m == nil {
		return
	}
	m.ZReports.Inc()
}

func (m *Metrics) CacheLookup(key string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(key, result).Inc()
}

func (m *Metrics) ListingPublished(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.ListingResult.WithLabelValues(result).Inc()
}

// Handler serves the collectors registered with g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
