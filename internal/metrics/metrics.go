package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cartcore"

// Metrics collects checkout instrumentation. A nil *Metrics is a no-op.
type Metrics struct {
	purchases        *prometheus.CounterVec
	purchaseDuration *prometheus.HistogramVec
	queryDuration    *prometheus.HistogramVec
	requestQueries   *prometheus.HistogramVec
	lowStockProducts prometheus.Gauge
}

// New registers the checkout metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	purchases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Purchase attempts by outcome.",
	}, []string{"outcome"})
	purchaseDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "purchase_duration_seconds",
		Help:      "Duration of purchase transactions in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "db_query_duration_seconds",
		Help:      "Duration of database statements in seconds.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})
	requestQueries := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_queries",
		Help:      "Database statements issued per HTTP request.",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"route"})
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "low_stock_products",
		Help:      "Products at or under the low stock threshold at the last report.",
	})
	reg.MustRegister(purchases, purchaseDuration, queryDuration, requestQueries, lowStock)
	return &Metrics{
		purchases:        purchases,
		purchaseDuration: purchaseDuration,
		queryDuration:    queryDuration,
		requestQueries:   requestQueries,
		lowStockProducts: lowStock,
	}
}

// ObservePurchase counts a purchase attempt and records its duration.
func (m *Metrics) ObservePurchase(outcome string, elapsed time.Duration) {
	if m == nil || m.purchases == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.purchases.WithLabelValues(label).Inc()
	m.purchaseDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// ObserveQuery records one database statement.
func (m *Metrics) ObserveQuery(operation string, elapsed time.Duration) {
	if m == nil || m.queryDuration == nil {
		return
	}
	m.queryDuration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
}

// ObserveRequestQueries records how many statements a request issued.
func (m *Metrics) ObserveRequestQueries(route string, count int64) {
	if m == nil || m.requestQueries == nil {
		return
	}
	m.requestQueries.WithLabelValues(normalizeLabel(route)).Observe(float64(count))
}

func (m *Metrics) SetLowStockProducts(n int) {
	if m == nil || m.lowStockProducts == nil {
		return
	}
	m.lowStockProducts.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
