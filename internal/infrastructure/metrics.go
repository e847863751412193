package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the HTTP surface and
// the table pipeline
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	DatasetRows     prometheus.Gauge
	DatasetColumns  prometheus.Gauge
}

// NewMetrics registers the application metrics on the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tablecli",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tablecli",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		DatasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tablecli",
			Name:      "dataset_rows",
			Help:      "Row count of the currently loaded table.",
		}),
		DatasetColumns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tablecli",
			Name:      "dataset_columns",
			Help:      "Column count of the currently loaded table.",
		}),
	}
}
