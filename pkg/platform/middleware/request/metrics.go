package request

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the HTTP-level collectors. Labels use the chi route pattern,
// never the raw path.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	ResponseBytes   *prometheus.CounterVec
	InFlight        prometheus.Gauge
}

// NewMetrics registers the HTTP metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vcproof_http_request_duration_seconds",
			Help:    "Latency of HTTP endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
		ResponseBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vcproof_http_response_bytes_total",
			Help: "Bytes written in HTTP response bodies",
		}, []string{"endpoint"}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vcproof_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

func (m *Metrics) Observe(endpoint string, status, bytes int, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(durationSeconds)
	m.ResponseBytes.WithLabelValues(endpoint).Add(float64(bytes))
}
