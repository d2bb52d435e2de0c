// Package metrics provides Prometheus metrics for the API and collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the dedicated Prometheus registry for the service.
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// SensorReadings counts ingested sensor readings by bin type
	SensorReadings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sensor_readings_total", Help: "Sensor readings ingested by bin type."},
		[]string{"bin_type"},
	)
	// AlertsCreated counts alerts raised by severity
	AlertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "alerts_created_total", Help: "Alerts created by severity."},
		[]string{"severity"},
	)
	// PredictionsComputed counts fill-rate predictions served
	PredictionsComputed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "predictions_computed_total", Help: "Fill-rate predictions computed."},
	)
	// RoutesOptimized counts collection routes produced by the sequencer
	RoutesOptimized = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "routes_optimized_total", Help: "Collection routes optimized."},
	)
	// WebsocketClients tracks currently connected websocket clients
	WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "websocket_clients", Help: "Currently connected websocket clients."},
	)
)

func init() {
	Registry.MustRegister(HTTPRequests)
	Registry.MustRegister(HTTPDuration)
	Registry.MustRegister(SensorReadings)
	Registry.MustRegister(AlertsCreated)
	Registry.MustRegister(PredictionsComputed)
	Registry.MustRegister(RoutesOptimized)
	Registry.MustRegister(WebsocketClients)
	// Go/process collectors on our registry
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
