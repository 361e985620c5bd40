package metrics

import (
	"sync"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for planctl
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts operator API requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planctl_http_requests_total", Help: "Total operator API requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records operator API request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "planctl_http_request_duration_seconds", Help: "Operator API request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// BackendRequests counts calls to the orchestration backend by operation and outcome
	BackendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planctl_backend_requests_total", Help: "Backend calls by operation and status."},
		[]string{"operation", "status"},
	)
	// BackendLatency tracks backend call latencies in milliseconds
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "planctl_backend_latency_ms", Help: "Backend call latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 15000}},
		[]string{"operation"},
	)

	// Dispatches counts dispatcher operations by kind and outcome (success, failure, invalid)
	Dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planctl_dispatch_total", Help: "Dispatcher operations by kind and outcome."},
		[]string{"kind", "outcome"},
	)
	// HistoryLength is the current orchestration history length
	HistoryLength = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "planctl_history_length", Help: "Orchestration runs held in history."},
	)

	// PollTicks counts polling ticks
	PollTicks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "planctl_poll_ticks_total", Help: "Background health/metrics polling ticks."},
	)
	// PollFailures counts failed background refreshes by kind
	PollFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planctl_poll_failures_total", Help: "Failed background refreshes by kind."},
		[]string{"kind"},
	)
)

// RegisterDefault registers collectors to the planctl registry.
func RegisterDefault() {
	regOnce.Do(func(){
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(BackendRequests)
		Registry.MustRegister(BackendLatency)
		Registry.MustRegister(Dispatches)
		Registry.MustRegister(HistoryLength)
		Registry.MustRegister(PollTicks)
		Registry.MustRegister(PollFailures)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
