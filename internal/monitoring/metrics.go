package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Commands sent to the editor socket.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealmcp_commands_total",
			Help: "Total number of commands sent to the Unreal editor",
		},
		[]string{"command", "outcome"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unrealmcp_command_duration_seconds",
			Help:    "Round-trip latency of Unreal commands in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"command"},
	)

	CommandRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealmcp_command_retry_attempts_total",
			Help: "Total number of dial retries against the editor socket",
		},
		[]string{"command"},
	)

	ResponseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unrealmcp_response_bytes",
			Help:    "Size of Unreal response documents",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"command"},
	)

	// Scenario runs.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealmcp_runs_total",
			Help: "Total number of scenario runs by final status",
		},
		[]string{"scenario", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unrealmcp_run_duration_seconds",
			Help:    "Scenario run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"scenario"},
	)

	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealmcp_steps_total",
			Help: "Total number of scenario steps by status",
		},
		[]string{"command", "status"},
	)

	// Run-history storage.
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealmcp_storage_operations_total",
			Help: "Total number of storage backend operations",
		},
		[]string{"backend", "operation", "outcome"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unrealmcp_storage_operation_duration_seconds",
			Help:    "Storage backend operation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 1},
		},
		[]string{"backend", "operation"},
	)

	// HTTP bridge.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealmcp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unrealmcp_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unrealmcp_http_inflight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealmcp_ratelimited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	// UnrealReachable is 1 while the editor socket accepts connections.
	UnrealReachable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unrealmcp_unreal_reachable",
			Help: "Whether the last background probe reached the Unreal editor socket",
		},
	)

	// MCP tools.
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unrealmcp_tool_calls_total",
			Help: "Total number of MCP tool invocations",
		},
		[]string{"tool", "outcome"},
	)
)

// Outcome returns the "ok"/"error" label for err.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// StatusClass groups HTTP status codes as 2xx/4xx/5xx.
func StatusClass(status int) string {
	if status <= 0 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// RecordCommand tracks one editor command exchange. outcome is "ok" or the
// error kind label.
func RecordCommand(command, outcome string, duration time.Duration, responseBytes int) {
	CommandsTotal.WithLabelValues(command, outcome).Inc()
	CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
	if responseBytes > 0 {
		ResponseBytes.WithLabelValues(command).Observe(float64(responseBytes))
	}
}

// RecordStorageOperation tracks a storage backend operation.
func RecordStorageOperation(backend, operation string, duration time.Duration, err error) {
	StorageOperationsTotal.WithLabelValues(backend, operation, Outcome(err)).Inc()
	StorageOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest tracks a completed bridge request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	class := StatusClass(status)
	HTTPRequestsTotal.WithLabelValues(method, path, class).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, class).Observe(duration.Seconds())
}
