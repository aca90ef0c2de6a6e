package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	dispatchMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticd",
			Subsystem: "dispatch",
			Name:      "messages_total",
			Help:      "Processed task messages by task id and response status.",
		},
		[]string{"node", "task_id", "status"},
	)
	dispatchRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticd",
			Subsystem: "dispatch",
			Name:      "rejections_total",
			Help:      "Task messages rejected before execution, by failed check.",
		},
		[]string{"node", "check"},
	)
	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ticd",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Time from receive to send for one task message.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"node"},
	)
	commandsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticd",
			Subsystem: "commands",
			Name:      "emitted_total",
			Help:      "Command words handed to the command sink.",
		},
		[]string{"node", "kind", "success"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ticd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			dispatchMessages,
			dispatchRejections,
			dispatchDuration,
			commandsEmitted,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordDispatch(node string, taskID uint8, status string, rejection string, duration time.Duration) {
	RegisterMetrics()
	dispatchMessages.WithLabelValues(node, strconv.Itoa(int(taskID)), status).Inc()
	if rejection != "" {
		dispatchRejections.WithLabelValues(node, rejection).Inc()
	}
	dispatchDuration.WithLabelValues(node).Observe(duration.Seconds())
}

func RecordCommand(node, kind string, success bool) {
	RegisterMetrics()
	commandsEmitted.WithLabelValues(node, kind, strconv.FormatBool(success)).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
