package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "records",
		Name:      "operations_total",
		Help:      "Record operations by variant, operation and outcome.",
	}, []string{"variant", "operation", "outcome"})
	trashOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "trash",
		Name:      "operations_total",
		Help:      "Trash bin operations by item type, operation and outcome.",
	}, []string{"item_type", "operation", "outcome"})
	activityAppendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "activity",
		Name:      "append_failures_total",
		Help:      "Activity entries that could not be written.",
	})
	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published on the in-process bus.",
	}, []string{"type"})
	eventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Events dropped because a subscriber buffer was full.",
	}, []string{"type"})
	eventForwardFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "events",
		Name:      "forward_failures_total",
		Help:      "Events that could not be written to Kafka.",
	})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "backoffice",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	websocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "backoffice",
		Subsystem: "websocket",
		Name:      "clients",
		Help:      "Connected live feed clients.",
	})
)

func init() {
	prometheus.MustRegister(
		recordOperations,
		trashOperations,
		activityAppendFailures,
		eventsPublished,
		eventsDropped,
		eventForwardFailures,
		httpRequestDuration,
		websocketClients,
	)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordOperation counts a record store operation.
func RecordOperation(variant string, operation string, err error) {
	recordOperations.WithLabelValues(variant, operation, outcome(err)).Inc()
}

// TrashOperation counts a trash bin operation.
func TrashOperation(itemType string, operation string, err error) {
	trashOperations.WithLabelValues(itemType, operation, outcome(err)).Inc()
}

func RecordActivityAppendFailed() {
	activityAppendFailures.Inc()
}

func RecordEventPublished(eventType string) {
	eventsPublished.WithLabelValues(eventType).Inc()
}

func RecordEventDropped(eventType string) {
	eventsDropped.WithLabelValues(eventType).Inc()
}

func RecordEventForwardFailed() {
	eventForwardFailures.Inc()
}

func ObserveHTTPRequest(method string, route string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// SetWebsocketClients reports the current number of live feed connections.
func SetWebsocketClients(n int) {
	websocketClients.Set(float64(n))
}
