package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "plataforma"

// Registry is the global Prometheus registry for all platform metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels (value is always 1).
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// StoreOperations counts record-store operations by collection, operation
// and outcome.
var StoreOperations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_operations_total",
		Help:      "Total record store operations",
	},
	[]string{"collection", "operation", "status"},
)

// StoreOperationDuration tracks record-store operation latency. Whole-file
// read-modify-write makes this the first place to look when a disk slows down.
var StoreOperationDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Record store operation duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"collection", "operation"},
)

// AuditEntriesDropped counts audit entries that could not be persisted.
// Audit writes are best-effort, so drops are observable but non-fatal.
var AuditEntriesDropped = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_dropped_total",
		Help:      "Total audit log entries that failed to persist",
	},
)

// Init registers runtime collectors and sets build info.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
