package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("staffplan-import")

var (
	importRowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "staffplan",
		Subsystem: "import",
		Name:      "rows_inserted_total",
		Help:      "Total number of rows committed by the workbook import broken down by table.",
	}, []string{"table"})

	importRowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "staffplan",
		Subsystem: "import",
		Name:      "rows_skipped_total",
		Help:      "Total number of workbook rows or cells the import skipped broken down by stage and reason.",
	}, []string{"stage", "reason"})

	importStages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "staffplan",
		Subsystem: "import",
		Name:      "stages_total",
		Help:      "Total number of import stages broken down by stage and outcome.",
	}, []string{"stage", "outcome"})

	importStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "staffplan",
		Subsystem: "import",
		Name:      "stage_duration_seconds",
		Help:      "Duration of import stages, including the commit.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
	}, []string{"stage"})
)

func recordStage(stage Stage, outcome string, seconds float64) {
	importStages.WithLabelValues(string(stage), outcome).Inc()
	importStageDuration.WithLabelValues(string(stage)).Observe(seconds)
}

func recordCommitted(inserted map[string][]string, skipped map[string]int, stage Stage) {
	for table, rows := range inserted {
		importRowsInserted.WithLabelValues(table).Add(float64(len(rows)))
	}
	for reason, n := range skipped {
		importRowsSkipped.WithLabelValues(string(stage), reason).Add(float64(n))
	}
}

// WriteMetrics dumps the default registry in the node-exporter textfile format.
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
