package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// buildDuration tracks how long full feed builds take.
	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_build_duration_seconds",
		Help:    "Time taken to build the full feed",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 60},
	})

	// buildRows tracks the row count of the most recent full build.
	buildRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feed_build_rows",
		Help: "Number of rows in the most recent full feed build",
	})

	// serializedBytes tracks payload sizes by output format.
	serializedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_serialized_bytes_total",
		Help: "Total serialized payload bytes by format",
	}, []string{"format"})
)

// ObserveSerialized records the payload size produced for a format. Callers
// on the transport seams report here so the serializer itself stays pure.
func ObserveSerialized(format string, bytes int) {
	serializedBytes.WithLabelValues(format).Add(float64(bytes))
}
