package manifest

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "manifest",
		Name:      "fetch_total",
		Help:      "Total manifest downloads by status.",
	}, []string{"status"})

	fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "manifest",
		Name:      "fetch_duration_seconds",
		Help:      "Manifest download duration in seconds.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration)
}
