package metrics

import "github.com/prometheus/client_golang/prometheus"

// Domain Prometheus metrics.
var (
	VersionsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driftd",
			Name:      "versions_created_total",
			Help:      "Total number of term versions created",
		},
		[]string{"derivation"}, // "root" or the derivation type
	)

	ActivitiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driftd",
			Name:      "drift_activities_total",
			Help:      "Total number of drift activity transitions",
		},
		[]string{"status"},
	)

	AnchorAttachesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftd",
			Name:      "anchor_attaches_total",
			Help:      "Total number of anchor associations created",
		},
	)

	AdjustmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftd",
			Name:      "fuzziness_adjustments_total",
			Help:      "Total number of fuzziness adjustments recorded",
		},
	)
)

var domainMetricsRegistered bool

// RegisterDomainMetrics registers the domain metrics. Must be called once from main.
func RegisterDomainMetrics() {
	if domainMetricsRegistered {
		return
	}
	prometheus.MustRegister(VersionsCreatedTotal)
	prometheus.MustRegister(ActivitiesTotal)
	prometheus.MustRegister(AnchorAttachesTotal)
	prometheus.MustRegister(AdjustmentsTotal)
	domainMetricsRegistered = true
}
