package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "optimalcrs"

// Metrics records CRS selection outcomes. A nil *Metrics records nothing.
type Metrics struct {
	selections *prometheus.CounterVec
	failures   *prometheus.CounterVec
	points     prometheus.Histogram
}

// New registers the selector metrics with reg. Registering twice on the
// same registry panics, as with promauto.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		selections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "selector",
			Name:      "selections_total",
			Help:      "CRS selections by resolving tier",
		}, []string{"tier"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "selector",
			Name:      "failures_total",
			Help:      "Failed conversions by cause",
		}, []string{"reason"}),
		points: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "selector",
			Name:      "points_per_conversion",
			Help:      "Number of points per successful conversion",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// Selected counts a selection resolved at tier ("country", "continent",
// "utm" or "wgs84").
func (m *Metrics) Selected(tier string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(tier).Inc()
}

// Failed counts a failed conversion.
func (m *Metrics) Failed(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

// Converted records the size of a successful conversion.
func (m *Metrics) Converted(points int) {
	if m == nil {
		return
	}
	m.points.Observe(float64(points))
}
