package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for biometric operations.
type Metrics struct {
	Enrollments      *prometheus.CounterVec
	Verifications    *prometheus.CounterVec
	Deactivations    *prometheus.CounterVec
	Failures         *prometheus.CounterVec
	QualityScore     *prometheus.HistogramVec
	MatchScore       *prometheus.HistogramVec
	OperationLatency *prometheus.HistogramVec
}

// New registers and returns biometric collectors. Call it once per process.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Enrollments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biogate_enrollments_total",
			Help: "Total successful enrollments, labeled by modality and whether an existing template was replaced",
		}, []string{"modality", "replaced"}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biogate_verifications_total",
			Help: "Total completed verifications, labeled by modality and decision",
		}, []string{"modality", "decision"}),
		Deactivations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biogate_deactivations_total",
			Help: "Total template deactivations, labeled by modality",
		}, []string{"modality"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biogate_failures_total",
			Help: "Total failed operations, labeled by operation and error code",
		}, []string{"operation", "code"}),
		QualityScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "biogate_quality_score",
			Help:    "Distribution of sample quality scores",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"modality"}),
		MatchScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "biogate_match_score",
			Help:    "Distribution of verification similarity scores",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"modality"}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "biogate_operation_latency_seconds",
			Help:    "Latency of biometric operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementEnrollments(modality string, replaced bool) {
	label := "false"
	if replaced {
		label = "true"
	}
	m.Enrollments.WithLabelValues(modality, label).Inc()
}

func (m *Metrics) IncrementVerifications(modality string, verified bool) {
	decision := "rejected"
	if verified {
		decision = "accepted"
	}
	m.Verifications.WithLabelValues(modality, decision).Inc()
}

func (m *Metrics) IncrementDeactivations(modality string) {
	m.Deactivations.WithLabelValues(modality).Inc()
}

func (m *Metrics) IncrementFailures(operation, code string) {
	m.Failures.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) ObserveQuality(modality string, quality float64) {
	m.QualityScore.WithLabelValues(modality).Observe(quality)
}

func (m *Metrics) ObserveMatchScore(modality string, score float64) {
	m.MatchScore.WithLabelValues(modality).Observe(score)
}

func (m *Metrics) ObserveLatency(operation string, seconds float64) {
	m.OperationLatency.WithLabelValues(operation).Observe(seconds)
}
