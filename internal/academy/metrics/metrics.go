package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "dojoledger/pkg/domain-errors"
)

// Metrics provides observability for the academy module: enrollment volume,
// submission outcomes by class, and the latency of the two ledger round-trip
// kinds.
type Metrics struct {
	StudentsEnrolled   prometheus.Counter
	SubmissionOutcomes *prometheus.CounterVec
	SubmitDuration     prometheus.Histogram
	ResolveDuration    prometheus.Histogram
}

// New creates a Metrics instance with all academy module metrics registered.
func New() *Metrics {
	return &Metrics{
		StudentsEnrolled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dojo_students_enrolled_total",
			Help: "Total number of students enrolled on the ledger",
		}),
		SubmissionOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dojo_ledger_submissions_total",
			Help: "Ledger transaction submissions by operation and outcome class",
		}, []string{"operation", "outcome"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dojo_ledger_submit_duration_seconds",
			Help:    "Duration of submit-and-confirm round trips (includes remote finality wait)",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dojo_ledger_resolve_duration_seconds",
			Help:    "Duration of object reads and event queries",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementEnrolled records a successful enrollment.
func (m *Metrics) IncrementEnrolled() {
	if m == nil {
		return
	}
	m.StudentsEnrolled.Inc()
}

// RecordSubmission records the outcome class of one submission.
func (m *Metrics) RecordSubmission(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		if code := dErrors.CodeOf(err); code != "" {
			outcome = string(code)
		} else {
			outcome = "internal_error"
		}
	}
	m.SubmissionOutcomes.WithLabelValues(operation, outcome).Inc()
}

// ObserveSubmit records the duration of a submit round trip.
func (m *Metrics) ObserveSubmit(start time.Time) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

// ObserveResolve records the duration of a read round trip.
func (m *Metrics) ObserveResolve(start time.Time) {
	if m == nil {
		return
	}
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}
