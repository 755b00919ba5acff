package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the appointment intake pipeline.
// All observe methods are safe on a nil receiver so callers can run without
// metrics wired.
type BookingMetrics struct {
	createdTotal         prometheus.Counter
	validationFailures   prometheus.Counter
	violationsPerFailure prometheus.Histogram
	allocationRetries    prometheus.Counter
	notificationOutcomes *prometheus.CounterVec
}

// NewBookingMetrics registers the booking collectors on reg, defaulting to
// the global registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total appointments successfully persisted",
		}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "validation_failures_total",
			Help:      "Total booking requests rejected by validation",
		}),
		violationsPerFailure: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "violations_per_failure",
			Help:      "Number of rule violations per rejected request",
			Buckets:   []float64{1, 2, 3, 5, 8},
		}),
		allocationRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "allocation_retries_total",
			Help:      "Appointment number collisions retried during allocation",
		}),
		notificationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "notifications",
			Name:      "outcomes_total",
			Help:      "Notification channel attempts by outcome",
		}, []string{"channel", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.createdTotal,
		m.validationFailures,
		m.violationsPerFailure,
		m.allocationRetries,
		m.notificationOutcomes,
	)
	return m
}

// ObserveBookingCreated counts a persisted booking.
func (m *BookingMetrics) ObserveBookingCreated() {
	if m == nil {
		return
	}
	m.createdTotal.Inc()
}

// ObserveValidationFailure counts a rejected request and its violation count.
func (m *BookingMetrics) ObserveValidationFailure(violations int) {
	if m == nil {
		return
	}
	m.validationFailures.Inc()
	m.violationsPerFailure.Observe(float64(violations))
}

// ObserveAllocationRetry counts one number collision.
func (m *BookingMetrics) ObserveAllocationRetry() {
	if m == nil {
		return
	}
	m.allocationRetries.Inc()
}

// ObserveNotification counts one channel attempt with its outcome.
func (m *BookingMetrics) ObserveNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notificationOutcomes.WithLabelValues(channel, status).Inc()
}
