package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	availabilityTotal  *prometheus.CounterVec
	reservationsTotal  *prometheus.CounterVec
	reservationLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ondara",
			Subsystem: "booking",
			Name:      "availability_requests_total",
			Help:      "Total availability calendar requests",
		}, []string{"status"}),
		reservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ondara",
			Subsystem: "booking",
			Name:      "reservations_total",
			Help:      "Total reservation attempts by outcome",
		}, []string{"outcome"}),
		reservationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ondara",
			Subsystem: "booking",
			Name:      "reservation_latency_seconds",
			Help:      "Latency of reservation processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.reservationsTotal, m.reservationLatency)
	return m
}

func (m *BookingMetrics) ObserveAvailability(status string) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveReservation(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.reservationsTotal.WithLabelValues(outcome).Inc()
	m.reservationLatency.WithLabelValues(outcome).Observe(seconds)
}
