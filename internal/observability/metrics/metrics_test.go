package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveAvailability("ok")
	m.ObserveReservation("committed", 0.05)
	m.ObserveReservation("slot_taken", 0.01)
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveAvailability("ok")
	m.ObserveReservation("committed", 0.1)
}
