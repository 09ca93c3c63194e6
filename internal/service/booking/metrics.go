package booking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var bookingAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "roombook",
		Name:      "booking_attempts_total",
		Help:      "Booking attempts by outcome (\"ok\" or the rejection code)",
	},
	[]string{"outcome"},
)
