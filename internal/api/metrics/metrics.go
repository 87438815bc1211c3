// Package metrics defines and registers all custom Prometheus metrics for
// the MealBridge API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mealbridge"

// DonationsCreatedTotal counts newly created donations.
// Label:
//   - type: the food category (e.g. "bakery", "cooked meal")
var DonationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donations_created_total",
		Help:      "Total number of donations created, by food type.",
	},
	[]string{"type"},
)

// ReservationsTotal counts reservation attempts.
// Label:
//   - result: "won" (reservation succeeded), "conflict" (donation no longer
//     available) or "not_found"
var ReservationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_total",
		Help:      "Total number of reservation attempts, by outcome.",
	},
	[]string{"result"},
)

// ListDuration measures how long the donation listing path takes end-to-end.
var ListDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "donation_list_duration_seconds",
		Help:      "Duration of donation list queries including donor expansion.",
		Buckets:   prometheus.DefBuckets,
	},
)
