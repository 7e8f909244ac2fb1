package ticketing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeDenied  = "denied"
	outcomeFailed  = "failed"
)

var (
	// TicketActions is the total number of ticket actions handled.
	TicketActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_total_actions",
			Help: "Total number of ticket actions",
		},
		[]string{"action", "outcome"},
	)

	// TicketDuration is the duration of a ticket action.
	TicketDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ticketing_action_duration",
			Help: "Duration of a ticket action",
		},
		[]string{"action"},
	)
)
