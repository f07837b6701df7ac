// Package metrics defines and registers all custom Prometheus metrics for
// the cards API. It is the single source of truth for metric names, labels,
// and help strings. Collectors self-register with the default registry via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cards"

// TransfersTotal counts transfer attempts.
// Label:
//   - result: "ok" (committed) or "rejected" (validation or persistence failure)
var TransfersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_total",
		Help:      "Total number of card-to-card transfer attempts, by result.",
	},
	[]string{"result"},
)

// TransferAmount observes the amount of each committed transfer.
var TransferAmount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transfer_amount",
		Help:      "Amount moved by committed transfers.",
		Buckets:   prometheus.ExponentialBuckets(1, 10, 7), // 1 .. 1,000,000
	},
)

// CardsCreatedTotal counts newly issued cards.
var CardsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cards_created_total",
		Help:      "Total number of cards issued.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRotationsTotal counts successful refresh token rotations.
var TokenRotationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rotations_total",
		Help:      "Total number of successful refresh token rotations.",
	},
)

// CardsExpiredTotal counts cards marked EXPIRED by the sweep.
var CardsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cards_expired_sweep_total",
		Help:      "Total number of cards transitioned to EXPIRED by the expiry sweep.",
	},
)
