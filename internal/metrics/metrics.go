package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

var (
	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_swap_quote_requests_total",
			Help: "Total number of quote requests by result status",
		},
		[]string{"status"},
	)

	QuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_swap_quote_duration_seconds",
		Help:    "Quote request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	PathAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_swap_path_attempts_total",
			Help: "Path candidates tried, by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	RouterCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_swap_router_call_failures_total",
			Help: "Failed router read calls by router and reason",
		},
		[]string{"router", "reason"},
	)

	PriceImpact = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_swap_price_impact_percent",
		Help:    "Displayed price impact estimate in percent",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 4, 5},
	})

	// Estimate metrics
	EstimateRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_swap_estimate_requests_total",
			Help: "Total number of conservative estimates by status",
		},
		[]string{"status"},
	)

	DecimalsFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_swap_decimals_fallbacks_total",
		Help: "decimals() lookups that failed and defaulted to 18",
	})

	// Swap metrics
	SwapOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_swap_swaps_total",
			Help: "Swap attempts by shape and outcome",
		},
		[]string{"shape", "outcome"},
	)

	ApprovalsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_swap_approvals_total",
		Help: "Approval transactions submitted",
	})
)

// FailureReason maps an error onto a low-cardinality label
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, entities.ErrTimeout):
		return "timeout"
	case errors.Is(err, entities.ErrReverted):
		return "revert"
	case errors.Is(err, entities.ErrInvalidResponse):
		return "invalid_response"
	default:
		return "other"
	}
}
