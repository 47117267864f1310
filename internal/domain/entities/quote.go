package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Quote is the best realizable output found for one request.
// A quote is only meaningful for the deadline window used when it is executed.
type Quote struct {
	AmountIn           *big.Int       `json:"amountIn"`
	OutputAmount       *big.Int       `json:"outputAmount"`
	Path               Path           `json:"path"`
	RouterAddress      common.Address `json:"routerAddress"`
	PriceImpactPercent float64        `json:"priceImpactPercent"`
	ExecutionPrice     float64        `json:"executionPrice"`
	RouteDescription   string         `json:"routeDescription"`
	SlippageBps        uint64         `json:"slippageBps"`
	MinAmountOut       *big.Int       `json:"minAmountOut,omitempty"`
	InputDecimals      uint8          `json:"inputDecimals"`
	OutputDecimals     uint8          `json:"outputDecimals"`
}

// QuoteStatus tags the outcome of a quote or estimate
type QuoteStatus string

const (
	QuoteFound    QuoteStatus = "found"
	QuoteNotFound QuoteStatus = "not_found"
	QuoteDegraded QuoteStatus = "degraded"
)

// QuoteResult is Found(Quote) | NotFound | Degraded(Quote, reason).
// Quote is always non-nil so callers can render a zero quote for NotFound.
type QuoteResult struct {
	Status QuoteStatus `json:"status"`
	Quote  *Quote      `json:"quote"`
	Reason string      `json:"reason,omitempty"`
}

func Found(q *Quote) QuoteResult {
	return QuoteResult{Status: QuoteFound, Quote: q}
}

// NotFound returns a zero-output quote for amountIn
func NotFound(amountIn *big.Int, reason string) QuoteResult {
	if amountIn == nil {
		amountIn = big.NewInt(0)
	}
	return QuoteResult{
		Status: QuoteNotFound,
		Quote: &Quote{
			AmountIn:     amountIn,
			OutputAmount: big.NewInt(0),
		},
		Reason: reason,
	}
}

func Degraded(q *Quote, reason string) QuoteResult {
	return QuoteResult{Status: QuoteDegraded, Quote: q, Reason: reason}
}

func (r QuoteResult) IsFound() bool {
	return r.Status == QuoteFound
}

// OutputAmountString renders the output in smallest units, "0" when nothing was found
func (r QuoteResult) OutputAmountString() string {
	if r.Quote == nil || r.Quote.OutputAmount == nil {
		return "0"
	}
	return r.Quote.OutputAmount.String()
}

// Estimate is the result of a conservative cross-router estimate
type Estimate struct {
	Status        QuoteStatus    `json:"status"`
	OutputAmount  *big.Int       `json:"outputAmount"`
	SafetyFactor  float64        `json:"safetyFactor"`
	RouterAddress common.Address `json:"routerAddress"`
	Reason        string         `json:"reason,omitempty"`
}
