package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/metrics"
)

// SafetyFactor discounts a best-case estimate by path length
type SafetyFactor struct {
	StartBps uint64
	StepBps  uint64
	FloorBps uint64
}

// DefaultSafetyFactor is 99.5% for a single hop, minus 0.5% per extra path
// entry, never below 98%.
var DefaultSafetyFactor = SafetyFactor{StartBps: 9950, StepBps: 50, FloorBps: 9800}

// Bps returns the factor for a path of pathLen entries
func (f SafetyFactor) Bps(pathLen int) uint64 {
	extra := uint64(0)
	if pathLen > 2 {
		extra = uint64(pathLen - 2)
	}
	discount := extra * f.StepBps
	if discount >= f.StartBps || f.StartBps-discount < f.FloorBps {
		return f.FloorBps
	}
	return f.StartBps - discount
}

// Estimator advertises a cautious output across every router in the registry
type Estimator struct {
	quoters []RouterQuoter
	safety  SafetyFactor
	logger  zerolog.Logger
}

func NewEstimator(quoters []RouterQuoter, safety SafetyFactor, logger zerolog.Logger) *Estimator {
	return &Estimator{
		quoters: quoters,
		safety:  safety,
		logger:  logger,
	}
}

type routerOutput struct {
	router entities.Router
	amount *big.Int
	err    error
}

// ConservativeEstimate queries all routers concurrently and discounts the
// best positive output. A failing or hanging router only loses its own slot.
// When every router fails the result is Degraded with amountIn / 3.
func (e *Estimator) ConservativeEstimate(ctx context.Context, path entities.Path, amountIn *big.Int) entities.Estimate {
	est := e.estimate(ctx, path, amountIn)
	metrics.EstimateRequests.WithLabelValues(string(est.Status)).Inc()
	return est
}

func (e *Estimator) estimate(ctx context.Context, path entities.Path, amountIn *big.Int) entities.Estimate {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return entities.Estimate{
			Status:       entities.QuoteNotFound,
			OutputAmount: big.NewInt(0),
			Reason:       "amount must be positive",
		}
	}
	if err := path.Validate(); err != nil {
		return entities.Estimate{
			Status:       entities.QuoteNotFound,
			OutputAmount: big.NewInt(0),
			Reason:       err.Error(),
		}
	}

	results := make([]routerOutput, len(e.quoters))
	var wg sync.WaitGroup

	for i, q := range e.quoters {
		wg.Add(1)
		go func(idx int, q RouterQuoter) {
			defer wg.Done()
			out := routerOutput{router: q.Router()}
			amounts, err := q.GetAmountsOut(ctx, amountIn, path)
			switch {
			case err != nil:
				out.err = err
			case len(amounts) == 0:
				out.err = errEmptyResult
			default:
				out.amount = amounts[len(amounts)-1]
			}
			results[idx] = out
		}(i, q)
	}
	wg.Wait()

	var best *routerOutput
	for i := range results {
		r := &results[i]
		if r.err != nil {
			metrics.RouterCallFailures.WithLabelValues(r.router.Address.Hex(), metrics.FailureReason(r.err)).Inc()
			e.logger.Debug().
				Str("router", r.router.String()).
				Str("path", path.String()).
				Err(r.err).
				Msg("router estimate failed")
			continue
		}
		if r.amount.Sign() <= 0 {
			continue
		}
		if best == nil || r.amount.Cmp(best.amount) > 0 {
			best = r
		}
	}

	if best == nil {
		e.logger.Warn().
			Str("path", path.String()).
			Int("routers", len(e.quoters)).
			Msg("all routers failed, returning conservative floor")
		return entities.Estimate{
			Status:       entities.QuoteDegraded,
			OutputAmount: new(big.Int).Div(amountIn, big.NewInt(3)),
			Reason:       fmt.Sprintf("estimate unavailable from %d routers, showing conservative floor", len(e.quoters)),
		}
	}

	bps := e.safety.Bps(len(path))
	return entities.Estimate{
		Status:        entities.QuoteFound,
		OutputAmount:  entities.ApplyBps(best.amount, bps),
		SafetyFactor:  float64(bps) / entities.BpsDenominator,
		RouterAddress: best.router.Address,
	}
}
