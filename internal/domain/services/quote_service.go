package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	ethclient "github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
	"github.com/bimakw/pulse-swap/internal/metrics"
)

var errEmptyResult = fmt.Errorf("%w: empty amounts", entities.ErrInvalidResponse)

// RouterQuoter reads getAmountsOut from one router
type RouterQuoter interface {
	Router() entities.Router
	GetAmountsOut(ctx context.Context, amountIn *big.Int, path entities.Path) ([]*big.Int, error)
}

// QuoteRequest is what the front-end collects from the user
type QuoteRequest struct {
	FromToken   entities.Token
	ToToken     entities.Token
	Amount      string // human units
	SlippageBps uint64
}

// QuoteConfig carries the immutable settings of a QuoteService
type QuoteConfig struct {
	WrappedNative common.Address
	QuoteTimeout  time.Duration
	Impact        PriceImpactModel
}

// QuoteService finds the best realizable output for a swap. It never returns
// an error: every failure degrades to a NotFound result the UI can render.
type QuoteService struct {
	registry *entities.RouterRegistry
	quoters  map[common.Address]RouterQuoter
	decimals *DecimalResolver
	paths    *PathGenerator
	cfg      QuoteConfig
	logger   zerolog.Logger
}

// NewQuoteService wires a quote service. Every registry router needs a quoter.
func NewQuoteService(registry *entities.RouterRegistry, quoters []RouterQuoter, decimals *DecimalResolver, paths *PathGenerator, cfg QuoteConfig, logger zerolog.Logger) (*QuoteService, error) {
	byAddr := make(map[common.Address]RouterQuoter, len(quoters))
	for _, q := range quoters {
		byAddr[q.Router().Address] = q
	}
	for _, r := range registry.All() {
		if _, ok := byAddr[r.Address]; !ok {
			return nil, fmt.Errorf("no quoter for router %s", r)
		}
	}

	return &QuoteService{
		registry: registry,
		quoters:  byAddr,
		decimals: decimals,
		paths:    paths,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

type preparedQuote struct {
	from, to      common.Address
	decIn, decOut uint8
	amountIn      *big.Int
	candidates    []Candidate
}

// prepare validates the request. It returns a NotFound result instead of
// preparedQuote when there is nothing to quote.
func (s *QuoteService) prepare(ctx context.Context, req QuoteRequest) (*preparedQuote, *entities.QuoteResult) {
	for _, t := range []entities.Token{req.FromToken, req.ToToken} {
		if err := ethclient.ValidateTokenAddress(t.Address); err != nil {
			res := entities.NotFound(nil, err.Error())
			return nil, &res
		}
	}

	from := req.FromToken.RoutingAddress(s.cfg.WrappedNative)
	to := req.ToToken.RoutingAddress(s.cfg.WrappedNative)
	if from == to {
		res := entities.NotFound(nil, "identical tokens")
		return nil, &res
	}

	p := &preparedQuote{from: from, to: to}
	p.decIn = s.decimals.Resolve(ctx, req.FromToken)
	p.decOut = s.decimals.Resolve(ctx, req.ToToken)

	amountIn, err := entities.ParseUnits(req.Amount, p.decIn)
	if err != nil || amountIn.Sign() == 0 {
		res := entities.NotFound(amountIn, "amount must be a positive number")
		return nil, &res
	}
	p.amountIn = amountIn
	p.candidates = s.paths.Candidates(from, to)
	return p, nil
}

// GetSwapQuote walks the candidate paths against the primary router and
// returns the first realizable one.
func (s *QuoteService) GetSwapQuote(ctx context.Context, req QuoteRequest) entities.QuoteResult {
	start := time.Now()
	result := s.getSwapQuote(ctx, req)
	metrics.QuoteDuration.Observe(time.Since(start).Seconds())
	metrics.QuoteRequests.WithLabelValues(string(result.Status)).Inc()
	return result
}

func (s *QuoteService) getSwapQuote(ctx context.Context, req QuoteRequest) entities.QuoteResult {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QuoteTimeout)
	defer cancel()

	p, early := s.prepare(ctx, req)
	if early != nil {
		return *early
	}

	quoter := s.quoters[s.registry.Primary().Address]
	q, attempts, ok := s.walk(ctx, quoter, p)
	if !ok {
		s.logger.Info().
			Str("from", p.from.Hex()).
			Str("to", p.to.Hex()).
			Int("candidates", len(p.candidates)).
			Msg("no route found")
		return entities.NotFound(p.amountIn, describeAttempts(attempts))
	}

	s.finish(q, p, req.SlippageBps)
	return entities.Found(q)
}

// CompareRouters runs the same path walk on every registered router
// concurrently and keeps the highest output. Ties go to registry order.
func (s *QuoteService) CompareRouters(ctx context.Context, req QuoteRequest) entities.QuoteResult {
	start := time.Now()
	result := s.compareRouters(ctx, req)
	metrics.QuoteDuration.Observe(time.Since(start).Seconds())
	metrics.QuoteRequests.WithLabelValues(string(result.Status)).Inc()
	return result
}

func (s *QuoteService) compareRouters(ctx context.Context, req QuoteRequest) entities.QuoteResult {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QuoteTimeout)
	defer cancel()

	p, early := s.prepare(ctx, req)
	if early != nil {
		return *early
	}

	routers := s.registry.All()
	quotes := make([]*entities.Quote, len(routers))
	failures := make([][]Attempt, len(routers))
	var wg sync.WaitGroup

	for i, r := range routers {
		wg.Add(1)
		go func(idx int, quoter RouterQuoter) {
			defer wg.Done()
			q, attempts, ok := s.walk(ctx, quoter, p)
			failures[idx] = attempts
			if ok {
				quotes[idx] = q
			}
		}(i, s.quoters[r.Address])
	}
	wg.Wait()

	var best *entities.Quote
	for _, q := range quotes {
		if q == nil {
			continue
		}
		if best == nil || q.OutputAmount.Cmp(best.OutputAmount) > 0 {
			best = q
		}
	}
	if best == nil {
		var all []Attempt
		for _, f := range failures {
			all = append(all, f...)
		}
		return entities.NotFound(p.amountIn, describeAttempts(all))
	}

	s.finish(best, p, req.SlippageBps)
	return entities.Found(best)
}

func (s *QuoteService) walk(ctx context.Context, quoter RouterQuoter, p *preparedQuote) (*entities.Quote, []Attempt, bool) {
	router := quoter.Router()
	c, amounts, attempts, ok := FirstSuccess(ctx, p.candidates, func(ctx context.Context, c Candidate) ([]*big.Int, error) {
		amounts, err := quoter.GetAmountsOut(ctx, p.amountIn, c.Path)
		if err != nil {
			metrics.PathAttempts.WithLabelValues(c.Strategy, "failed").Inc()
			metrics.RouterCallFailures.WithLabelValues(router.Address.Hex(), metrics.FailureReason(err)).Inc()
			s.logger.Debug().
				Str("router", router.String()).
				Str("strategy", c.Strategy).
				Str("path", c.Path.String()).
				Err(err).
				Msg("path candidate failed")
			return nil, err
		}
		metrics.PathAttempts.WithLabelValues(c.Strategy, "ok").Inc()
		return amounts, nil
	})
	if !ok {
		return nil, attempts, false
	}

	return &entities.Quote{
		AmountIn:         p.amountIn,
		OutputAmount:     amounts[len(amounts)-1],
		Path:             c.Path,
		RouterAddress:    router.Address,
		RouteDescription: fmt.Sprintf("%s (%s router)", c.Description, router.Version),
	}, attempts, true
}

// finish fills in the display metrics and the slippage-bounded minimum
func (s *QuoteService) finish(q *entities.Quote, p *preparedQuote, slippageBps uint64) {
	in := entities.ToFloat(p.amountIn, p.decIn)
	out := entities.ToFloat(q.OutputAmount, p.decOut)
	if in > 0 {
		q.ExecutionPrice = out / in
	}
	q.PriceImpactPercent = s.cfg.Impact.Estimate(in, q.ExecutionPrice)
	metrics.PriceImpact.Observe(q.PriceImpactPercent)

	q.InputDecimals, q.OutputDecimals = p.decIn, p.decOut
	q.SlippageBps = slippageBps
	minOut, err := entities.MinAmountOut(q.OutputAmount, slippageBps)
	if err != nil {
		s.logger.Debug().
			Str("output", q.OutputAmount.String()).
			Uint64("slippage_bps", slippageBps).
			Err(err).
			Msg("min amount out unavailable")
		return
	}
	q.MinAmountOut = minOut
}

func describeAttempts(attempts []Attempt) string {
	if len(attempts) == 0 {
		return "no candidate paths"
	}
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		reason := "failed"
		switch {
		case errors.Is(a.Err, entities.ErrTimeout):
			reason = "timeout"
		case errors.Is(a.Err, entities.ErrReverted):
			reason = "reverted"
		case errors.Is(a.Err, entities.ErrInvalidResponse):
			reason = "invalid response"
		}
		parts = append(parts, a.Candidate.Strategy+": "+reason)
	}
	return "no route found (" + strings.Join(parts, ", ") + ")"
}
