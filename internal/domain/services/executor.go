package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/infrastructure/dex"
	ethclient "github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
	"github.com/bimakw/pulse-swap/internal/metrics"
)

// Transactor signs, submits and waits for transactions
type Transactor interface {
	From() common.Address
	Send(ctx context.Context, to common.Address, value *big.Int, data []byte) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// AllowanceReader reads ERC20 allowances
type AllowanceReader interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// ExecutorConfig carries the immutable settings of a SwapExecutor
type ExecutorConfig struct {
	WrappedNative  common.Address
	DeadlineWindow time.Duration
	ReceiptTimeout time.Duration
}

// SwapExecutor runs one swap attempt: optional approval, then the router call.
// Unlike quoting, every failure is returned to the caller as a *entities.SwapError.
type SwapExecutor struct {
	registry   *entities.RouterRegistry
	allowances AllowanceReader
	tx         Transactor
	decimals   *DecimalResolver
	cfg        ExecutorConfig
	now        func() time.Time
	logger     zerolog.Logger
}

func NewSwapExecutor(registry *entities.RouterRegistry, allowances AllowanceReader, tx Transactor, decimals *DecimalResolver, cfg ExecutorConfig, logger zerolog.Logger) *SwapExecutor {
	if cfg.DeadlineWindow <= 0 {
		cfg.DeadlineWindow = 20 * time.Minute
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = 3 * time.Minute
	}
	return &SwapExecutor{
		registry:   registry,
		allowances: allowances,
		tx:         tx,
		decimals:   decimals,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger,
	}
}

type swapRun struct {
	result *entities.SwapResult
}

func (r *swapRun) enter(s entities.SwapState) {
	r.result.State = s
	r.result.Transitions = append(r.result.Transitions, s)
}

// Execute submits the swap described by intent at the rate of quote. The
// returned result is non-nil and records every state the attempt went through,
// including on failure.
func (e *SwapExecutor) Execute(ctx context.Context, intent entities.SwapIntent, quote *entities.Quote) (*entities.SwapResult, error) {
	shape := entities.ShapeOf(intent.FromToken, intent.ToToken)
	run := &swapRun{result: &entities.SwapResult{Shape: shape.String()}}
	run.enter(entities.StateIdle)

	err := e.execute(ctx, run, shape, intent, quote)
	outcome := "confirmed"
	if err != nil {
		run.enter(entities.StateFailed)
		outcome = string(entities.ErrorKind(err))
		e.logger.Error().
			Str("shape", shape.String()).
			Str("router", run.result.Router.Hex()).
			Err(err).
			Msg("swap failed")
	} else {
		e.logger.Info().
			Str("shape", shape.String()).
			Str("tx", run.result.TxHash.Hex()).
			Uint64("block", run.result.BlockNumber).
			Msg("swap confirmed")
	}
	metrics.SwapOutcomes.WithLabelValues(shape.String(), outcome).Inc()
	return run.result, err
}

func (e *SwapExecutor) execute(ctx context.Context, run *swapRun, shape entities.SwapShape, intent entities.SwapIntent, quote *entities.Quote) error {
	if shape == entities.ShapeInvalid {
		return entities.NewSwapError(entities.KindInvalidSwap, "validate", errors.New("native to native swap has no router entry point"))
	}
	for _, t := range []entities.Token{intent.FromToken, intent.ToToken} {
		if err := ethclient.ValidateTokenAddress(t.Address); err != nil {
			return entities.NewSwapError(entities.KindInvalidSwap, "validate", err)
		}
	}
	if intent.SlippageBps >= entities.BpsDenominator {
		return entities.NewSwapError(entities.KindInvalidSwap, "validate", fmt.Errorf("slippage %d bps must be below 100%%", intent.SlippageBps))
	}
	if quote == nil || quote.OutputAmount == nil || quote.OutputAmount.Sign() <= 0 || len(quote.Path) == 0 {
		return entities.NewSwapError(entities.KindNoRoute, "validate", errors.New("quote has no output"))
	}
	if err := e.checkPath(intent, quote.Path); err != nil {
		return entities.NewSwapError(entities.KindInvalidSwap, "validate", err)
	}
	router, ok := e.registry.Lookup(quote.RouterAddress)
	if !ok {
		return entities.NewSwapError(entities.KindInvalidSwap, "validate", fmt.Errorf("router %s is not registered", quote.RouterAddress.Hex()))
	}

	amountIn, err := e.quotedAmountIn(ctx, intent, quote)
	if err != nil {
		return err
	}
	minOut, err := entities.MinAmountOut(quote.OutputAmount, intent.SlippageBps)
	if err != nil {
		return entities.NewSwapError(entities.KindInvalidSwap, "validate", err)
	}

	recipient := intent.UserAddress
	if recipient == (common.Address{}) {
		recipient = e.tx.From()
	}
	deadline := intent.Deadline
	if deadline == 0 {
		deadline = e.now().Add(e.cfg.DeadlineWindow).Unix()
	}

	res := run.result
	res.Router = router.Address
	res.AmountIn = amountIn
	res.MinAmountOut = minOut
	res.Deadline = deadline

	if shape == entities.ShapeNativeToToken {
		run.enter(entities.StateApprovalSkipped)
	} else if err := e.ensureAllowance(ctx, run, common.HexToAddress(intent.FromToken.Address), router.Address, amountIn); err != nil {
		return err
	}

	data, err := dex.PackSwap(shape, amountIn, minOut, quote.Path, recipient, deadline)
	if err != nil {
		return entities.NewSwapError(entities.KindInvalidSwap, "pack", err)
	}
	value := big.NewInt(0)
	if shape == entities.ShapeNativeToToken {
		value = amountIn
	}

	hash, err := e.tx.Send(ctx, router.Address, value, data)
	if err != nil {
		return classifySwapError("swap", err)
	}
	res.TxHash = hash
	run.enter(entities.StateSubmitted)
	e.logger.Info().
		Str("router", router.String()).
		Str("tx", hash.Hex()).
		Str("path", quote.Path.String()).
		Str("min_out", minOut.String()).
		Msg("swap submitted")

	receipt, err := e.wait(ctx, hash)
	if err != nil {
		return classifySwapError("swap", err)
	}
	if receipt.BlockNumber != nil {
		res.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		if e.now().Unix() > deadline {
			return entities.NewSwapError(entities.KindDeadlineExceeded, "swap", fmt.Errorf("transaction %s reverted after deadline", hash.Hex()))
		}
		return entities.NewSwapError(entities.KindExecutionFailed, "swap", fmt.Errorf("transaction %s reverted", hash.Hex()))
	}

	run.enter(entities.StateConfirmed)
	return nil
}

// quotedAmountIn returns the input amount the quote was priced for, after
// checking that the intent asks for exactly that amount. Decimals are read
// strictly here: a guessed precision would change the amount sent on chain.
func (e *SwapExecutor) quotedAmountIn(ctx context.Context, intent entities.SwapIntent, quote *entities.Quote) (*big.Int, error) {
	if quote.AmountIn == nil || quote.AmountIn.Sign() <= 0 {
		return nil, entities.NewSwapError(entities.KindInvalidSwap, "validate", errors.New("quote has no input amount"))
	}
	decimals, err := e.decimals.Lookup(ctx, intent.FromToken)
	if err != nil {
		return nil, classifySwapError("decimals", err)
	}
	amountIn, err := entities.ParseUnits(intent.AmountIn, decimals)
	if err != nil || amountIn.Sign() == 0 {
		return nil, entities.NewSwapError(entities.KindInvalidSwap, "validate", fmt.Errorf("%w: %q", entities.ErrInvalidAmount, intent.AmountIn))
	}
	if amountIn.Cmp(quote.AmountIn) != 0 {
		return nil, entities.NewSwapError(entities.KindInvalidSwap, "validate",
			fmt.Errorf("amount %s does not match quoted input %s", amountIn, quote.AmountIn))
	}
	return new(big.Int).Set(quote.AmountIn), nil
}

// checkPath makes sure the quoted path starts and ends at the intent's tokens
func (e *SwapExecutor) checkPath(intent entities.SwapIntent, path entities.Path) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if path.Input() != intent.FromToken.RoutingAddress(e.cfg.WrappedNative) ||
		path.Output() != intent.ToToken.RoutingAddress(e.cfg.WrappedNative) {
		return fmt.Errorf("%w: quoted path %s does not match swap tokens", entities.ErrInvalidPath, path)
	}
	return nil
}

// ensureAllowance approves the router for an unbounded amount when the current
// allowance does not cover amountIn, and waits for the approval to be mined.
func (e *SwapExecutor) ensureAllowance(ctx context.Context, run *swapRun, token, spender common.Address, amountIn *big.Int) error {
	owner := e.tx.From()
	allowance, err := e.allowances.Allowance(ctx, token, owner, spender)
	if err != nil {
		return classifySwapError("allowance", err)
	}
	if allowance.Cmp(amountIn) >= 0 {
		run.enter(entities.StateApprovalSkipped)
		return nil
	}

	run.enter(entities.StateApproving)
	data, err := dex.PackApprove(spender, entities.MaxUint256())
	if err != nil {
		return entities.NewSwapError(entities.KindInvalidSwap, "approve", err)
	}
	hash, err := e.tx.Send(ctx, token, big.NewInt(0), data)
	if err != nil {
		return classifySwapError("approve", err)
	}
	run.result.ApprovalTxHash = &hash
	metrics.ApprovalsSent.Inc()
	e.logger.Info().
		Str("token", token.Hex()).
		Str("spender", spender.Hex()).
		Str("tx", hash.Hex()).
		Msg("approval submitted")

	receipt, err := e.wait(ctx, hash)
	if err != nil {
		return classifySwapError("approve", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return entities.NewSwapError(entities.KindExecutionFailed, "approve", fmt.Errorf("approval %s reverted", hash.Hex()))
	}

	run.enter(entities.StateApproved)
	return nil
}

// wait stops waiting after the receipt timeout. The transaction itself may still land.
func (e *SwapExecutor) wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := ethclient.WithTimeout(ctx, e.cfg.ReceiptTimeout, func(ctx context.Context) error {
		var err error
		receipt, err = e.tx.WaitMined(ctx, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: empty receipt for %s", entities.ErrInvalidResponse, hash.Hex())
	}
	return receipt, nil
}

var revertKinds = []struct {
	marker string
	kind   entities.SwapErrorKind
}{
	{"expired", entities.KindDeadlineExceeded},
	{"transfer_from_failed", entities.KindInsufficientAllowance},
	{"insufficient allowance", entities.KindInsufficientAllowance},
	{"exceeds allowance", entities.KindInsufficientAllowance},
	{"insufficient_liquidity", entities.KindNoRoute},
	{"invalid_path", entities.KindNoRoute},
	{"user rejected", entities.KindUserRejected},
	{"user denied", entities.KindUserRejected},
}

// classifySwapError maps a submission or confirmation failure onto a swap error kind
func classifySwapError(op string, err error) error {
	var se *entities.SwapError
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, entities.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return entities.NewSwapError(entities.KindTimeout, op, err)
	case errors.Is(err, entities.ErrInvalidResponse):
		return entities.NewSwapError(entities.KindInvalidResponse, op, err)
	}

	msg := strings.ToLower(err.Error())
	for _, rk := range revertKinds {
		if strings.Contains(msg, rk.marker) {
			return entities.NewSwapError(rk.kind, op, err)
		}
	}
	return entities.NewSwapError(entities.KindExecutionFailed, op, err)
}
