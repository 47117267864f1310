package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	ethclient "github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
)

// Caller is the read side of the chain gateway
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
}

// RouterClient issues read calls against one router contract
type RouterClient struct {
	caller  Caller
	router  entities.Router
	timeout time.Duration
}

// NewRouterClient creates a client for router. timeout bounds every call.
func NewRouterClient(caller Caller, router entities.Router, timeout time.Duration) *RouterClient {
	return &RouterClient{
		caller:  caller,
		router:  router,
		timeout: timeout,
	}
}

func (c *RouterClient) Router() entities.Router {
	return c.router
}

// GetAmountsOut returns the router's output amounts for every hop of path.
// The result always has len(path) entries.
func (c *RouterClient) GetAmountsOut(ctx context.Context, amountIn *big.Int, path entities.Path) ([]*big.Int, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	data, err := RouterABI.Pack("getAmountsOut", amountIn, []common.Address(path))
	if err != nil {
		return nil, fmt.Errorf("failed to pack getAmountsOut: %w", err)
	}

	var result []byte
	err = ethclient.WithTimeout(ctx, c.timeout, func(ctx context.Context) error {
		var err error
		result, err = c.caller.CallContract(ctx, ethereum.CallMsg{
			To:   &c.router.Address,
			Data: data,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getAmountsOut on %s: %w", c.router, err)
	}

	return decodeAmounts(result, len(path))
}

func decodeAmounts(result []byte, want int) ([]*big.Int, error) {
	values, err := RouterABI.Unpack("getAmountsOut", result)
	if err != nil {
		return nil, fmt.Errorf("%w: getAmountsOut: %v", entities.ErrInvalidResponse, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: getAmountsOut returned %d values", entities.ErrInvalidResponse, len(values))
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: getAmountsOut returned %T", entities.ErrInvalidResponse, values[0])
	}
	if len(amounts) != want {
		return nil, fmt.Errorf("%w: getAmountsOut returned %d amounts for %d tokens", entities.ErrInvalidResponse, len(amounts), want)
	}
	for i, a := range amounts {
		if a == nil {
			return nil, fmt.Errorf("%w: nil amount at hop %d", entities.ErrInvalidResponse, i)
		}
	}
	return amounts, nil
}

// PackSwap encodes the router entry point matching shape.
// For ShapeNativeToToken amountIn travels as msg.value and is not encoded.
func PackSwap(shape entities.SwapShape, amountIn, amountOutMin *big.Int, path entities.Path, to common.Address, deadline int64) ([]byte, error) {
	dl := big.NewInt(deadline)
	addrs := []common.Address(path)

	switch shape {
	case entities.ShapeTokenToToken:
		return RouterABI.Pack("swapExactTokensForTokens", amountIn, amountOutMin, addrs, to, dl)
	case entities.ShapeNativeToToken:
		return RouterABI.Pack("swapExactETHForTokens", amountOutMin, addrs, to, dl)
	case entities.ShapeTokenToNative:
		return RouterABI.Pack("swapExactTokensForETH", amountIn, amountOutMin, addrs, to, dl)
	default:
		return nil, fmt.Errorf("no router entry point for shape %s", shape)
	}
}
