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

// TokenClient reads ERC20 state
type TokenClient struct {
	caller  Caller
	timeout time.Duration
}

func NewTokenClient(caller Caller, timeout time.Duration) *TokenClient {
	return &TokenClient{caller: caller, timeout: timeout}
}

// Decimals calls decimals() on token
func (c *TokenClient) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	values, err := c.call(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%w: decimals returned %T", entities.ErrInvalidResponse, values[0])
	}
	return decimals, nil
}

// Allowance returns how much spender may move on behalf of owner
func (c *TokenClient) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	values, err := c.call(ctx, token, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	allowance, ok := values[0].(*big.Int)
	if !ok || allowance == nil {
		return nil, fmt.Errorf("%w: allowance returned %T", entities.ErrInvalidResponse, values[0])
	}
	return allowance, nil
}

func (c *TokenClient) call(ctx context.Context, token common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := ERC20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	var result []byte
	err = ethclient.WithTimeout(ctx, c.timeout, func(ctx context.Context) error {
		var err error
		result, err = c.caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", method, token.Hex(), err)
	}

	values, err := ERC20ABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %v", entities.ErrInvalidResponse, method, token.Hex(), err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", entities.ErrInvalidResponse, method, len(values))
	}
	return values, nil
}

// PackApprove encodes approve(spender, amount)
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return ERC20ABI.Pack("approve", spender, amount)
}
